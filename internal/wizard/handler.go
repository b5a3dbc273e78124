package wizard

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/profile"
)

// validFields is derived from the step table so the edit endpoint accepts
// exactly the fields some step edits.
var validFields = func() map[Field]bool {
	m := make(map[Field]bool)
	for _, s := range steps {
		for _, f := range s.Fields {
			m[f] = true
		}
	}
	return m
}()

// Handler handles HTTP requests for the stepped entry form. Each request
// loads the profile's session, replays it into a machine, applies one
// action and stores the session back.
type Handler struct {
	sessions  SessionStore
	persister EntryPersister
}

// NewHandler creates a new wizard handler.
func NewHandler(sessions SessionStore, persister EntryPersister) *Handler {
	return &Handler{sessions: sessions, persister: persister}
}

// stateResponse is the wizard view returned by every endpoint.
type stateResponse struct {
	Current    int      `json:"current"`
	TotalSteps int      `json:"totalSteps"`
	Step       Step     `json:"step"`
	Steps      []Step   `json:"steps"`
	SavedSteps []int    `json:"savedSteps"`
	Data       FormData `json:"data"`
	EntryID    int64    `json:"entryId,omitempty"`
}

func view(m *Machine) stateResponse {
	state := m.State()
	saved := make([]int, 0, len(state.SavedSteps))
	for id, ok := range state.SavedSteps {
		if ok {
			saved = append(saved, id)
		}
	}
	sort.Ints(saved)

	return stateResponse{
		Current:    state.Current,
		TotalSteps: TotalSteps,
		Step:       m.Step(),
		Steps:      Steps(),
		SavedSteps: saved,
		Data:       state.Data,
		EntryID:    state.EntryID,
	}
}

// Show handles GET /diary/new. A profile with no in-progress wizard gets a
// fresh one at step 1; the session is only stored once something changes.
func (h *Handler) Show(c echo.Context) error {
	m, _, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view(m))
}

type navigateRequest struct {
	Action string `json:"action"`
	Step   int    `json:"step"`
}

// Navigate handles POST /diary/new/step.
func (h *Handler) Navigate(c echo.Context) error {
	m, profileID, err := h.load(c)
	if err != nil {
		return err
	}

	var req navigateRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	switch req.Action {
	case "next":
		err = m.Next()
	case "previous":
		err = m.Previous()
	case "goto":
		err = m.GoTo(req.Step)
	default:
		return apperror.NewBadRequest("action must be next, previous or goto")
	}
	if err != nil {
		return apperror.NewBadRequest(err.Error())
	}

	if err := h.sessions.Save(c.Request().Context(), profileID, m.State()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view(m))
}

type editRequest struct {
	Fields      map[string]string `json:"fields"`
	TagIDs      *[]int64          `json:"tagIds"`
	Image       *string           `json:"image"`
	RemoveImage bool              `json:"removeImage"`
}

// Edit handles PATCH /diary/new. Fields may be edited in any order
// regardless of the current step.
func (h *Handler) Edit(c echo.Context) error {
	m, profileID, err := h.load(c)
	if err != nil {
		return err
	}

	var req editRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	for name, value := range req.Fields {
		f := Field(name)
		if !validFields[f] {
			return apperror.NewBadRequest("unknown field: " + name)
		}
		m.SetField(f, value)
	}
	if req.TagIDs != nil {
		m.SetTags(*req.TagIDs)
	}
	if req.RemoveImage {
		m.RemoveImage()
	} else if req.Image != nil {
		m.AttachImage(*req.Image)
	}

	if err := h.sessions.Save(c.Request().Context(), profileID, m.State()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view(m))
}

// SaveStep handles POST /diary/new/save. A failed persist leaves the
// session exactly as it was.
func (h *Handler) SaveStep(c echo.Context) error {
	m, profileID, err := h.load(c)
	if err != nil {
		return err
	}

	if err := m.SaveStep(c.Request().Context(), profileID); err != nil {
		return saveErr(err)
	}

	if err := h.sessions.Save(c.Request().Context(), profileID, m.State()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view(m))
}

// RequestCompletion handles POST /diary/new/complete. Before the final
// step it returns the confirmation prompt; at the final step there is
// nothing to confirm and the entry is submitted directly.
func (h *Handler) RequestCompletion(c echo.Context) error {
	m, profileID, err := h.load(c)
	if err != nil {
		return err
	}

	if m.StepsRemaining() > 0 {
		return c.JSON(http.StatusOK, m.RequestCompletion())
	}
	return h.submit(c, m, profileID)
}

// Submit handles POST /diary/new/submit, the final-step default action and
// the confirmed early completion.
func (h *Handler) Submit(c echo.Context) error {
	m, profileID, err := h.load(c)
	if err != nil {
		return err
	}
	return h.submit(c, m, profileID)
}

// Abandon handles DELETE /diary/new, discarding the in-progress wizard
// without persisting anything.
func (h *Handler) Abandon(c echo.Context) error {
	profileID := profile.FromContext(c.Request().Context())
	if err := h.sessions.Delete(c.Request().Context(), profileID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) submit(c echo.Context, m *Machine, profileID string) error {
	entryID, err := m.Submit(c.Request().Context(), profileID)
	if err != nil {
		return saveErr(err)
	}

	if err := h.sessions.Delete(c.Request().Context(), profileID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"entryId": entryID})
}

// load assembles the machine for the request's profile, creating a fresh
// session when none exists.
func (h *Handler) load(c echo.Context) (*Machine, string, error) {
	profileID := profile.FromContext(c.Request().Context())

	state, err := h.sessions.Load(c.Request().Context(), profileID)
	if errors.Is(err, ErrNoSession) {
		state = NewState()
	} else if err != nil {
		return nil, "", err
	}

	return NewMachine(state, h.persister), profileID, nil
}

func saveErr(err error) error {
	if errors.Is(err, ErrSaveInProgress) {
		return apperror.NewConflict(err.Error())
	}
	return err
}
