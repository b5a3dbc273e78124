package emotions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/profile"
)

// Handler handles HTTP requests for emotion tag operations. Handlers are
// thin: bind request, call service, render response. No business logic
// lives here.
type Handler struct {
	service TagService
}

// NewHandler creates a new emotion tag handler backed by the given service.
func NewHandler(service TagService) *Handler {
	return &Handler{service: service}
}

// List returns the current profile's tags plus defaults (GET /emotions).
func (h *Handler) List(c echo.Context) error {
	profileID := profile.FromContext(c.Request().Context())

	tags, err := h.service.ListForProfile(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []EmotionTag{}
	}
	return c.JSON(http.StatusOK, tags)
}

// ListDefaults returns only shared default tags (GET /emotions/defaults).
func (h *Handler) ListDefaults(c echo.Context) error {
	tags, err := h.service.ListDefaults(c.Request().Context())
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []EmotionTag{}
	}
	return c.JSON(http.StatusOK, tags)
}

// Create adds a custom tag for the current profile (POST /emotions).
func (h *Handler) Create(c echo.Context) error {
	profileID := profile.FromContext(c.Request().Context())

	var req CreateTagRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}

	tag, err := h.service.Create(c.Request().Context(), profileID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tag)
}

// Delete removes a custom tag (DELETE /emotions/:id). Default tags and
// tags owned by other profiles come back as 404.
func (h *Handler) Delete(c echo.Context) error {
	profileID := profile.FromContext(c.Request().Context())

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("invalid tag id")
	}

	if err := h.service.Delete(c.Request().Context(), id, profileID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
