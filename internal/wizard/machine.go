package wizard

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/seolhw/maumlog/internal/diary"
)

// ErrSaveInProgress is returned when a save or submit is attempted while
// another persistence call is still in flight, and when navigation is
// attempted before the in-flight save settles.
var ErrSaveInProgress = fmt.Errorf("a save is already in progress")

// EntryPersister is the entry store collaborator. Satisfied by the diary
// service.
type EntryPersister interface {
	Create(ctx context.Context, profileID string, req diary.EntryRequest) (*diary.EntryWithTags, error)
	Update(ctx context.Context, id int64, profileID string, req diary.EntryRequest) (*diary.EntryWithTags, error)
}

// FormData holds the in-progress entry. Fields are free-form: any field
// may be edited in any order, any number of times, before submission.
type FormData struct {
	Date              string  `json:"date"`
	ShortContent      string  `json:"shortContent"`
	Situation         string  `json:"situation"`
	Reaction          string  `json:"reaction"`
	PhysicalSensation string  `json:"physicalSensation"`
	DesiredReaction   string  `json:"desiredReaction"`
	GratitudeMoment   string  `json:"gratitudeMoment"`
	SelfKindWords     string  `json:"selfKindWords"`
	ImageURL          string  `json:"imageUrl"`
	TagIDs            []int64 `json:"tagIds"`
}

// Set writes one text field, truncating to the field's limit.
func (d *FormData) Set(f Field, value string) {
	value = truncate(f, value)
	switch f {
	case FieldDate:
		d.Date = value
	case FieldShortContent:
		d.ShortContent = value
	case FieldSituation:
		d.Situation = value
	case FieldReaction:
		d.Reaction = value
	case FieldPhysicalSensation:
		d.PhysicalSensation = value
	case FieldDesiredReaction:
		d.DesiredReaction = value
	case FieldGratitudeMoment:
		d.GratitudeMoment = value
	case FieldSelfKindWords:
		d.SelfKindWords = value
	}
}

// AttachImage replaces any prior attachment with the given reference.
func (d *FormData) AttachImage(url string) {
	d.ImageURL = url
}

// RemoveImage clears the attachment.
func (d *FormData) RemoveImage() {
	d.ImageURL = ""
}

// request maps the form onto an entry store request. Empty fields pass
// through as-is; the store decides what blank means.
func (d FormData) request() diary.EntryRequest {
	return diary.EntryRequest{
		Date:              d.Date,
		ShortContent:      d.ShortContent,
		Situation:         d.Situation,
		Reaction:          d.Reaction,
		PhysicalSensation: d.PhysicalSensation,
		DesiredReaction:   d.DesiredReaction,
		GratitudeMoment:   d.GratitudeMoment,
		SelfKindWords:     d.SelfKindWords,
		ImageURL:          d.ImageURL,
		TagIDs:            d.TagIDs,
	}
}

// State is the serializable part of a wizard. The session store persists
// it between requests.
type State struct {
	Current    int          `json:"current"`
	SavedSteps map[int]bool `json:"savedSteps"`
	Data       FormData     `json:"data"`
	EntryID    int64        `json:"entryId"`
}

// NewState returns a fresh wizard at the first step.
func NewState() State {
	return State{Current: 1, SavedSteps: make(map[int]bool)}
}

// Confirmation is the early-completion prompt payload.
type Confirmation struct {
	StepsRemaining int    `json:"stepsRemaining"`
	Message        string `json:"message"`
}

// Machine drives the stepped entry form. One user, one in-progress entry,
// fully serialized: the machine itself is not safe for concurrent use, but
// it refuses overlapping persistence calls so a double-fired submit cannot
// write twice.
type Machine struct {
	state  State
	store  EntryPersister
	saving atomic.Bool
}

// NewMachine creates a wizard over previously stored state.
func NewMachine(state State, store EntryPersister) *Machine {
	if state.Current < 1 {
		state.Current = 1
	}
	if state.Current > TotalSteps {
		state.Current = TotalSteps
	}
	if state.SavedSteps == nil {
		state.SavedSteps = make(map[int]bool)
	}
	return &Machine{state: state, store: store}
}

// State returns the serializable state for the session store.
func (m *Machine) State() State {
	return m.state
}

// Current returns the current step number.
func (m *Machine) Current() int {
	return m.state.Current
}

// Step returns the current step's definition.
func (m *Machine) Step() Step {
	s, _ := StepByID(m.state.Current)
	return s
}

// Data returns the in-memory form data.
func (m *Machine) Data() FormData {
	return m.state.Data
}

// SetField edits one text field on the form.
func (m *Machine) SetField(f Field, value string) {
	m.state.Data.Set(f, value)
}

// SetTags replaces the selected emotion tags.
func (m *Machine) SetTags(tagIDs []int64) {
	m.state.Data.TagIDs = tagIDs
}

// AttachImage replaces any prior image attachment.
func (m *Machine) AttachImage(url string) {
	m.state.Data.AttachImage(url)
}

// RemoveImage clears the image attachment.
func (m *Machine) RemoveImage() {
	m.state.Data.RemoveImage()
}

// Saved reports whether the step was explicitly persisted. Merely visiting
// a step does not count.
func (m *Machine) Saved(stepID int) bool {
	return m.state.SavedSteps[stepID]
}

// Next advances one step, a no-op at the last step.
func (m *Machine) Next() error {
	if m.saving.Load() {
		return ErrSaveInProgress
	}
	if m.state.Current < TotalSteps {
		m.state.Current++
	}
	return nil
}

// Previous goes back one step, a no-op at the first step.
func (m *Machine) Previous() error {
	if m.saving.Load() {
		return ErrSaveInProgress
	}
	if m.state.Current > 1 {
		m.state.Current--
	}
	return nil
}

// GoTo jumps directly to any step. There is no validation gate; jumping
// forward past unfinished steps is allowed.
func (m *Machine) GoTo(stepID int) error {
	if m.saving.Load() {
		return ErrSaveInProgress
	}
	if _, ok := StepByID(stepID); !ok {
		return fmt.Errorf("no such step: %d", stepID)
	}
	m.state.Current = stepID
	return nil
}

// SaveStep persists the current form data and marks the current step
// saved. On failure the step and data are left untouched and the error is
// returned to the caller.
func (m *Machine) SaveStep(ctx context.Context, profileID string) error {
	if err := m.persist(ctx, profileID); err != nil {
		return err
	}
	m.state.SavedSteps[m.state.Current] = true
	return nil
}

// Submit persists the full form data as-is, empty fields included. It does
// not mark any step saved; reaching the end or confirming early completion
// is not the same as saving a step.
func (m *Machine) Submit(ctx context.Context, profileID string) (int64, error) {
	if err := m.persist(ctx, profileID); err != nil {
		return 0, err
	}
	return m.state.EntryID, nil
}

// StepsRemaining returns how many steps follow the current one.
func (m *Machine) StepsRemaining() int {
	return TotalSteps - m.state.Current
}

// RequestCompletion builds the early-completion confirmation prompt. At
// the final step the remaining count is zero and the caller submits
// without prompting.
func (m *Machine) RequestCompletion() Confirmation {
	remaining := m.StepsRemaining()
	noun := "steps"
	if remaining == 1 {
		noun = "step"
	}
	return Confirmation{
		StepsRemaining: remaining,
		Message:        fmt.Sprintf("%d %s remaining", remaining, noun),
	}
}

// persist writes the form through the entry store, creating on first save
// and updating after. The saving flag blocks a second persistence call and
// all navigation until the first one settles.
func (m *Machine) persist(ctx context.Context, profileID string) error {
	if !m.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer m.saving.Store(false)

	if m.state.EntryID == 0 {
		entry, err := m.store.Create(ctx, profileID, m.state.Data.request())
		if err != nil {
			return err
		}
		m.state.EntryID = entry.ID
		return nil
	}

	_, err := m.store.Update(ctx, m.state.EntryID, profileID, m.state.Data.request())
	return err
}
