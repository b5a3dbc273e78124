package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/calendar"
	"github.com/seolhw/maumlog/internal/config"
	"github.com/seolhw/maumlog/internal/emotions"
)

// Field length limits, enforced on create and update.
const (
	maxShortContentLen = 100
	maxSituationLen    = 1000
	maxReactionLen     = 1000
	maxStepFieldLen    = 500
)

// CalendarInvalidator drops cached calendar data for a profile's year after
// a write changes which dates have entries. Implemented by the calendar
// service; a nil invalidator is a no-op.
type CalendarInvalidator interface {
	Invalidate(ctx context.Context, profileID string, year int) error
}

// EntryService defines the business logic contract for diary entries.
type EntryService interface {
	// List returns one page of the profile's entries with tags attached,
	// plus the page descriptor with HasNext resolved exactly.
	List(ctx context.Context, profileID string, opts ListOptions, page Page) ([]EntryWithTags, Page, error)

	// Get retrieves a single entry with its tags.
	Get(ctx context.Context, id int64, profileID string) (*EntryWithTags, error)

	// Create stores a new entry for the date in the request. A date whose
	// previous entry was soft-deleted is handled per the recreate policy.
	Create(ctx context.Context, profileID string, req EntryRequest) (*EntryWithTags, error)

	// Update rewrites an entry's content and replaces its tag set.
	Update(ctx context.Context, id int64, profileID string, req EntryRequest) (*EntryWithTags, error)

	// Delete soft-deletes an entry.
	Delete(ctx context.Context, id int64, profileID string) error
}

type entryService struct {
	repo        EntryRepository
	tags        emotions.TagRepository
	recreate    config.RecreatePolicy
	invalidator CalendarInvalidator
	logger      *slog.Logger
}

// NewEntryService creates a new EntryService. The invalidator may be nil.
func NewEntryService(repo EntryRepository, tags emotions.TagRepository, recreate config.RecreatePolicy, invalidator CalendarInvalidator, logger *slog.Logger) EntryService {
	return &entryService{
		repo:        repo,
		tags:        tags,
		recreate:    recreate,
		invalidator: invalidator,
		logger:      logger,
	}
}

// List fetches one page of entries. The store sorts by date; completion
// orders are finished in memory after tags are attached. HasNext is
// resolved by fetching one row past the page and discarding it.
func (s *entryService) List(ctx context.Context, profileID string, opts ListOptions, page Page) ([]EntryWithTags, Page, error) {
	// A filter on a tag that no longer exists matches nothing in SQL
	// terms, but the friendlier behavior is to drop the filter, same as
	// an unknown sort order falling back to the default.
	if opts.EmotionTagID != nil {
		if _, err := s.tags.FindByID(ctx, *opts.EmotionTagID); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == 404 {
				s.logger.Warn("dropping filter on unknown emotion tag", "tag_id", *opts.EmotionTagID)
				opts.EmotionTagID = nil
			} else {
				return nil, page, err
			}
		}
	}

	opts.Limit = page.Limit + 1
	opts.Offset = page.Offset()

	entries, err := s.repo.List(ctx, profileID, opts)
	if err != nil {
		return nil, page, err
	}

	page.HasNext = len(entries) > page.Limit
	if page.HasNext {
		entries = entries[:page.Limit]
	}

	enriched, err := s.attachTags(ctx, entries)
	if err != nil {
		return nil, page, err
	}

	// Completion ratios only exist once the entry is fully loaded, so
	// the completion filter and the two completion orders are applied
	// here rather than in SQL, within the fetched page. Within the page
	// the order is total; across pages it approximates, which matches
	// how the journal has always behaved.
	enriched = ApplyCompletion(enriched, opts.Completion)
	if opts.SortBy.ByCompletion() {
		enriched = ApplySort(enriched, opts.SortBy)
	}

	return enriched, page, nil
}

// Get retrieves a single entry with its tags.
func (s *entryService) Get(ctx context.Context, id int64, profileID string) (*EntryWithTags, error) {
	entry, err := s.repo.FindByID(ctx, id, profileID)
	if err != nil {
		return nil, err
	}

	enriched, err := s.attachTags(ctx, []Entry{*entry})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Create stores a new entry. When the date already carries a soft-deleted
// entry, the recreate policy decides: restore revives the old row with the
// new content, reject surfaces a validation error just like a live
// duplicate would.
func (s *entryService) Create(ctx context.Context, profileID string, req EntryRequest) (*EntryWithTags, error) {
	entry, err := s.buildEntry(profileID, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateTagIDs(ctx, profileID, req.TagIDs); err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, entry)
	if errors.Is(err, ErrDuplicateDate) {
		existing, findErr := s.repo.FindByDate(ctx, profileID, entry.Date, true)
		if findErr != nil {
			return nil, findErr
		}
		if !existing.IsDeleted || s.recreate == config.RecreateReject {
			return nil, apperror.NewValidation("an entry already exists for this date")
		}

		entry.ID = existing.ID
		if err := s.repo.Restore(ctx, entry); err != nil {
			return nil, err
		}
		s.logger.Info("restored soft-deleted diary entry", "id", entry.ID, "date", entry.Date)
	} else if err != nil {
		return nil, err
	}

	if err := s.repo.SetEntryTags(ctx, entry.ID, req.TagIDs); err != nil {
		return nil, err
	}
	if len(req.TagIDs) > 0 {
		if err := s.tags.IncrementUsage(ctx, req.TagIDs); err != nil {
			s.logger.Warn("failed to increment tag usage", "error", err)
		}
	}

	s.invalidateCalendar(ctx, profileID, entry.Date)

	return s.Get(ctx, entry.ID, profileID)
}

// Update rewrites an entry's content fields and replaces its tag set.
// Newly attached tags have their usage counters bumped; removed ones stay
// counted, usage is a lifetime tally.
func (s *entryService) Update(ctx context.Context, id int64, profileID string, req EntryRequest) (*EntryWithTags, error) {
	existing, err := s.repo.FindByID(ctx, id, profileID)
	if err != nil {
		return nil, err
	}

	entry, err := s.buildEntry(profileID, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateTagIDs(ctx, profileID, req.TagIDs); err != nil {
		return nil, err
	}
	entry.ID = existing.ID
	entry.Date = existing.Date

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	currentTags, err := s.repo.GetEntryTagsBatch(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	currentSet := make(map[int64]bool)
	for _, t := range currentTags[id] {
		currentSet[t.ID] = true
	}
	var added []int64
	for _, tagID := range req.TagIDs {
		if !currentSet[tagID] {
			added = append(added, tagID)
		}
	}

	if err := s.repo.SetEntryTags(ctx, id, req.TagIDs); err != nil {
		return nil, err
	}
	if len(added) > 0 {
		if err := s.tags.IncrementUsage(ctx, added); err != nil {
			s.logger.Warn("failed to increment tag usage", "error", err)
		}
	}

	return s.Get(ctx, id, profileID)
}

// Delete soft-deletes an entry and invalidates the cached calendar for
// its year.
func (s *entryService) Delete(ctx context.Context, id int64, profileID string) error {
	entry, err := s.repo.FindByID(ctx, id, profileID)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id, profileID); err != nil {
		return err
	}

	s.invalidateCalendar(ctx, profileID, entry.Date)
	return nil
}

// attachTags loads tags for a batch of entries with a single query and
// wraps each entry with its tags and completion counts.
func (s *entryService) attachTags(ctx context.Context, entries []Entry) ([]EntryWithTags, error) {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	tagsByEntry, err := s.repo.GetEntryTagsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]EntryWithTags, len(entries))
	for i, e := range entries {
		enriched[i] = Enrich(e, tagsByEntry[e.ID])
	}
	return enriched, nil
}

// buildEntry validates the request and assembles an Entry. The date is
// normalized to the canonical form before it ever reaches the store.
func (s *entryService) buildEntry(profileID string, req EntryRequest) (*Entry, error) {
	date := strings.TrimSpace(req.Date)
	if date == "" {
		return nil, apperror.NewValidation("date is required")
	}
	canonical, err := calendar.ParseDate(date)
	if err != nil {
		return nil, apperror.NewValidation("date must be in YYYY-MM-DD format")
	}

	if err := checkLen("shortContent", req.ShortContent, maxShortContentLen); err != nil {
		return nil, err
	}
	if err := checkLen("situation", req.Situation, maxSituationLen); err != nil {
		return nil, err
	}
	if err := checkLen("reaction", req.Reaction, maxReactionLen); err != nil {
		return nil, err
	}
	if err := checkLen("physicalSensation", req.PhysicalSensation, maxStepFieldLen); err != nil {
		return nil, err
	}
	if err := checkLen("desiredReaction", req.DesiredReaction, maxStepFieldLen); err != nil {
		return nil, err
	}
	if err := checkLen("gratitudeMoment", req.GratitudeMoment, maxStepFieldLen); err != nil {
		return nil, err
	}
	if err := checkLen("selfKindWords", req.SelfKindWords, maxStepFieldLen); err != nil {
		return nil, err
	}

	return &Entry{
		ProfileID:         profileID,
		Date:              canonical,
		ShortContent:      optional(req.ShortContent),
		Situation:         optional(req.Situation),
		Reaction:          optional(req.Reaction),
		PhysicalSensation: optional(req.PhysicalSensation),
		DesiredReaction:   optional(req.DesiredReaction),
		GratitudeMoment:   optional(req.GratitudeMoment),
		SelfKindWords:     optional(req.SelfKindWords),
		ImageURL:          optional(req.ImageURL),
	}, nil
}

// validateTagIDs checks that every requested tag exists and is visible to
// the profile (a default tag or one the profile owns).
func (s *entryService) validateTagIDs(ctx context.Context, profileID string, tagIDs []int64) error {
	for _, id := range tagIDs {
		tag, err := s.tags.FindByID(ctx, id)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == 404 {
				return apperror.NewValidation(fmt.Sprintf("emotion tag %d does not exist", id))
			}
			return err
		}
		if !tag.Default() && (tag.ProfileID == nil || *tag.ProfileID != profileID) {
			return apperror.NewValidation(fmt.Sprintf("emotion tag %d does not exist", id))
		}
	}
	return nil
}

func (s *entryService) invalidateCalendar(ctx context.Context, profileID, date string) {
	if s.invalidator == nil || len(date) < 4 {
		return
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, profileID, year); err != nil {
		s.logger.Warn("failed to invalidate calendar cache", "profile_id", profileID, "year", year, "error", err)
	}
}

func checkLen(field, value string, max int) error {
	if len([]rune(value)) > max {
		return apperror.NewValidation(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// optional maps an empty string to NULL so untouched steps stay
// distinguishable from deliberately blanked ones in the row.
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
