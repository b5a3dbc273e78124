package diary

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/config"
	"github.com/seolhw/maumlog/internal/emotions"
)

// --- Mock Repositories ---

// mockEntryRepo implements EntryRepository for testing.
type mockEntryRepo struct {
	listFnsCalled       int
	listFn              func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error)
	findByIDFn          func(ctx context.Context, id int64, profileID string) (*Entry, error)
	findByDateFn        func(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error)
	createFn            func(ctx context.Context, e *Entry) error
	updateFn            func(ctx context.Context, e *Entry) error
	restoreFn           func(ctx context.Context, e *Entry) error
	softDeleteFn        func(ctx context.Context, id int64, profileID string) error
	listCalendarDatesFn func(ctx context.Context, profileID string, year int) ([]string, error)
	getEntryTagsBatchFn func(ctx context.Context, entryIDs []int64) (map[int64][]emotions.EmotionTag, error)
	setEntryTagsFn      func(ctx context.Context, entryID int64, tagIDs []int64) error
}

func (m *mockEntryRepo) List(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
	m.listFnsCalled++
	if m.listFn != nil {
		return m.listFn(ctx, profileID, opts)
	}
	return nil, nil
}

func (m *mockEntryRepo) FindByID(ctx context.Context, id int64, profileID string) (*Entry, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id, profileID)
	}
	return &Entry{ID: id, ProfileID: profileID, Date: "2026-01-15"}, nil
}

func (m *mockEntryRepo) FindByDate(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error) {
	if m.findByDateFn != nil {
		return m.findByDateFn(ctx, profileID, date, includeDeleted)
	}
	return nil, apperror.NewNotFound("diary entry not found")
}

func (m *mockEntryRepo) Create(ctx context.Context, e *Entry) error {
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	e.ID = 1
	return nil
}

func (m *mockEntryRepo) Update(ctx context.Context, e *Entry) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockEntryRepo) Restore(ctx context.Context, e *Entry) error {
	if m.restoreFn != nil {
		return m.restoreFn(ctx, e)
	}
	return nil
}

func (m *mockEntryRepo) SoftDelete(ctx context.Context, id int64, profileID string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id, profileID)
	}
	return nil
}

func (m *mockEntryRepo) ListCalendarDates(ctx context.Context, profileID string, year int) ([]string, error) {
	if m.listCalendarDatesFn != nil {
		return m.listCalendarDatesFn(ctx, profileID, year)
	}
	return nil, nil
}

func (m *mockEntryRepo) GetEntryTagsBatch(ctx context.Context, entryIDs []int64) (map[int64][]emotions.EmotionTag, error) {
	if m.getEntryTagsBatchFn != nil {
		return m.getEntryTagsBatchFn(ctx, entryIDs)
	}
	return make(map[int64][]emotions.EmotionTag), nil
}

func (m *mockEntryRepo) SetEntryTags(ctx context.Context, entryID int64, tagIDs []int64) error {
	if m.setEntryTagsFn != nil {
		return m.setEntryTagsFn(ctx, entryID, tagIDs)
	}
	return nil
}

// mockTagRepo implements emotions.TagRepository for testing.
type mockTagRepo struct {
	findByIDFn       func(ctx context.Context, id int64) (*emotions.EmotionTag, error)
	incrementUsageFn func(ctx context.Context, ids []int64) error
}

func (m *mockTagRepo) Create(ctx context.Context, tag *emotions.EmotionTag) error { return nil }

func (m *mockTagRepo) FindByID(ctx context.Context, id int64) (*emotions.EmotionTag, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	isDefault := true
	return &emotions.EmotionTag{ID: id, IsDefault: &isDefault}, nil
}

func (m *mockTagRepo) ListForProfile(ctx context.Context, profileID string) ([]emotions.EmotionTag, error) {
	return nil, nil
}

func (m *mockTagRepo) ListDefaults(ctx context.Context) ([]emotions.EmotionTag, error) {
	return nil, nil
}

func (m *mockTagRepo) ListCustom(ctx context.Context, profileID string) ([]emotions.EmotionTag, error) {
	return nil, nil
}

func (m *mockTagRepo) Delete(ctx context.Context, id int64, profileID string) error { return nil }

func (m *mockTagRepo) IncrementUsage(ctx context.Context, ids []int64) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, ids)
	}
	return nil
}

// --- Test Helpers ---

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func newService(repo EntryRepository, tags emotions.TagRepository, policy config.RecreatePolicy) EntryService {
	return NewEntryService(repo, tags, policy, nil, slog.Default())
}

// --- List Tests ---

func TestList_LookAheadResolvesHasNext(t *testing.T) {
	repo := &mockEntryRepo{
		listFn: func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
			if opts.Limit != 3 {
				t.Errorf("expected look-ahead limit 3, got %d", opts.Limit)
			}
			// One more row than the page asks for.
			return []Entry{
				{ID: 1, Date: "2026-01-03"},
				{ID: 2, Date: "2026-01-02"},
				{ID: 3, Date: "2026-01-01"},
			}, nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entries, page, err := svc.List(context.Background(), "p1", ListOptions{}, NewPage(1, 2, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries on the page, got %d", len(entries))
	}
	if !page.HasNext {
		t.Error("expected HasNext with a full look-ahead")
	}
}

func TestList_ExactPageHasNoNext(t *testing.T) {
	repo := &mockEntryRepo{
		listFn: func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
			return []Entry{{ID: 1, Date: "2026-01-02"}, {ID: 2, Date: "2026-01-01"}}, nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entries, page, err := svc.List(context.Background(), "p1", ListOptions{}, NewPage(1, 2, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
	if page.HasNext {
		t.Error("expected HasNext false when the look-ahead row is absent")
	}
}

func TestList_UnknownTagFilterDegradesToNoFilter(t *testing.T) {
	tagID := int64(999)
	repo := &mockEntryRepo{
		listFn: func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
			if opts.EmotionTagID != nil {
				t.Error("expected the tag filter to be dropped")
			}
			return nil, nil
		},
	}
	tags := &mockTagRepo{
		findByIDFn: func(ctx context.Context, id int64) (*emotions.EmotionTag, error) {
			return nil, apperror.NewNotFound("emotion tag not found")
		},
	}

	svc := newService(repo, tags, config.RecreateRestore)
	_, _, err := svc.List(context.Background(), "p1", ListOptions{EmotionTagID: &tagID}, NewPage(1, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listFnsCalled != 1 {
		t.Errorf("expected one list call, got %d", repo.listFnsCalled)
	}
}

func TestList_CompletionSortAppliedInMemory(t *testing.T) {
	full := "filled"
	repo := &mockEntryRepo{
		listFn: func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
			// Store order is date-desc; entry 1 is fuller than entry 2.
			return []Entry{
				{ID: 1, Date: "2026-01-02", ShortContent: &full, Situation: &full},
				{ID: 2, Date: "2026-01-01", ShortContent: &full},
			}, nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entries, _, err := svc.List(context.Background(), "p1",
		ListOptions{SortBy: SortCompletionAsc}, NewPage(1, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 2 || entries[1].ID != 1 {
		t.Errorf("expected completion-asc order [2 1], got %v", []int64{entries[0].ID, entries[1].ID})
	}
}

func TestList_CompletionFilterAppliedInMemory(t *testing.T) {
	full := "filled"
	complete := Entry{ID: 1, Date: "2026-01-02"}
	for _, f := range []**string{
		&complete.ShortContent, &complete.Situation, &complete.Reaction,
		&complete.PhysicalSensation, &complete.DesiredReaction,
		&complete.GratitudeMoment, &complete.SelfKindWords,
	} {
		*f = &full
	}
	repo := &mockEntryRepo{
		listFn: func(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
			return []Entry{complete, {ID: 2, Date: "2026-01-01", ShortContent: &full}}, nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entries, _, err := svc.List(context.Background(), "p1",
		ListOptions{Completion: CompletionIncomplete}, NewPage(1, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 2 {
		t.Errorf("expected only the incomplete entry 2, got %d entries", len(entries))
	}
}

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	var savedTags []int64
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, e *Entry) error {
			if e.Date != "2026-01-15" {
				t.Errorf("expected normalized date 2026-01-15, got %s", e.Date)
			}
			if e.ShortContent == nil || *e.ShortContent != "a good day" {
				t.Error("short content not carried through")
			}
			if e.Situation != nil {
				t.Error("blank situation should be stored as NULL")
			}
			e.ID = 7
			return nil
		},
		setEntryTagsFn: func(ctx context.Context, entryID int64, tagIDs []int64) error {
			savedTags = tagIDs
			return nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entry, err := svc.Create(context.Background(), "p1", EntryRequest{
		Date:         "2026-1-15",
		ShortContent: "a good day",
		TagIDs:       []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != 7 {
		t.Errorf("expected ID 7, got %d", entry.ID)
	}
	if len(savedTags) != 2 {
		t.Errorf("expected 2 tags saved, got %v", savedTags)
	}
}

func TestCreate_MissingDate(t *testing.T) {
	svc := newService(&mockEntryRepo{}, &mockTagRepo{}, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{})
	assertAppError(t, err, 422)
}

func TestCreate_MalformedDate(t *testing.T) {
	svc := newService(&mockEntryRepo{}, &mockTagRepo{}, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{Date: "January 15th"})
	assertAppError(t, err, 422)
}

func TestCreate_FieldTooLong(t *testing.T) {
	long := make([]byte, maxShortContentLen+1)
	for i := range long {
		long[i] = 'x'
	}

	svc := newService(&mockEntryRepo{}, &mockTagRepo{}, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{
		Date:         "2026-01-15",
		ShortContent: string(long),
	})
	assertAppError(t, err, 422)
}

func TestCreate_UnknownTag(t *testing.T) {
	tags := &mockTagRepo{
		findByIDFn: func(ctx context.Context, id int64) (*emotions.EmotionTag, error) {
			return nil, apperror.NewNotFound("emotion tag not found")
		},
	}

	svc := newService(&mockEntryRepo{}, tags, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{
		Date:   "2026-01-15",
		TagIDs: []int64{999},
	})
	assertAppError(t, err, 422)
}

func TestCreate_OtherProfilesTagRejected(t *testing.T) {
	other := "someone-else"
	tags := &mockTagRepo{
		findByIDFn: func(ctx context.Context, id int64) (*emotions.EmotionTag, error) {
			return &emotions.EmotionTag{ID: id, ProfileID: &other}, nil
		},
	}

	svc := newService(&mockEntryRepo{}, tags, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{
		Date:   "2026-01-15",
		TagIDs: []int64{3},
	})
	assertAppError(t, err, 422)
}

func TestCreate_DuplicateLiveDate(t *testing.T) {
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, e *Entry) error {
			return ErrDuplicateDate
		},
		findByDateFn: func(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error) {
			return &Entry{ID: 3, Date: date, IsDeleted: false}, nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{Date: "2026-01-15"})
	assertAppError(t, err, 422)
}

func TestCreate_RestorePolicyRevivesSoftDeleted(t *testing.T) {
	restored := false
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, e *Entry) error {
			return ErrDuplicateDate
		},
		findByDateFn: func(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error) {
			if !includeDeleted {
				t.Error("expected the lookup to include soft-deleted rows")
			}
			return &Entry{ID: 3, Date: date, IsDeleted: true}, nil
		},
		restoreFn: func(ctx context.Context, e *Entry) error {
			if e.ID != 3 {
				t.Errorf("expected restore of entry 3, got %d", e.ID)
			}
			restored = true
			return nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	entry, err := svc.Create(context.Background(), "p1", EntryRequest{Date: "2026-01-15"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !restored {
		t.Error("soft-deleted entry was not restored")
	}
	if entry.ID != 3 {
		t.Errorf("expected the revived entry id 3, got %d", entry.ID)
	}
}

func TestCreate_RejectPolicyRefusesSoftDeleted(t *testing.T) {
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, e *Entry) error {
			return ErrDuplicateDate
		},
		findByDateFn: func(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error) {
			return &Entry{ID: 3, Date: date, IsDeleted: true}, nil
		},
		restoreFn: func(ctx context.Context, e *Entry) error {
			t.Error("restore must not run under the reject policy")
			return nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateReject)
	_, err := svc.Create(context.Background(), "p1", EntryRequest{Date: "2026-01-15"})
	assertAppError(t, err, 422)
}

// --- Update Tests ---

func TestUpdate_OnlyNewTagsBumpUsage(t *testing.T) {
	var bumped []int64
	repo := &mockEntryRepo{
		getEntryTagsBatchFn: func(ctx context.Context, entryIDs []int64) (map[int64][]emotions.EmotionTag, error) {
			return map[int64][]emotions.EmotionTag{
				5: {{ID: 1}, {ID: 2}},
			}, nil
		},
	}
	tags := &mockTagRepo{
		incrementUsageFn: func(ctx context.Context, ids []int64) error {
			bumped = ids
			return nil
		},
	}

	svc := newService(repo, tags, config.RecreateRestore)
	_, err := svc.Update(context.Background(), 5, "p1", EntryRequest{
		Date:   "2026-01-15",
		TagIDs: []int64{2, 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bumped) != 1 || bumped[0] != 3 {
		t.Errorf("expected only tag 3 bumped, got %v", bumped)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockEntryRepo{
		findByIDFn: func(ctx context.Context, id int64, profileID string) (*Entry, error) {
			return nil, apperror.NewNotFound("diary entry not found")
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	_, err := svc.Update(context.Background(), 42, "p1", EntryRequest{Date: "2026-01-15"})
	assertAppError(t, err, 404)
}

// --- Delete Tests ---

func TestDelete_SoftDeletes(t *testing.T) {
	deleted := false
	repo := &mockEntryRepo{
		softDeleteFn: func(ctx context.Context, id int64, profileID string) error {
			if id != 9 || profileID != "p1" {
				t.Errorf("unexpected delete target: id=%d profile=%s", id, profileID)
			}
			deleted = true
			return nil
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	if err := svc.Delete(context.Background(), 9, "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("entry was not soft-deleted")
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockEntryRepo{
		findByIDFn: func(ctx context.Context, id int64, profileID string) (*Entry, error) {
			return nil, apperror.NewNotFound("diary entry not found")
		},
	}

	svc := newService(repo, &mockTagRepo{}, config.RecreateRestore)
	assertAppError(t, svc.Delete(context.Background(), 42, "p1"), 404)
}
