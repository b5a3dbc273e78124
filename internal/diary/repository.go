package diary

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/seolhw/maumlog/internal/apperror"
	"github.com/seolhw/maumlog/internal/emotions"
)

// ErrDuplicateDate is returned by Create when the (profile, date) pair is
// already taken. The service decides what that means: a live entry is a
// validation failure, a soft-deleted one goes through the recreate policy.
var ErrDuplicateDate = fmt.Errorf("an entry already exists for this date")

// EntryRepository defines the data access contract for diary entries and
// their tag associations. One repository per aggregate root; all SQL
// lives here.
type EntryRepository interface {
	// List returns the profile's live entries matching the options,
	// sorted by date in SQL. Completion sorting is not the store's job;
	// callers re-sort in memory.
	List(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error)

	// FindByID retrieves a single live entry owned by the profile.
	FindByID(ctx context.Context, id int64, profileID string) (*Entry, error)

	// FindByDate retrieves the profile's entry on the given date.
	// With includeDeleted, a soft-deleted entry is returned too.
	FindByDate(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error)

	// Create inserts a new entry. Returns ErrDuplicateDate when the
	// (profile, date) unique constraint is violated.
	Create(ctx context.Context, e *Entry) error

	// Update rewrites the entry's content fields.
	Update(ctx context.Context, e *Entry) error

	// Restore revives a soft-deleted row in place with the given content.
	Restore(ctx context.Context, e *Entry) error

	// SoftDelete marks an entry deleted without removing the row.
	SoftDelete(ctx context.Context, id int64, profileID string) error

	// ListCalendarDates returns the sorted, distinct YYYY-MM-DD dates of
	// the profile's live entries in the given year. Fetches dates only,
	// never entry bodies.
	ListCalendarDates(ctx context.Context, profileID string, year int) ([]string, error)

	// GetEntryTagsBatch returns emotion tags for multiple entries in a
	// single query, keyed by entry id. Avoids N+1 on list views.
	GetEntryTagsBatch(ctx context.Context, entryIDs []int64) (map[int64][]emotions.EmotionTag, error)

	// SetEntryTags replaces the entry's tag set with the given ids,
	// diffing against the current set to minimize writes.
	SetEntryTags(ctx context.Context, entryID int64, tagIDs []int64) error
}

// entryRepository implements EntryRepository using MariaDB with
// hand-written SQL.
type entryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository backed by the given
// database connection.
func NewEntryRepository(db *sql.DB) EntryRepository {
	return &entryRepository{db: db}
}

// entryColumns selects every entry field; date comes back as the canonical
// string so no timezone conversion ever touches it.
const entryColumns = `d.id, d.profile_id, DATE_FORMAT(d.date, '%Y-%m-%d'),
	d.short_content, d.situation, d.reaction, d.physical_sensation,
	d.desired_reaction, d.gratitude_moment, d.self_kind_words,
	d.image_url, d.is_deleted, d.created_at, d.updated_at`

// scanEntry scans one diaries row from any row scanner.
func scanEntry(scan func(...any) error) (Entry, error) {
	var e Entry
	err := scan(
		&e.ID, &e.ProfileID, &e.Date,
		&e.ShortContent, &e.Situation, &e.Reaction, &e.PhysicalSensation,
		&e.DesiredReaction, &e.GratitudeMoment, &e.SelfKindWords,
		&e.ImageURL, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// List returns the profile's live entries matching the options. The query
// is assembled from the optional filters: search is an OR of LIKE matches
// over the three searchable fields, the emotion filter is an inner join on
// diary_tags (entries without the tag never match), and the date range is
// inclusive on both ends.
func (r *entryRepository) List(ctx context.Context, profileID string, opts ListOptions) ([]Entry, error) {
	var sb strings.Builder
	args := make([]any, 0, 8)

	sb.WriteString(`SELECT ` + entryColumns + ` FROM diaries d`)

	if opts.EmotionTagID != nil {
		sb.WriteString(` INNER JOIN diary_tags dt ON dt.diary_id = d.id AND dt.emotion_tag_id = ?`)
		args = append(args, *opts.EmotionTagID)
	}

	sb.WriteString(` WHERE d.profile_id = ? AND d.is_deleted = FALSE`)
	args = append(args, profileID)

	if q := strings.TrimSpace(opts.SearchQuery); q != "" {
		sb.WriteString(` AND (LOWER(d.short_content) LIKE ?
			OR LOWER(d.situation) LIKE ?
			OR LOWER(d.reaction) LIKE ?)`)
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if opts.DateFrom != "" {
		sb.WriteString(` AND d.date >= ?`)
		args = append(args, opts.DateFrom)
	}
	if opts.DateTo != "" {
		sb.WriteString(` AND d.date <= ?`)
		args = append(args, opts.DateTo)
	}

	// The store only orders by date; completion orders are finished in
	// memory by the caller. The id tie-break keeps pagination stable for
	// same-day rows (which only happen across profiles, but cheap to keep).
	if opts.SortBy == SortDateAsc {
		sb.WriteString(` ORDER BY d.date ASC, d.id ASC`)
	} else {
		sb.WriteString(` ORDER BY d.date DESC, d.id ASC`)
	}

	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing diary entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning diary row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diary rows: %w", err)
	}

	return entries, nil
}

// FindByID retrieves a single live entry owned by the profile.
func (r *entryRepository) FindByID(ctx context.Context, id int64, profileID string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM diaries d
	           WHERE d.id = ? AND d.profile_id = ? AND d.is_deleted = FALSE`

	row := r.db.QueryRowContext(ctx, query, id, profileID)
	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperror.NewNotFound("diary entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying diary by id: %w", err)
	}
	return &e, nil
}

// FindByDate retrieves the profile's entry for the given date.
func (r *entryRepository) FindByDate(ctx context.Context, profileID, date string, includeDeleted bool) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM diaries d
	           WHERE d.profile_id = ? AND d.date = ?`
	if !includeDeleted {
		query += ` AND d.is_deleted = FALSE`
	}

	row := r.db.QueryRowContext(ctx, query, profileID, date)
	e, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperror.NewNotFound("diary entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying diary by date: %w", err)
	}
	return &e, nil
}

// Create inserts a new entry and sets the auto-generated ID on the struct.
func (r *entryRepository) Create(ctx context.Context, e *Entry) error {
	query := `INSERT INTO diaries (profile_id, date, short_content, situation,
	           reaction, physical_sensation, desired_reaction, gratitude_moment,
	           self_kind_words, image_url)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		e.ProfileID, e.Date, e.ShortContent, e.Situation,
		e.Reaction, e.PhysicalSensation, e.DesiredReaction, e.GratitudeMoment,
		e.SelfKindWords, e.ImageURL,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateDate
		}
		return fmt.Errorf("inserting diary entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	e.ID = id

	return nil
}

// Update rewrites the entry's content fields. Date and ownership are
// immutable after creation.
func (r *entryRepository) Update(ctx context.Context, e *Entry) error {
	query := `UPDATE diaries SET short_content = ?, situation = ?, reaction = ?,
	           physical_sensation = ?, desired_reaction = ?, gratitude_moment = ?,
	           self_kind_words = ?, image_url = ?, updated_at = NOW()
	           WHERE id = ? AND profile_id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		e.ShortContent, e.Situation, e.Reaction,
		e.PhysicalSensation, e.DesiredReaction, e.GratitudeMoment,
		e.SelfKindWords, e.ImageURL,
		e.ID, e.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("updating diary entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFound("diary entry not found")
	}

	return nil
}

// Restore revives a soft-deleted row in place with the given content.
// Used by the recreate policy when a user writes a new entry on a date
// whose previous entry was deleted.
func (r *entryRepository) Restore(ctx context.Context, e *Entry) error {
	query := `UPDATE diaries SET short_content = ?, situation = ?, reaction = ?,
	           physical_sensation = ?, desired_reaction = ?, gratitude_moment = ?,
	           self_kind_words = ?, image_url = ?, is_deleted = FALSE, updated_at = NOW()
	           WHERE id = ? AND profile_id = ? AND is_deleted = TRUE`

	result, err := r.db.ExecContext(ctx, query,
		e.ShortContent, e.Situation, e.Reaction,
		e.PhysicalSensation, e.DesiredReaction, e.GratitudeMoment,
		e.SelfKindWords, e.ImageURL,
		e.ID, e.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("restoring diary entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFound("diary entry not found")
	}
	e.IsDeleted = false

	return nil
}

// SoftDelete marks an entry deleted. The row and its diary_tags stay.
func (r *entryRepository) SoftDelete(ctx context.Context, id int64, profileID string) error {
	query := `UPDATE diaries SET is_deleted = TRUE, updated_at = NOW()
	           WHERE id = ? AND profile_id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, profileID)
	if err != nil {
		return fmt.Errorf("soft-deleting diary entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFound("diary entry not found")
	}

	return nil
}

// ListCalendarDates returns the sorted, distinct dates of the profile's
// live entries in the given year. With one entry per day the DISTINCT is
// technically redundant, but it keeps the contract honest.
func (r *entryRepository) ListCalendarDates(ctx context.Context, profileID string, year int) ([]string, error) {
	query := `SELECT DISTINCT DATE_FORMAT(date, '%Y-%m-%d') FROM diaries
	           WHERE profile_id = ? AND is_deleted = FALSE
	             AND date >= ? AND date <= ?
	           ORDER BY 1 ASC`

	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)

	rows, err := r.db.QueryContext(ctx, query, profileID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing calendar dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning calendar date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating calendar dates: %w", err)
	}

	return dates, nil
}

// GetEntryTagsBatch returns emotion tags for multiple entries in a single
// query, keyed by entry id. This is the second half of every list fetch:
// one query for the page of entries, one query here for all their tags.
//
// Returns an empty map if no entry IDs are provided.
func (r *entryRepository) GetEntryTagsBatch(ctx context.Context, entryIDs []int64) (map[int64][]emotions.EmotionTag, error) {
	if len(entryIDs) == 0 {
		return make(map[int64][]emotions.EmotionTag), nil
	}

	placeholders := make([]string, len(entryIDs))
	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT dt.diary_id, t.id, t.profile_id, t.name, t.color,
	           t.category, t.is_default, t.usage_count, t.created_at, t.updated_at
	           FROM emotion_tags t
	           INNER JOIN diary_tags dt ON dt.emotion_tag_id = t.id
	           WHERE dt.diary_id IN (%s)
	           ORDER BY t.name ASC`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch getting entry tags: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]emotions.EmotionTag)
	for rows.Next() {
		var diaryID int64
		var t emotions.EmotionTag
		var category sql.NullString
		if err := rows.Scan(&diaryID, &t.ID, &t.ProfileID, &t.Name, &t.Color,
			&category, &t.IsDefault, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning batch entry tag row: %w", err)
		}
		if category.Valid {
			c := emotions.Category(category.String)
			t.Category = &c
		}
		result[diaryID] = append(result[diaryID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch entry tag rows: %w", err)
	}

	return result, nil
}

// SetEntryTags replaces the entry's tag set with the provided ids. It diffs
// against the current set so unchanged associations cause no writes, and
// uses INSERT IGNORE so a concurrent duplicate attach stays a no-op (the
// (diary_id, emotion_tag_id) pair is unique).
func (r *entryRepository) SetEntryTags(ctx context.Context, entryID int64, tagIDs []int64) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT emotion_tag_id FROM diary_tags WHERE diary_id = ?`, entryID)
	if err != nil {
		return fmt.Errorf("getting current entry tags: %w", err)
	}
	defer rows.Close()

	currentSet := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning current entry tag: %w", err)
		}
		currentSet[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating current entry tags: %w", err)
	}

	desiredSet := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		desiredSet[id] = true
	}

	// Remove tags that are in current but not in desired.
	for id := range currentSet {
		if !desiredSet[id] {
			if _, err := r.db.ExecContext(ctx,
				`DELETE FROM diary_tags WHERE diary_id = ? AND emotion_tag_id = ?`,
				entryID, id); err != nil {
				return fmt.Errorf("removing tag %d from entry: %w", id, err)
			}
		}
	}

	// Add tags that are in desired but not in current.
	for _, id := range tagIDs {
		if !currentSet[id] {
			if _, err := r.db.ExecContext(ctx,
				`INSERT IGNORE INTO diary_tags (diary_id, emotion_tag_id) VALUES (?, ?)`,
				entryID, id); err != nil {
				return fmt.Errorf("adding tag %d to entry: %w", id, err)
			}
		}
	}

	return nil
}

// isDuplicateEntry checks if a MySQL/MariaDB error is a duplicate key violation.
// Error code 1062 is ER_DUP_ENTRY for unique constraint violations.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
