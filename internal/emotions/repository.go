package emotions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/seolhw/maumlog/internal/apperror"
)

// TagRepository defines the data access contract for emotion tags.
// One repository per aggregate root; all SQL lives here.
type TagRepository interface {
	// Create inserts a new custom tag. The tag's ID is set on the struct
	// after insert.
	Create(ctx context.Context, tag *EmotionTag) error

	// FindByID retrieves a single tag by its primary key.
	FindByID(ctx context.Context, id int64) (*EmotionTag, error)

	// ListForProfile returns the profile's custom tags plus all shared
	// defaults, ordered alphabetically by name.
	ListForProfile(ctx context.Context, profileID string) ([]EmotionTag, error)

	// ListDefaults returns only the shared default tags.
	ListDefaults(ctx context.Context) ([]EmotionTag, error)

	// ListCustom returns only the profile's own tags.
	ListCustom(ctx context.Context, profileID string) ([]EmotionTag, error)

	// Delete removes a custom tag owned by the profile. Cascade deletes
	// remove diary_tags rows. Default tags are never deleted here.
	Delete(ctx context.Context, id int64, profileID string) error

	// IncrementUsage bumps usage_count for each given tag id.
	IncrementUsage(ctx context.Context, ids []int64) error
}

// tagRepository implements TagRepository using MariaDB with hand-written SQL.
type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository backed by the given database connection.
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

const tagColumns = `id, profile_id, name, color, category, is_default, usage_count, created_at, updated_at`

// scanTag scans one emotion_tags row from any row scanner.
func scanTag(scan func(...any) error) (EmotionTag, error) {
	var t EmotionTag
	var category sql.NullString
	err := scan(
		&t.ID, &t.ProfileID, &t.Name, &t.Color, &category,
		&t.IsDefault, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if category.Valid {
		c := Category(category.String)
		t.Category = &c
	}
	return t, nil
}

// Create inserts a new custom tag and sets the auto-generated ID on the
// provided struct.
func (r *tagRepository) Create(ctx context.Context, tag *EmotionTag) error {
	query := `INSERT INTO emotion_tags (profile_id, name, color, category, is_default, usage_count)
	           VALUES (?, ?, ?, ?, ?, 0)`

	result, err := r.db.ExecContext(ctx, query,
		tag.ProfileID, tag.Name, tag.Color, tag.Category, tag.IsDefault,
	)
	if err != nil {
		// Unique (profile_id, name) violation.
		if isDuplicateEntry(err) {
			return apperror.NewConflict("you already have a tag with this name")
		}
		return fmt.Errorf("inserting emotion tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	tag.ID = id

	return nil
}

// FindByID retrieves a single tag by its primary key.
func (r *tagRepository) FindByID(ctx context.Context, id int64) (*EmotionTag, error) {
	query := `SELECT ` + tagColumns + ` FROM emotion_tags WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperror.NewNotFound("emotion tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying emotion tag by id: %w", err)
	}
	return &t, nil
}

// ListForProfile returns the profile's custom tags plus all defaults.
func (r *tagRepository) ListForProfile(ctx context.Context, profileID string) ([]EmotionTag, error) {
	query := `SELECT ` + tagColumns + ` FROM emotion_tags
	           WHERE profile_id = ? OR is_default = TRUE
	           ORDER BY name ASC`
	return r.queryTags(ctx, query, profileID)
}

// ListDefaults returns only the shared default tags.
func (r *tagRepository) ListDefaults(ctx context.Context) ([]EmotionTag, error) {
	query := `SELECT ` + tagColumns + ` FROM emotion_tags
	           WHERE is_default = TRUE
	           ORDER BY name ASC`
	return r.queryTags(ctx, query)
}

// ListCustom returns only the profile's own tags.
func (r *tagRepository) ListCustom(ctx context.Context, profileID string) ([]EmotionTag, error) {
	query := `SELECT ` + tagColumns + ` FROM emotion_tags
	           WHERE profile_id = ?
	           ORDER BY name ASC`
	return r.queryTags(ctx, query, profileID)
}

// queryTags runs a SELECT returning emotion_tags rows and scans them.
func (r *tagRepository) queryTags(ctx context.Context, query string, args ...any) ([]EmotionTag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing emotion tags: %w", err)
	}
	defer rows.Close()

	var tags []EmotionTag
	for rows.Next() {
		t, err := scanTag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning emotion tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating emotion tag rows: %w", err)
	}

	return tags, nil
}

// Delete removes a custom tag owned by the profile. The diary_tags rows are
// cascade-deleted by the foreign key constraint in the migration.
func (r *tagRepository) Delete(ctx context.Context, id int64, profileID string) error {
	query := `DELETE FROM emotion_tags
	           WHERE id = ? AND profile_id = ? AND (is_default IS NULL OR is_default = FALSE)`

	result, err := r.db.ExecContext(ctx, query, id, profileID)
	if err != nil {
		return fmt.Errorf("deleting emotion tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFound("emotion tag not found")
	}

	return nil
}

// IncrementUsage bumps usage_count for each given tag id in one statement.
func (r *tagRepository) IncrementUsage(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`UPDATE emotion_tags SET usage_count = usage_count + 1
	           WHERE id IN (%s)`, strings.Join(placeholders, ","))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("incrementing tag usage: %w", err)
	}
	return nil
}

// isDuplicateEntry checks if a MySQL/MariaDB error is a duplicate key violation.
// Error code 1062 is ER_DUP_ENTRY for unique constraint violations.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
