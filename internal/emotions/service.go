package emotions

import (
	"context"
	"regexp"
	"strings"

	"github.com/seolhw/maumlog/internal/apperror"
)

// hexColorPattern validates 7-character hex color strings (#RRGGBB).
var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// defaultColor is the gray used when a tag is created without a color.
// Matches the column default in the migration.
const defaultColor = "#6B7280"

// maxTagNameLen caps tag names; anything longer is a client bug, not a
// legitimate emotion.
const maxTagNameLen = 50

// TagService defines the business logic contract for emotion tag operations.
// Handlers call these methods -- they never touch the repository directly.
type TagService interface {
	// Create validates input and creates a custom tag owned by the profile.
	Create(ctx context.Context, profileID string, req CreateTagRequest) (*EmotionTag, error)

	// GetByID retrieves a single tag by ID.
	GetByID(ctx context.Context, id int64) (*EmotionTag, error)

	// ListForProfile returns the profile's custom tags plus all defaults.
	ListForProfile(ctx context.Context, profileID string) ([]EmotionTag, error)

	// ListDefaults returns only the shared default tags.
	ListDefaults(ctx context.Context) ([]EmotionTag, error)

	// Delete removes a custom tag owned by the profile and all its entry
	// associations. Default tags cannot be deleted.
	Delete(ctx context.Context, id int64, profileID string) error
}

// tagService implements TagService with input validation.
type tagService struct {
	repo TagRepository
}

// NewTagService creates a new TagService backed by the given repository.
func NewTagService(repo TagRepository) TagService {
	return &tagService{repo: repo}
}

// Create validates the tag name, color, and category, then persists the new
// custom tag. Defaults match the schema: gray color, neutral category.
func (s *tagService) Create(ctx context.Context, profileID string, req CreateTagRequest) (*EmotionTag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewBadRequest("tag name is required")
	}
	if len(name) > maxTagNameLen {
		return nil, apperror.NewBadRequest("tag name must be 50 characters or less")
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = defaultColor
	}
	if !hexColorPattern.MatchString(color) {
		return nil, apperror.NewBadRequest("color must be a valid hex color (e.g. #ff5733)")
	}

	category := CategoryNeutral
	if req.Category != "" {
		category = Category(req.Category)
		if !category.Valid() {
			return nil, apperror.NewBadRequest("category must be positive, negative, or neutral")
		}
	}

	isDefault := false
	tag := &EmotionTag{
		ProfileID: &profileID,
		Name:      name,
		Color:     &color,
		Category:  &category,
		IsDefault: &isDefault,
	}

	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

// GetByID retrieves a single tag by its primary key.
func (s *tagService) GetByID(ctx context.Context, id int64) (*EmotionTag, error) {
	return s.repo.FindByID(ctx, id)
}

// ListForProfile returns the profile's custom tags plus all defaults.
func (s *tagService) ListForProfile(ctx context.Context, profileID string) ([]EmotionTag, error) {
	return s.repo.ListForProfile(ctx, profileID)
}

// ListDefaults returns only the shared default tags.
func (s *tagService) ListDefaults(ctx context.Context) ([]EmotionTag, error) {
	return s.repo.ListDefaults(ctx)
}

// Delete removes a custom tag. The repository scopes the delete to tags the
// profile owns, so defaults and other profiles' tags come back as not found.
func (s *tagService) Delete(ctx context.Context, id int64, profileID string) error {
	return s.repo.Delete(ctx, id, profileID)
}
