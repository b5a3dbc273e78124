// Package emotions implements emotion tags: labeled, colored, categorized
// markers attachable to diary entries. Tags are either global defaults
// seeded by a migration (profile_id NULL, is_default true) or custom tags
// owned by exactly one profile. A custom tag's name is unique within its
// profile. Deleting a tag cascade-deletes its diary_tags rows.
package emotions

import "time"

// Category classifies the emotional valence of a tag.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryNeutral  Category = "neutral"
)

// Valid reports whether the category is one of the known enum values.
func (c Category) Valid() bool {
	switch c {
	case CategoryPositive, CategoryNegative, CategoryNeutral:
		return true
	}
	return false
}

// EmotionTag represents one emotion marker. Color, Category and IsDefault
// are nullable in the schema, so they are pointers here; a nil ProfileID
// means the tag is a shared default.
type EmotionTag struct {
	ID         int64     `json:"id"`
	ProfileID  *string   `json:"profileId,omitempty"`
	Name       string    `json:"name"`
	Color      *string   `json:"color"`
	Category   *Category `json:"category"`
	IsDefault  *bool     `json:"isDefault"`
	UsageCount int       `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Default reports whether the tag is a shared default tag.
func (t *EmotionTag) Default() bool {
	return t.IsDefault != nil && *t.IsDefault
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateTagRequest holds the data submitted when a user creates a custom
// tag while tagging an entry.
type CreateTagRequest struct {
	Name     string `json:"name" form:"name"`
	Color    string `json:"color" form:"color"`
	Category string `json:"category" form:"category"`
}
