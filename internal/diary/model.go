// Package diary implements the core of maumlog: diary entries, the
// filter/sort engine, and list pagination. One entry exists per profile
// per calendar day; each entry has seven optional reflection fields and a
// set of emotion tags. Deletion is always soft (is_deleted flag) so the
// history stays recoverable.
//
// Completion is derived, never stored: an entry's completedSteps counts
// how many of the seven text fields hold non-blank content, out of a
// fixed totalSteps of 7.
package diary

import (
	"strings"
	"time"

	"github.com/seolhw/maumlog/internal/emotions"
)

// TotalSteps is the fixed number of reflection fields that make up a
// complete entry.
const TotalSteps = 7

// Entry is one diary record for a single calendar day. Date is a
// timezone-naive YYYY-MM-DD string. The seven reflection fields are
// nullable: nil means the user never reached that step.
type Entry struct {
	ID        int64   `json:"id"`
	ProfileID string  `json:"profileId"`
	Date      string  `json:"date"`

	ShortContent      *string `json:"shortContent"`
	Situation         *string `json:"situation"`
	Reaction          *string `json:"reaction"`
	PhysicalSensation *string `json:"physicalSensation"`
	DesiredReaction   *string `json:"desiredReaction"`
	GratitudeMoment   *string `json:"gratitudeMoment"`
	SelfKindWords     *string `json:"selfKindWords"`

	ImageURL  *string   `json:"imageUrl"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// textFields returns the seven reflection fields in step order.
func (e *Entry) textFields() [TotalSteps]*string {
	return [TotalSteps]*string{
		e.ShortContent,
		e.Situation,
		e.Reaction,
		e.PhysicalSensation,
		e.DesiredReaction,
		e.GratitudeMoment,
		e.SelfKindWords,
	}
}

// CompletedSteps counts the reflection fields that hold non-blank content
// after trimming whitespace. Always recomputed from the fields.
func (e *Entry) CompletedSteps() int {
	n := 0
	for _, f := range e.textFields() {
		if f != nil && strings.TrimSpace(*f) != "" {
			n++
		}
	}
	return n
}

// EntryWithTags is an entry enriched with its emotion tags and the derived
// completion counters, the shape every list and detail response uses.
type EntryWithTags struct {
	Entry
	EmotionTags    []emotions.EmotionTag `json:"emotionTags"`
	CompletedSteps int                   `json:"completedSteps"`
	TotalSteps     int                   `json:"totalSteps"`
}

// Complete reports whether every reflection field is filled.
func (e *EntryWithTags) Complete() bool {
	return e.CompletedSteps == e.TotalSteps
}

// CompletionRatio returns completedSteps/totalSteps in [0,1].
func (e *EntryWithTags) CompletionRatio() float64 {
	return float64(e.CompletedSteps) / float64(e.TotalSteps)
}

// Enrich wraps an entry with its tags and materialized completion counters.
func Enrich(e Entry, tags []emotions.EmotionTag) EntryWithTags {
	if tags == nil {
		tags = []emotions.EmotionTag{}
	}
	return EntryWithTags{
		Entry:          e,
		EmotionTags:    tags,
		CompletedSteps: e.CompletedSteps(),
		TotalSteps:     TotalSteps,
	}
}

// SortOrder enumerates the list sort orders.
type SortOrder string

const (
	SortDateAsc        SortOrder = "date-asc"
	SortDateDesc       SortOrder = "date-desc"
	SortCompletionAsc  SortOrder = "completion-asc"
	SortCompletionDesc SortOrder = "completion-desc"
)

// ParseSortOrder maps a query-param string to a SortOrder. Anything
// unrecognized falls back to date-desc, the default everywhere.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortDateAsc, SortDateDesc, SortCompletionAsc, SortCompletionDesc:
		return SortOrder(s)
	}
	return SortDateDesc
}

// ByCompletion reports whether the order sorts on the completion ratio,
// which happens in memory after the fetch.
func (s SortOrder) ByCompletion() bool {
	return s == SortCompletionAsc || s == SortCompletionDesc
}

// CompletionFilter enumerates the completion filter modes.
type CompletionFilter string

const (
	CompletionAll        CompletionFilter = "all"
	CompletionComplete   CompletionFilter = "complete"
	CompletionIncomplete CompletionFilter = "incomplete"
)

// ParseCompletionFilter maps a query-param string to a CompletionFilter,
// defaulting to "all".
func ParseCompletionFilter(s string) CompletionFilter {
	switch CompletionFilter(s) {
	case CompletionComplete, CompletionIncomplete:
		return CompletionFilter(s)
	}
	return CompletionAll
}

// ListOptions are the knobs for listing a profile's entries. Zero values
// mean "no filter" for the optional fields.
type ListOptions struct {
	// SearchQuery matches case-insensitively as a substring of
	// shortContent, situation, or reaction.
	SearchQuery string

	// SortBy orders the result. Completion orders are applied in memory
	// after the fetch; the store itself only sorts by date.
	SortBy SortOrder

	// DateFrom/DateTo bound the entry date inclusively (YYYY-MM-DD).
	DateFrom string
	DateTo   string

	// EmotionTagID restricts to entries carrying the tag.
	EmotionTagID *int64

	// Completion keeps only complete or incomplete entries. Like the
	// completion sorts it is applied in memory after the fetch.
	Completion CompletionFilter

	// Limit/Offset page through the result.
	Limit  int
	Offset int
}

// --- Request DTOs (bound from HTTP requests) ---

// EntryRequest holds the data submitted when creating or updating an entry
// directly (outside the wizard). Blank fields stay empty on create and are
// cleared on update; the wizard builds the same shape from its form data.
type EntryRequest struct {
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
