package diary

import (
	"sort"
	"strings"
)

// This file is the filter/sort engine: pure, side-effect-free functions
// over an in-memory entry slice. The store uses them to finish query
// results (completion sorting) and callers can re-apply them client-side
// to refine an already-fetched page; both paths produce identical results
// because the predicates are shared. None of these functions return
// errors -- an undefined filter is a no-op.

// Filters bundles every list refinement in one value for ApplyAll.
type Filters struct {
	// SearchQuery is matched case-insensitively as a substring of
	// shortContent, situation, or reaction. Blank means no filter.
	SearchQuery string

	// EmotionTagID restricts to entries whose tag set contains the id.
	// Nil means no filter.
	EmotionTagID *int64

	// Completion partitions on the derived completion state.
	Completion CompletionFilter

	// Date keeps only entries on this canonical YYYY-MM-DD day.
	// Empty means no filter.
	Date string

	// SortBy orders the final result. Unrecognized orders fall back to
	// date-desc.
	SortBy SortOrder
}

// ApplySearch keeps entries where the query appears (case-insensitively)
// in at least one of shortContent, situation, or reaction. A blank or
// whitespace-only query returns the input unchanged.
func ApplySearch(entries []EntryWithTags, query string) []EntryWithTags {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	q := strings.ToLower(query)
	matches := func(field *string) bool {
		return field != nil && strings.Contains(strings.ToLower(*field), q)
	}

	out := make([]EntryWithTags, 0, len(entries))
	for _, e := range entries {
		if matches(e.ShortContent) || matches(e.Situation) || matches(e.Reaction) {
			out = append(out, e)
		}
	}
	return out
}

// ApplyEmotion keeps entries whose tag set contains the given tag id.
// A nil id returns the input unchanged.
func ApplyEmotion(entries []EntryWithTags, tagID *int64) []EntryWithTags {
	if tagID == nil {
		return entries
	}

	out := make([]EntryWithTags, 0, len(entries))
	for _, e := range entries {
		for _, t := range e.EmotionTags {
			if t.ID == *tagID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// ApplyCompletion partitions on the completedSteps == totalSteps predicate:
// "complete" keeps fully-filled entries, "incomplete" keeps the rest, and
// "all" (or anything else) returns the input unchanged.
func ApplyCompletion(entries []EntryWithTags, mode CompletionFilter) []EntryWithTags {
	switch mode {
	case CompletionComplete:
		out := make([]EntryWithTags, 0, len(entries))
		for _, e := range entries {
			if e.Complete() {
				out = append(out, e)
			}
		}
		return out
	case CompletionIncomplete:
		out := make([]EntryWithTags, 0, len(entries))
		for _, e := range entries {
			if !e.Complete() {
				out = append(out, e)
			}
		}
		return out
	}
	return entries
}

// ApplyDate keeps entries on exactly the given canonical YYYY-MM-DD day.
// An empty date returns the input unchanged. Dates are compared as
// strings -- both sides are already normalized, so no timezone math can
// shift an entry across midnight here.
func ApplyDate(entries []EntryWithTags, date string) []EntryWithTags {
	if date == "" {
		return entries
	}

	out := make([]EntryWithTags, 0, len(entries))
	for _, e := range entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// ApplySort returns a sorted copy of the entries. The sort is stable:
// entries with equal keys keep their relative input order. Unrecognized
// orders sort date-desc, the default.
func ApplySort(entries []EntryWithTags, sortBy SortOrder) []EntryWithTags {
	out := make([]EntryWithTags, len(entries))
	copy(out, entries)

	switch sortBy {
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Date < out[j].Date
		})
	case SortCompletionAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CompletionRatio() < out[j].CompletionRatio()
		})
	case SortCompletionDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CompletionRatio() > out[j].CompletionRatio()
		})
	default: // SortDateDesc and anything unrecognized.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Date > out[j].Date
		})
	}

	return out
}

// ApplyAll runs every filter in a fixed order -- search, emotion,
// completion, date -- then sorts. The order doesn't affect which entries
// survive, but filtering before sorting keeps the sort working on the
// smallest possible slice.
func ApplyAll(entries []EntryWithTags, f Filters) []EntryWithTags {
	filtered := ApplySearch(entries, f.SearchQuery)
	filtered = ApplyEmotion(filtered, f.EmotionTagID)
	filtered = ApplyCompletion(filtered, f.Completion)
	filtered = ApplyDate(filtered, f.Date)
	return ApplySort(filtered, f.SortBy)
}
