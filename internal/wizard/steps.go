package wizard

// Field identifies one editable form field.
type Field string

const (
	FieldDate              Field = "date"
	FieldShortContent      Field = "shortContent"
	FieldSituation         Field = "situation"
	FieldReaction          Field = "reaction"
	FieldPhysicalSensation Field = "physicalSensation"
	FieldDesiredReaction   Field = "desiredReaction"
	FieldGratitudeMoment   Field = "gratitudeMoment"
	FieldSelfKindWords     Field = "selfKindWords"
)

// fieldLimits caps each text field. Values over the limit are truncated,
// not rejected.
var fieldLimits = map[Field]int{
	FieldShortContent:      100,
	FieldSituation:         1000,
	FieldReaction:          1000,
	FieldPhysicalSensation: 500,
	FieldDesiredReaction:   500,
	FieldGratitudeMoment:   500,
	FieldSelfKindWords:     500,
}

// Step is one screen of the entry creation flow.
type Step struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// TotalSteps is the number of wizard screens. Distinct from the seven
// completion-counted fields; two screens carry two fields each on top of
// the tag and summary screens.
const TotalSteps = len(steps)

// steps is the single source of truth for the flow. Per-step behavior is
// driven off this table, never a switch on the step number.
var steps = [...]Step{
	{
		ID:          1,
		Name:        "emotions",
		Title:       "Emotion tags",
		Description: "Which emotions colored this day?",
		Fields:      []Field{FieldDate},
	},
	{
		ID:          2,
		Name:        "summary",
		Title:       "Daily summary",
		Description: "Sum the day up in a sentence, with a photo if you like.",
		Fields:      []Field{FieldShortContent},
	},
	{
		ID:          3,
		Name:        "situation",
		Title:       "Situation & feelings",
		Description: "What happened, and how did you react?",
		Fields:      []Field{FieldSituation, FieldReaction},
	},
	{
		ID:          4,
		Name:        "body",
		Title:       "Body & response",
		Description: "What did your body feel, and how would you rather have responded?",
		Fields:      []Field{FieldPhysicalSensation, FieldDesiredReaction},
	},
	{
		ID:          5,
		Name:        "gratitude",
		Title:       "Gratitude & encouragement",
		Description: "A grateful moment, and kind words for yourself.",
		Fields:      []Field{FieldGratitudeMoment, FieldSelfKindWords},
	},
}

// Steps returns the ordered step definitions.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps[:])
	return out
}

// StepByID returns the step definition for the given id.
func StepByID(id int) (Step, bool) {
	if id < 1 || id > len(steps) {
		return Step{}, false
	}
	return steps[id-1], true
}

// truncate caps a value at the field's limit, counting runes so a
// multi-byte character never gets split.
func truncate(f Field, value string) string {
	limit, ok := fieldLimits[f]
	if !ok {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
