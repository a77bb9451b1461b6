package models

// ProvenanceSource tells whether a value was found in the documents or filled in
type ProvenanceSource string

const (
	SourcePitchDeck ProvenanceSource = "pitch_deck"
	SourceSynthetic ProvenanceSource = "synthetic"
)

// NotDisclosedInPitchDeck is the literal value of every synthetic field
const NotDisclosedInPitchDeck = "Not disclosed in pitch deck"

// RoleNotListed is the role of the fallback roster entry
const RoleNotListed = "Not explicitly listed"

// ProvenancedValue is a value tagged with where it came from
type ProvenancedValue struct {
	Value  string           `json:"value"`
	Source ProvenanceSource `json:"source"`
}

// Disclosed wraps a value found in the pitch deck
func Disclosed(value string) *ProvenancedValue {
	return &ProvenancedValue{Value: value, Source: SourcePitchDeck}
}

// Synthetic returns the "not disclosed" placeholder
func Synthetic() *ProvenancedValue {
	return &ProvenancedValue{Value: NotDisclosedInPitchDeck, Source: SourceSynthetic}
}

// TeamMember represents one person on the roster
type TeamMember struct {
	Name       string            `json:"name"`
	Role       string            `json:"role"`
	Background string            `json:"background,omitempty"`
	Experience *ProvenancedValue `json:"experience,omitempty"`
	Education  *ProvenancedValue `json:"education,omitempty"`
	AIAnalysis string            `json:"aiAnalysis,omitempty"`
}

// TeamInfo represents the extracted team roster
type TeamInfo struct {
	Members      []TeamMember `json:"members"`
	TotalMembers int          `json:"totalMembers"`
}
