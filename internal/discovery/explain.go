// internal/discovery/explain.go

package discovery

import "fmt"

// Assessment tiers for an overall score.
const (
	AssessmentExcellent = "excellent"
	AssessmentVeryGood  = "very_good"
	AssessmentGood      = "good"
	AssessmentFair      = "fair"
)

// Explanation is the human-readable summary of one match result. Strength
// mirrors the overall score so callers can keep ranking ties stable.
type Explanation struct {
	PrimaryReasons   []string `json:"primary_reasons,omitempty"`
	SecondaryReasons []string `json:"secondary_reasons,omitempty"`
	Highlights       []string `json:"highlights,omitempty"`
	Concerns         []string `json:"concerns,omitempty"`
	Assessment       string   `json:"assessment"`
	Strength         float64  `json:"strength"`
}

var categoryLabels = map[Category]string{
	CategoryPhysical:     "physical",
	CategoryLifestyle:    "lifestyle",
	CategorySocial:       "social",
	CategoryRelationship: "relationship",
}

// Explain turns category scores and the matched preference labels into
// reasons, highlights, and an assessment tier. Categories at 0.8 and above
// become primary reasons, 0.6 to 0.8 secondary, anything under 0.4 a concern.
// Matched preference labels pass through as highlights verbatim.
func Explain(scores CategoryScores, overall float64, matched map[string][]string) *Explanation {
	e := &Explanation{
		Assessment: assess(overall),
		Strength:   overall,
	}

	for _, c := range Categories() {
		cs := scores.Get(c)
		label := categoryLabels[c]
		switch {
		case cs.Score >= 0.8:
			e.PrimaryReasons = append(e.PrimaryReasons, fmt.Sprintf("Strong %s compatibility (%.0f%%)", label, cs.Score*100))
		case cs.Score >= 0.6:
			e.SecondaryReasons = append(e.SecondaryReasons, fmt.Sprintf("Good %s compatibility (%.0f%%)", label, cs.Score*100))
		case cs.Score < 0.4:
			e.Concerns = append(e.Concerns, fmt.Sprintf("Weak %s compatibility (%.0f%%)", label, cs.Score*100))
		}
	}

	// Canonical category order keeps highlight order reproducible.
	for _, c := range Categories() {
		e.Highlights = append(e.Highlights, matched[string(c)]...)
	}

	return e
}

func assess(overall float64) string {
	switch {
	case overall >= 0.85:
		return AssessmentExcellent
	case overall >= 0.70:
		return AssessmentVeryGood
	case overall >= 0.55:
		return AssessmentGood
	default:
		return AssessmentFair
	}
}

// mismatchSuggestions maps a mismatched preference label to the concrete
// adjustment that would admit candidates like this one.
var mismatchSuggestions = map[string]string{
	"age outside preferred range":    "Widen your age range to include matches like this",
	"height outside preferred range": "Widen your height range to include matches like this",
	"body type outside preference":   "Consider broadening your body type preferences",
	"education outside preference":   "Consider broadening your education preferences",
	"looking for different things":   "Review the relationship types you are open to",
}

// improvementSuggestions derives per-result adjustment hints from the
// mismatched preference labels, deduplicated in category order.
func improvementSuggestions(mismatched map[string][]string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, c := range Categories() {
		for _, label := range mismatched[string(c)] {
			s, ok := mismatchSuggestions[label]
			if !ok || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
