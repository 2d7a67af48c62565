package discovery

import (
	"reflect"
	"testing"
)

func TestAssess_TierBoundaries(t *testing.T) {
	cases := []struct {
		overall float64
		want    string
	}{
		{0.95, AssessmentExcellent},
		{0.85, AssessmentExcellent},
		{0.84, AssessmentVeryGood},
		{0.70, AssessmentVeryGood},
		{0.69, AssessmentGood},
		{0.55, AssessmentGood},
		{0.54, AssessmentFair},
		{0.10, AssessmentFair},
	}

	for _, tc := range cases {
		if got := assess(tc.overall); got != tc.want {
			t.Errorf("assess(%v): expected %s, got %s", tc.overall, tc.want, got)
		}
	}
}

func TestExplain_ReasonTiers(t *testing.T) {
	scores := catScores(0.9, 0.7, 0.5, 0.3)

	e := Explain(scores, 0.65, nil)

	if want := []string{"Strong physical compatibility (90%)"}; !reflect.DeepEqual(e.PrimaryReasons, want) {
		t.Errorf("primary: expected %v, got %v", want, e.PrimaryReasons)
	}
	if want := []string{"Good lifestyle compatibility (70%)"}; !reflect.DeepEqual(e.SecondaryReasons, want) {
		t.Errorf("secondary: expected %v, got %v", want, e.SecondaryReasons)
	}
	if want := []string{"Weak relationship compatibility (30%)"}; !reflect.DeepEqual(e.Concerns, want) {
		t.Errorf("concerns: expected %v, got %v", want, e.Concerns)
	}
	if e.Assessment != AssessmentGood {
		t.Errorf("expected good assessment, got %s", e.Assessment)
	}
	if e.Strength != 0.65 {
		t.Errorf("expected strength 0.65, got %v", e.Strength)
	}
}

func TestExplain_MiddlingCategoryGetsNoReason(t *testing.T) {
	// 0.5 sits between the secondary floor and the concern ceiling.
	e := Explain(catScores(0.5, 0.5, 0.5, 0.5), 0.5, nil)

	if len(e.PrimaryReasons)+len(e.SecondaryReasons)+len(e.Concerns) != 0 {
		t.Errorf("expected no reasons for uniformly middling scores, got %+v", e)
	}
}

func TestExplain_HighlightsFollowCategoryOrder(t *testing.T) {
	matched := map[string][]string{
		string(CategoryRelationship): {"looking for the same thing"},
		string(CategoryPhysical):     {"age within preferred range"},
	}

	e := Explain(catScores(0.5, 0.5, 0.5, 0.5), 0.5, matched)

	want := []string{"age within preferred range", "looking for the same thing"}
	if !reflect.DeepEqual(e.Highlights, want) {
		t.Errorf("expected %v, got %v", want, e.Highlights)
	}
}

func TestImprovementSuggestions(t *testing.T) {
	mismatched := map[string][]string{
		string(CategoryPhysical):     {"age outside preferred range", "body type outside preference"},
		string(CategoryRelationship): {"looking for different things"},
	}

	got := improvementSuggestions(mismatched)
	want := []string{
		"Widen your age range to include matches like this",
		"Consider broadening your body type preferences",
		"Review the relationship types you are open to",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestImprovementSuggestions_IgnoresUnknownLabels(t *testing.T) {
	mismatched := map[string][]string{
		string(CategorySocial): {"some label without a suggestion"},
	}

	if got := improvementSuggestions(mismatched); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestImprovementSuggestions_Deduplicates(t *testing.T) {
	mismatched := map[string][]string{
		string(CategoryPhysical):  {"age outside preferred range"},
		string(CategoryLifestyle): {"age outside preferred range"},
	}

	if got := improvementSuggestions(mismatched); len(got) != 1 {
		t.Errorf("expected one deduplicated suggestion, got %v", got)
	}
}
