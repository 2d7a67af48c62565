package discovery

import (
	"math"
	"testing"
)

func intp(v int) *int { return &v }

func scoresClose(got, want float64) bool {
	return math.Abs(got-want) <= 1e-9
}

// ---- physical ----

func TestScoreBodyType(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name      string
		candidate BodyType
		prefs     *Preferences
		want      float64
	}{
		{"no preferences set", BodyTypeSlim, nil, 0.7},
		{"empty preference list", BodyTypeSlim, &Preferences{}, 0.7},
		{"candidate body unknown", "", &Preferences{BodyTypes: []BodyType{BodyTypeSlim}}, 0.7},
		{"preferred type", BodyTypeAthletic, &Preferences{BodyTypes: []BodyType{BodyTypeSlim, BodyTypeAthletic}}, 1.0},
		{"outside preference", BodyTypeCurvy, &Preferences{BodyTypes: []BodyType{BodyTypeSlim}}, 0.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreBodyType(tc.candidate, tc.prefs)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreHeight(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name             string
		seeker, candidate *int
		want             float64
	}{
		{"both unknown", nil, nil, 0.7},
		{"seeker unknown", nil, intp(180), 0.7},
		{"candidate unknown", intp(175), nil, 0.7},
		{"identical", intp(175), intp(175), 1.0},
		{"within 5cm", intp(175), intp(180), 1.0},
		{"within 15cm", intp(175), intp(190), 0.8},
		{"within 25cm", intp(175), intp(199), 0.6},
		{"over 25cm", intp(160), intp(190), 0.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreHeight(tc.seeker, tc.candidate)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreAge_PreferredRange(t *testing.T) {
	s := &compatibilityScorer{}
	prefs := &Preferences{AgeMin: 25, AgeMax: 35}

	cases := []struct {
		candidateAge int
		want         float64
	}{
		{25, 1.0}, // lower bound inclusive
		{35, 1.0}, // upper bound inclusive
		{30, 1.0},
		{24, 0.7},
		{37, 0.7},
		{22, 0.4},
		{40, 0.4},
		{19, 0.1},
		{41, 0.1},
	}

	for _, tc := range cases {
		got := s.scoreAge(30, tc.candidateAge, prefs)
		if got != tc.want {
			t.Errorf("age %d: expected %v, got %v", tc.candidateAge, tc.want, got)
		}
	}
}

func TestScoreAge_NoRangeFallsBackToGap(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		candidateAge int
		want         float64
	}{
		{33, 1.0},
		{27, 1.0},
		{37, 0.8},
		{23, 0.8},
		{42, 0.6},
		{43, 0.3},
	}

	for _, tc := range cases {
		got := s.scoreAge(30, tc.candidateAge, nil)
		if got != tc.want {
			t.Errorf("age gap %d: expected %v, got %v", tc.candidateAge-30, tc.want, got)
		}
	}
}

func TestScoreAppearance(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		photos int
		want   float64
	}{
		{0, 0.2},
		{1, 0.4},
		{2, 0.6},
		{3, 0.8},
		{4, 0.8},
		{5, 1.0},
		{12, 1.0},
	}

	for _, tc := range cases {
		got := s.scoreAppearance(tc.photos)
		if got != tc.want {
			t.Errorf("%d photos: expected %v, got %v", tc.photos, tc.want, got)
		}
	}
}

// ---- lifestyle ----

func TestScoreSmoking(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name string
		a, b SmokingLevel
		want float64
	}{
		{"same level", SmokingNever, SmokingNever, 1.0},
		{"one step apart", SmokingNever, SmokingOccasionally, 0.7},
		{"two steps apart", SmokingNever, SmokingSocially, 0.4},
		{"three steps apart", SmokingNever, SmokingRegularly, 0.2},
		{"unknown candidate", SmokingNever, "", 0.5},
		{"unknown seeker", "", SmokingRegularly, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreSmoking(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreDrinking(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		a, b DrinkingLevel
		want float64
	}{
		{DrinkingSocially, DrinkingSocially, 1.0},
		{DrinkingSocially, DrinkingRarely, 0.7},
		{DrinkingNever, DrinkingSocially, 0.5},
		{DrinkingNever, DrinkingFrequently, 0.3},
		{DrinkingNever, "", 0.5},
	}

	for _, tc := range cases {
		got := s.scoreDrinking(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestScoreExercise(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		a, b ExerciseLevel
		want float64
	}{
		{ExerciseDaily, ExerciseDaily, 1.0},
		{ExerciseDaily, ExerciseOften, 0.8},
		{ExerciseDaily, ExerciseSometimes, 0.6},
		{ExerciseDaily, ExerciseRarely, 0.4},
		{ExerciseDaily, ExerciseNever, 0.4}, // clamps to the last band
		{"", ExerciseDaily, 0.5},
	}

	for _, tc := range cases {
		got := s.scoreExercise(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestScoreDiet(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		a, b DietType
		want float64
	}{
		{DietVegan, DietVegan, 1.0},
		{DietVegetarian, DietVegan, 0.7},
		{DietVegan, DietVegetarian, 0.7},
		{DietOmnivore, DietVegetarian, 0.6},
		{DietVegetarian, DietOmnivore, 0.6},
		{DietOmnivore, DietVegan, 0.5},
		{DietPescatarian, DietOther, 0.5},
		{"", DietVegan, 0.5},
		{DietVegan, "", 0.5},
	}

	for _, tc := range cases {
		got := s.scoreDiet(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

// ---- social ----

func TestScoreEducation(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		a, b EducationLevel
		want float64
	}{
		{EducationBachelors, EducationBachelors, 1.0},
		{EducationBachelors, EducationMasters, 0.8},
		{EducationHighSchool, EducationBachelors, 0.6},
		{EducationHighSchool, EducationMasters, 0.4},
		{EducationHighSchool, EducationPhD, 0.4},
		{EducationSomeCollege, EducationTradeSchool, 1.0}, // same rank
		{"", EducationPhD, 0.5},
		{EducationPhD, "", 0.5},
	}

	for _, tc := range cases {
		got := s.scoreEducation(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestScoreInterests(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0.5},
		{"seeker empty", nil, []string{"hiking"}, 0.5},
		{"full overlap of smaller set", []string{"hiking", "cooking"}, []string{"hiking", "cooking", "travel", "music"}, 1.0},
		{"quarter overlap", []string{"a", "b", "c", "d"}, []string{"a", "x", "y", "z"}, 0.25},
		{"no overlap", []string{"chess"}, []string{"surfing"}, 0.0},
		{"case insensitive", []string{"Hiking"}, []string{"hiking"}, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreInterests(tc.a, tc.b)
			if !scoresClose(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreLanguages(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"either empty", nil, []string{"english"}, 0.7},
		{"shared language", []string{"english", "spanish"}, []string{"spanish"}, 1.0},
		{"no common language", []string{"english"}, []string{"japanese"}, 0.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreLanguages(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreSocial_DisjointTagsScoreLow(t *testing.T) {
	seeker := &Profile{Interests: []string{"chess", "opera"}, Languages: []string{"french"}}
	candidate := &Profile{Interests: []string{"surfing", "climbing"}, Languages: []string{"german"}}

	got := NewScorer().ScoreCategories(seeker, candidate, nil).Social

	// interests 0.0 and languages 0.2 against three neutral signals.
	if !scoresClose(got.Score, 0.34) {
		t.Errorf("expected 0.34, got %v", got.Score)
	}
	if got.Score >= 0.5 {
		t.Errorf("disjoint interests and languages should pull social below neutral, got %v", got.Score)
	}
}

// ---- relationship ----

func TestScoreRelationshipType(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both unset", nil, nil, 0.5},
		{"candidate unset", []string{"long_term"}, nil, 0.5},
		{"shared goal", []string{"long_term", "casual"}, []string{"long_term"}, 1.0},
		{"conflicting goals", []string{"long_term"}, []string{"casual"}, 0.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.scoreRelationshipType(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreOrientation(t *testing.T) {
	s := &compatibilityScorer{}

	cases := []struct {
		a, b Orientation
		want float64
	}{
		{OrientationStraight, OrientationStraight, 1.0},
		{OrientationBisexual, OrientationStraight, 0.8},
		{OrientationStraight, OrientationBisexual, 0.8},
		{OrientationStraight, OrientationGay, 0.3},
		{"", OrientationStraight, 0.5},
		{OrientationStraight, "", 0.5},
	}

	for _, tc := range cases {
		got := s.scoreOrientation(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

// ---- aggregation helpers ----

func TestNewCategoryScore_AveragesBreakdown(t *testing.T) {
	cs := newCategoryScore(map[string]float64{
		"a": 1.0,
		"b": 0.5,
		"c": 0.0,
	})
	if !scoresClose(cs.Score, 0.5) {
		t.Errorf("expected mean 0.5, got %v", cs.Score)
	}
	if len(cs.Breakdown) != 3 {
		t.Errorf("expected breakdown preserved, got %v", cs.Breakdown)
	}
}

func TestNewCategoryScore_EmptyBreakdown(t *testing.T) {
	cs := newCategoryScore(map[string]float64{})
	if cs.Score != neutralScore {
		t.Errorf("expected neutral score for empty breakdown, got %v", cs.Score)
	}
}

func TestScoreCategories_IdenticalProfilesScoreHigh(t *testing.T) {
	p := &Profile{
		Age:               30,
		HeightCm:          intp(175),
		BodyType:          BodyTypeAthletic,
		PhotoCount:        5,
		Smoking:           SmokingNever,
		Drinking:          DrinkingSocially,
		Exercise:          ExerciseOften,
		Diet:              DietOmnivore,
		Education:         EducationBachelors,
		Interests:         []string{"hiking", "cooking"},
		Languages:         []string{"english"},
		RelationshipTypes: []string{"long_term"},
		SexualOrientation: OrientationStraight,
	}
	twin := *p

	scores := NewScorer().ScoreCategories(p, &twin, nil)

	for _, c := range Categories() {
		cs := scores.Get(c)
		if cs.Score < 0.7 {
			t.Errorf("category %s: identical profiles scored %v", c, cs.Score)
		}
		if len(cs.Breakdown) == 0 {
			t.Errorf("category %s: expected a factor breakdown", c)
		}
	}
}

func TestScoreCategories_BlankProfilesStayNeutral(t *testing.T) {
	scores := NewScorer().ScoreCategories(&Profile{Age: 30}, &Profile{Age: 30}, nil)

	// Nothing is known about either side beyond age, so no category
	// should collapse toward zero.
	for _, c := range Categories() {
		if got := scores.Get(c).Score; got < 0.4 {
			t.Errorf("category %s: expected near-neutral score, got %v", c, got)
		}
	}
}

// ---- preference matches and tags ----

func TestPreferenceMatches_Labels(t *testing.T) {
	seeker := &Profile{Age: 30, HeightCm: intp(175)}
	candidate := &Profile{
		Age:               28,
		HeightCm:          intp(170),
		BodyType:          BodyTypeSlim,
		Education:         EducationBachelors,
		SexualOrientation: OrientationStraight,
		RelationshipTypes: []string{"long_term"},
	}
	prefs := &Preferences{
		AgeMin:            25,
		AgeMax:            35,
		BodyTypes:         []BodyType{BodyTypeSlim},
		HeightMinCm:       intp(160),
		HeightMaxCm:       intp(180),
		EducationLevels:   []EducationLevel{EducationBachelors},
		Orientations:      []Orientation{OrientationStraight},
		RelationshipTypes: []string{"long_term"},
	}

	matched, mismatched := preferenceMatches(seeker, candidate, prefs, CategoryScores{})

	wantMatched := map[string][]string{
		string(CategoryPhysical):     {"age within preferred range", "preferred body type", "height within preferred range"},
		string(CategorySocial):       {"preferred education level"},
		string(CategoryRelationship): {"accepted orientation", "looking for the same thing"},
	}
	for cat, labels := range wantMatched {
		got := matched[cat]
		for _, label := range labels {
			if !containsLabel(got, label) {
				t.Errorf("category %s: missing label %q in %v", cat, label, got)
			}
		}
	}
	for cat, labels := range mismatched {
		if len(labels) != 0 {
			t.Errorf("category %s: unexpected mismatches %v", cat, labels)
		}
	}
}

func TestPreferenceMatches_Mismatches(t *testing.T) {
	seeker := &Profile{Age: 30}
	candidate := &Profile{
		Age:               45,
		BodyType:          BodyTypeCurvy,
		RelationshipTypes: []string{"casual"},
	}
	prefs := &Preferences{
		AgeMin:            25,
		AgeMax:            35,
		BodyTypes:         []BodyType{BodyTypeSlim},
		RelationshipTypes: []string{"long_term"},
	}

	_, mismatched := preferenceMatches(seeker, candidate, prefs, CategoryScores{})

	physical := mismatched[string(CategoryPhysical)]
	if !containsLabel(physical, "age outside preferred range") {
		t.Errorf("expected age mismatch, got %v", physical)
	}
	if !containsLabel(physical, "body type outside preference") {
		t.Errorf("expected body type mismatch, got %v", physical)
	}
	if !containsLabel(mismatched[string(CategoryRelationship)], "looking for different things") {
		t.Errorf("expected relationship mismatch, got %v", mismatched[string(CategoryRelationship)])
	}
}

func TestTagSatisfaction(t *testing.T) {
	candidate := &Profile{
		Interests: []string{"Hiking", "cooking"},
		Languages: []string{"Spanish"},
	}

	cases := []struct {
		name string
		tags []string
		want TagSatisfaction
	}{
		{"no tags", nil, TagSatisfaction{}},
		{"all satisfied", []string{"hiking", "spanish"}, TagSatisfaction{Satisfied: 2, Total: 2}},
		{"partial", []string{"hiking", "sailing"}, TagSatisfaction{Satisfied: 1, Total: 2}},
		{"none", []string{"sailing"}, TagSatisfaction{Satisfied: 0, Total: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tagSatisfaction(tc.tags, candidate)
			if got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestTagSatisfactionRatio(t *testing.T) {
	if r := (TagSatisfaction{}).Ratio(); r != 0 {
		t.Errorf("expected 0 ratio with no tags, got %v", r)
	}
	if r := (TagSatisfaction{Satisfied: 1, Total: 2}).Ratio(); !scoresClose(r, 0.5) {
		t.Errorf("expected 0.5, got %v", r)
	}
}

func containsLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}
