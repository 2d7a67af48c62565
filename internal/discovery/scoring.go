// internal/discovery/scoring.go

package discovery

import (
	"strings"
)

// placeholderScore stands in for signals the profile model does not carry
// yet (social habits, occupation affinity, personality, commitment level,
// family goals, communication style). Real inputs can replace any of them
// without touching the aggregation contract.
const placeholderScore = 0.5

// neutralScore is what a sub-factor earns when either side is unknown.
// Missing data is never rewarded or punished.
const neutralScore = 0.5

// Scorer computes the four category scores for a (seeker, candidate) pair.
// Implementations must be pure: no I/O, no clocks, no shared state.
type Scorer interface {
	ScoreCategories(seeker, candidate *Profile, prefs *Preferences) CategoryScores
}

type compatibilityScorer struct{}

// NewScorer returns the standard category scorer.
func NewScorer() Scorer {
	return &compatibilityScorer{}
}

func (s *compatibilityScorer) ScoreCategories(seeker, candidate *Profile, prefs *Preferences) CategoryScores {
	return CategoryScores{
		Physical:     s.scorePhysical(seeker, candidate, prefs),
		Lifestyle:    s.scoreLifestyle(seeker, candidate),
		Social:       s.scoreSocial(seeker, candidate),
		Relationship: s.scoreRelationship(seeker, candidate),
	}
}

// Physical: body type, height, age, appearance — equally weighted.

func (s *compatibilityScorer) scorePhysical(seeker, candidate *Profile, prefs *Preferences) CategoryScore {
	return newCategoryScore(map[string]float64{
		"body_type":  s.scoreBodyType(candidate.BodyType, prefs),
		"height":     s.scoreHeight(seeker.HeightCm, candidate.HeightCm),
		"age":        s.scoreAge(seeker.Age, candidate.Age, prefs),
		"appearance": s.scoreAppearance(candidate.PhotoCount),
	})
}

func (s *compatibilityScorer) scoreBodyType(candidate BodyType, prefs *Preferences) float64 {
	if prefs == nil || len(prefs.BodyTypes) == 0 || candidate == "" {
		return 0.7
	}
	for _, bt := range prefs.BodyTypes {
		if bt == candidate {
			return 1.0
		}
	}
	return 0.3
}

func (s *compatibilityScorer) scoreHeight(seekerCm, candidateCm *int) float64 {
	if seekerCm == nil || candidateCm == nil {
		return 0.7
	}
	switch d := absInt(*seekerCm - *candidateCm); {
	case d <= 5:
		return 1.0
	case d <= 15:
		return 0.8
	case d <= 25:
		return 0.6
	default:
		return 0.3
	}
}

// scoreAge prefers the seeker's explicit age range when one exists: inside it
// (bounds inclusive) is a full score, outside degrades by how far out the
// candidate falls. Without a range it falls back to plain age-difference bands.
func (s *compatibilityScorer) scoreAge(seekerAge, candidateAge int, prefs *Preferences) float64 {
	if prefs != nil && prefs.AgeMin > 0 && prefs.AgeMax > 0 {
		if candidateAge >= prefs.AgeMin && candidateAge <= prefs.AgeMax {
			return 1.0
		}
		outside := prefs.AgeMin - candidateAge
		if candidateAge > prefs.AgeMax {
			outside = candidateAge - prefs.AgeMax
		}
		switch {
		case outside <= 2:
			return 0.7
		case outside <= 5:
			return 0.4
		default:
			return 0.1
		}
	}

	switch d := absInt(seekerAge - candidateAge); {
	case d <= 3:
		return 1.0
	case d <= 7:
		return 0.8
	case d <= 12:
		return 0.6
	default:
		return 0.3
	}
}

func (s *compatibilityScorer) scoreAppearance(photoCount int) float64 {
	switch {
	case photoCount <= 0:
		return 0.2
	case photoCount == 1:
		return 0.4
	case photoCount == 2:
		return 0.6
	case photoCount <= 4:
		return 0.8
	default:
		return 1.0
	}
}

// Lifestyle: smoking, drinking, exercise, diet, social habits.

func (s *compatibilityScorer) scoreLifestyle(seeker, candidate *Profile) CategoryScore {
	return newCategoryScore(map[string]float64{
		"smoking":       s.scoreSmoking(seeker.Smoking, candidate.Smoking),
		"drinking":      s.scoreDrinking(seeker.Drinking, candidate.Drinking),
		"exercise":      s.scoreExercise(seeker.Exercise, candidate.Exercise),
		"diet":          s.scoreDiet(seeker.Diet, candidate.Diet),
		"social_habits": placeholderScore,
	})
}

func (s *compatibilityScorer) scoreSmoking(a, b SmokingLevel) float64 {
	ia, okA := smokingScale[a]
	ib, okB := smokingScale[b]
	return orderedLevelScore(ia, ib, okA && okB, 0.7, 0.4, 0.2)
}

func (s *compatibilityScorer) scoreDrinking(a, b DrinkingLevel) float64 {
	ia, okA := drinkingScale[a]
	ib, okB := drinkingScale[b]
	return orderedLevelScore(ia, ib, okA && okB, 0.7, 0.5, 0.3)
}

func (s *compatibilityScorer) scoreExercise(a, b ExerciseLevel) float64 {
	ia, okA := exerciseScale[a]
	ib, okB := exerciseScale[b]
	return orderedLevelScore(ia, ib, okA && okB, 0.8, 0.6, 0.4)
}

// orderedLevelScore turns the index distance on an ordered habit scale into a
// score: exact match is full, then the given bands, bottoming at the last one.
func orderedLevelScore(a, b int, known bool, bands ...float64) float64 {
	if !known {
		return neutralScore
	}
	d := absInt(a - b)
	if d == 0 {
		return 1.0
	}
	if d-1 < len(bands) {
		return bands[d-1]
	}
	return bands[len(bands)-1]
}

func (s *compatibilityScorer) scoreDiet(a, b DietType) float64 {
	if a == "" || b == "" {
		return 0.5
	}
	if a == b {
		return 1.0
	}
	if dietPair(a, b, DietVegetarian, DietVegan) {
		return 0.7
	}
	if dietPair(a, b, DietOmnivore, DietVegetarian) {
		return 0.6
	}
	return 0.5
}

func dietPair(a, b, x, y DietType) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// Social: education, occupation, interests, languages, personality.

func (s *compatibilityScorer) scoreSocial(seeker, candidate *Profile) CategoryScore {
	return newCategoryScore(map[string]float64{
		"education":   s.scoreEducation(seeker.Education, candidate.Education),
		"occupation":  placeholderScore,
		"interests":   s.scoreInterests(seeker.Interests, candidate.Interests),
		"languages":   s.scoreLanguages(seeker.Languages, candidate.Languages),
		"personality": placeholderScore,
	})
}

func (s *compatibilityScorer) scoreEducation(a, b EducationLevel) float64 {
	ra, okA := educationRank(a)
	rb, okB := educationRank(b)
	if !okA || !okB {
		return 0.5
	}
	switch absInt(ra - rb) {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.6
	default:
		return 0.4
	}
}

// scoreInterests is overlap over the smaller set, so a niche profile is not
// punished for meeting a broad one.
func (s *compatibilityScorer) scoreInterests(a, b []string) float64 {
	setA := normalizeSet(a)
	setB := normalizeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.5
	}

	shared := 0
	for tag := range setA {
		if setB[tag] {
			shared++
		}
	}

	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}

	score := float64(shared) / float64(smaller)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func (s *compatibilityScorer) scoreLanguages(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.7
	}
	if sharesAny(a, b) {
		return 1.0
	}
	return 0.2
}

// Relationship: sought type, orientation, plus three placeholder signals.

func (s *compatibilityScorer) scoreRelationship(seeker, candidate *Profile) CategoryScore {
	return newCategoryScore(map[string]float64{
		"relationship_type":  s.scoreRelationshipType(seeker.RelationshipTypes, candidate.RelationshipTypes),
		"sexual_orientation": s.scoreOrientation(seeker.SexualOrientation, candidate.SexualOrientation),
		"commitment_level":   placeholderScore,
		"family_goals":       placeholderScore,
		"communication":      placeholderScore,
	})
}

func (s *compatibilityScorer) scoreRelationshipType(seekerTypes, candidateTypes []string) float64 {
	if len(seekerTypes) == 0 || len(candidateTypes) == 0 {
		return neutralScore
	}
	if sharesAny(seekerTypes, candidateTypes) {
		return 1.0
	}
	return 0.2
}

func (s *compatibilityScorer) scoreOrientation(a, b Orientation) float64 {
	if a == "" || b == "" {
		return neutralScore
	}
	if a == b {
		return 1.0
	}
	if a == OrientationBisexual || b == OrientationBisexual {
		return 0.8
	}
	return 0.3
}

// newCategoryScore averages the sub-factors; every sub-factor weighs equally
// inside its category.
func newCategoryScore(breakdown map[string]float64) CategoryScore {
	if len(breakdown) == 0 {
		return CategoryScore{Breakdown: breakdown}
	}
	var sum float64
	for _, v := range breakdown {
		sum += v
	}
	return CategoryScore{
		Score:     sum / float64(len(breakdown)),
		Breakdown: breakdown,
	}
}

func neutralCategoryScores() CategoryScores {
	neutral := CategoryScore{Score: neutralScore}
	return CategoryScores{
		Physical:     neutral,
		Lifestyle:    neutral,
		Social:       neutral,
		Relationship: neutral,
	}
}

// preferenceMatches derives the matched/mismatched preference labels per
// category. Labels come from the seeker's explicit preferences plus the two
// strongest profile signals; the explanation generator reuses them verbatim.
func preferenceMatches(seeker, candidate *Profile, prefs *Preferences, scores CategoryScores) (matched, mismatched map[string][]string) {
	matched = make(map[string][]string)
	mismatched = make(map[string][]string)

	add := func(m map[string][]string, c Category, label string) {
		m[string(c)] = append(m[string(c)], label)
	}

	if prefs != nil {
		if prefs.AgeMin > 0 && prefs.AgeMax > 0 {
			if candidate.Age >= prefs.AgeMin && candidate.Age <= prefs.AgeMax {
				add(matched, CategoryPhysical, "age within preferred range")
			} else {
				add(mismatched, CategoryPhysical, "age outside preferred range")
			}
		}

		if len(prefs.BodyTypes) > 0 && candidate.BodyType != "" {
			if containsBodyType(prefs.BodyTypes, candidate.BodyType) {
				add(matched, CategoryPhysical, "preferred body type")
			} else {
				add(mismatched, CategoryPhysical, "body type outside preference")
			}
		}

		if prefs.HeightMinCm != nil && prefs.HeightMaxCm != nil && candidate.HeightCm != nil {
			if *candidate.HeightCm >= *prefs.HeightMinCm && *candidate.HeightCm <= *prefs.HeightMaxCm {
				add(matched, CategoryPhysical, "height within preferred range")
			} else {
				add(mismatched, CategoryPhysical, "height outside preferred range")
			}
		}

		if len(prefs.EducationLevels) > 0 && candidate.Education != "" {
			if containsEducation(prefs.EducationLevels, candidate.Education) {
				add(matched, CategorySocial, "preferred education level")
			} else {
				add(mismatched, CategorySocial, "education outside preference")
			}
		}

		if len(prefs.Orientations) > 0 && candidate.SexualOrientation != "" {
			if containsOrientation(prefs.Orientations, candidate.SexualOrientation) {
				add(matched, CategoryRelationship, "accepted orientation")
			} else {
				add(mismatched, CategoryRelationship, "orientation outside preference")
			}
		}

		if len(prefs.RelationshipTypes) > 0 && len(candidate.RelationshipTypes) > 0 {
			if sharesAny(prefs.RelationshipTypes, candidate.RelationshipTypes) {
				add(matched, CategoryRelationship, "looking for the same thing")
			} else {
				add(mismatched, CategoryRelationship, "looking for different things")
			}
		}
	}

	if scores.Social.Breakdown["interests"] >= 0.8 {
		add(matched, CategorySocial, "shares your interests")
	}
	if scores.Social.Breakdown["languages"] >= 1.0 {
		add(matched, CategorySocial, "speaks your language")
	}

	return matched, mismatched
}

// tagSatisfaction counts declared tags by exact containment in the
// candidate's interest and language tags. Containment keeps repeated passes
// reproducible for identical inputs.
func tagSatisfaction(tags []string, candidate *Profile) TagSatisfaction {
	if len(tags) == 0 {
		return TagSatisfaction{}
	}

	pool := normalizeSet(candidate.Interests)
	for _, lang := range candidate.Languages {
		if n := normalizeTag(lang); n != "" {
			pool[n] = true
		}
	}

	satisfied := 0
	for _, tag := range tags {
		if pool[normalizeTag(tag)] {
			satisfied++
		}
	}

	return TagSatisfaction{Satisfied: satisfied, Total: len(tags)}
}

func containsBodyType(set []BodyType, v BodyType) bool {
	for _, bt := range set {
		if bt == v {
			return true
		}
	}
	return false
}

func containsEducation(set []EducationLevel, v EducationLevel) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

func containsOrientation(set []Orientation, v Orientation) bool {
	for _, o := range set {
		if o == v {
			return true
		}
	}
	return false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func normalizeSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			set[n] = true
		}
	}
	return set
}
