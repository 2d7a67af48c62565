// internal/discovery/models.go

// Package discovery implements the preference compatibility engine behind
// match discovery: deal-breaker filtering, category scoring, weighted
// aggregation, threshold gating, ranking, and explanation.
package discovery

import (
	"time"
)

// Profile is an immutable snapshot of one user for a single scoring pass.
// Profiles are owned by the external profile store; the engine never mutates
// them. Empty enum values mean the attribute is unknown.
type Profile struct {
	ID                int64          `json:"id" db:"id"`
	DisplayName       string         `json:"display_name" db:"display_name"`
	Gender            string         `json:"gender" db:"gender"`
	Age               int            `json:"age" db:"age"`
	HeightCm          *int           `json:"height_cm" db:"height_cm"`
	BodyType          BodyType       `json:"body_type" db:"body_type"`
	PhotoCount        int            `json:"photo_count" db:"photo_count"`
	Smoking           SmokingLevel   `json:"smoking" db:"smoking"`
	Drinking          DrinkingLevel  `json:"drinking" db:"drinking"`
	Exercise          ExerciseLevel  `json:"exercise" db:"exercise"`
	Diet              DietType       `json:"diet" db:"diet"`
	Drugs             DrugUseLevel   `json:"drugs" db:"drugs"`
	Education         EducationLevel `json:"education" db:"education"`
	Occupation        string         `json:"occupation" db:"occupation"`
	Interests         []string       `json:"interests" db:"interests"`
	Languages         []string       `json:"languages" db:"languages"`
	RelationshipTypes []string       `json:"relationship_types" db:"relationship_types"`
	SexualOrientation Orientation    `json:"sexual_orientation" db:"sexual_orientation"`
	IsVerified        bool           `json:"is_verified" db:"is_verified"`
	LastActiveAt      time.Time      `json:"last_active_at" db:"last_active_at"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	Latitude          *float64       `json:"latitude" db:"latitude"`
	Longitude         *float64       `json:"longitude" db:"longitude"`
}

// HasCoordinates reports whether the profile carries a usable location.
func (p *Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// BodyType enumerates self-reported body types.
type BodyType string

const (
	BodyTypeSlim     BodyType = "slim"
	BodyTypeAthletic BodyType = "athletic"
	BodyTypeAverage  BodyType = "average"
	BodyTypeCurvy    BodyType = "curvy"
	BodyTypePlusSize BodyType = "plus_size"
)

// SmokingLevel is an ordered habit scale; index distance drives scoring.
type SmokingLevel string

const (
	SmokingNever        SmokingLevel = "never"
	SmokingOccasionally SmokingLevel = "occasionally"
	SmokingSocially     SmokingLevel = "socially"
	SmokingRegularly    SmokingLevel = "regularly"
)

// DrinkingLevel is an ordered habit scale.
type DrinkingLevel string

const (
	DrinkingNever      DrinkingLevel = "never"
	DrinkingRarely     DrinkingLevel = "rarely"
	DrinkingSocially   DrinkingLevel = "socially"
	DrinkingFrequently DrinkingLevel = "frequently"
)

// ExerciseLevel is an ordered habit scale.
type ExerciseLevel string

const (
	ExerciseNever     ExerciseLevel = "never"
	ExerciseRarely    ExerciseLevel = "rarely"
	ExerciseSometimes ExerciseLevel = "sometimes"
	ExerciseOften     ExerciseLevel = "often"
	ExerciseDaily     ExerciseLevel = "daily"
)

// DietType is unordered; pairs score through a small compatibility table.
type DietType string

const (
	DietOmnivore    DietType = "omnivore"
	DietVegetarian  DietType = "vegetarian"
	DietVegan       DietType = "vegan"
	DietPescatarian DietType = "pescatarian"
	DietOther       DietType = "other"
)

// DrugUseLevel is an ordered habit scale.
type DrugUseLevel string

const (
	DrugsNever        DrugUseLevel = "never"
	DrugsOccasionally DrugUseLevel = "occasionally"
	DrugsRegularly    DrugUseLevel = "regularly"
)

// EducationLevel maps onto a five-step numeric ladder for distance scoring.
type EducationLevel string

const (
	EducationHighSchool  EducationLevel = "high_school"
	EducationSomeCollege EducationLevel = "some_college"
	EducationTradeSchool EducationLevel = "trade_school"
	EducationAssociate   EducationLevel = "associate"
	EducationBachelors   EducationLevel = "bachelors"
	EducationMasters     EducationLevel = "masters"
	EducationPhD         EducationLevel = "phd"
)

// Orientation enumerates sexual orientations.
type Orientation string

const (
	OrientationStraight  Orientation = "straight"
	OrientationGay       Orientation = "gay"
	OrientationLesbian   Orientation = "lesbian"
	OrientationBisexual  Orientation = "bisexual"
	OrientationPansexual Orientation = "pansexual"
)

// Ordered habit scales. Absent keys (the empty value included) mean unknown.
var (
	smokingScale = map[SmokingLevel]int{
		SmokingNever:        0,
		SmokingOccasionally: 1,
		SmokingSocially:     2,
		SmokingRegularly:    3,
	}

	drinkingScale = map[DrinkingLevel]int{
		DrinkingNever:      0,
		DrinkingRarely:     1,
		DrinkingSocially:   2,
		DrinkingFrequently: 3,
	}

	exerciseScale = map[ExerciseLevel]int{
		ExerciseNever:     0,
		ExerciseRarely:    1,
		ExerciseSometimes: 2,
		ExerciseOften:     3,
		ExerciseDaily:     4,
	}
)

// educationRank maps an education level to its numeric ladder step.
// Unrecognized but present values count as step 2; empty means unknown.
func educationRank(level EducationLevel) (int, bool) {
	switch level {
	case "":
		return 0, false
	case EducationHighSchool:
		return 1, true
	case EducationSomeCollege, EducationTradeSchool, EducationAssociate:
		return 2, true
	case EducationBachelors:
		return 3, true
	case EducationMasters:
		return 4, true
	case EducationPhD:
		return 5, true
	default:
		return 2, true
	}
}

// Category names one of the four compatibility domains.
type Category string

const (
	CategoryPhysical     Category = "physical"
	CategoryLifestyle    Category = "lifestyle"
	CategorySocial       Category = "social"
	CategoryRelationship Category = "relationship"
)

// Categories returns the four domains in canonical order.
func Categories() []Category {
	return []Category{CategoryPhysical, CategoryLifestyle, CategorySocial, CategoryRelationship}
}

// CategoryScore is one domain's score plus its labeled sub-factor breakdown.
// The score is the arithmetic mean of the breakdown values; the breakdown
// itself feeds explanations only, never aggregation.
type CategoryScore struct {
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// CategoryScores holds the four domain scores for one candidate.
type CategoryScores struct {
	Physical     CategoryScore `json:"physical"`
	Lifestyle    CategoryScore `json:"lifestyle"`
	Social       CategoryScore `json:"social"`
	Relationship CategoryScore `json:"relationship"`
}

// Get returns the score for one domain.
func (cs CategoryScores) Get(c Category) CategoryScore {
	switch c {
	case CategoryPhysical:
		return cs.Physical
	case CategoryLifestyle:
		return cs.Lifestyle
	case CategorySocial:
		return cs.Social
	case CategoryRelationship:
		return cs.Relationship
	}
	return CategoryScore{}
}

// Min returns the weakest domain score.
func (cs CategoryScores) Min() float64 {
	min := cs.Physical.Score
	for _, c := range []float64{cs.Lifestyle.Score, cs.Social.Score, cs.Relationship.Score} {
		if c < min {
			min = c
		}
	}
	return min
}

// DealBreakerReport records the pass/fail outcome for one candidate.
type DealBreakerReport struct {
	Passed    bool          `json:"passed"`
	Triggered []DealBreaker `json:"triggered,omitempty"`
}

// TagSatisfaction counts how many declared tags a candidate satisfies.
type TagSatisfaction struct {
	Satisfied int `json:"satisfied"`
	Total     int `json:"total"`
}

// Ratio returns the satisfied fraction, or 0 when nothing was declared.
func (t TagSatisfaction) Ratio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Satisfied) / float64(t.Total)
}

// CandidateSummary is the slim candidate view embedded in results.
type CandidateSummary struct {
	ID           int64     `json:"id"`
	DisplayName  string    `json:"display_name"`
	Age          int       `json:"age"`
	PhotoCount   int       `json:"photo_count"`
	IsVerified   bool      `json:"is_verified"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// MatchResult is the terminal artifact per surviving candidate. It is built
// fresh on every scoring pass; the engine itself persists nothing.
type MatchResult struct {
	CandidateID           int64               `json:"candidate_id"`
	Candidate             *CandidateSummary   `json:"candidate,omitempty"`
	Score                 float64             `json:"score"`
	Categories            CategoryScores      `json:"categories"`
	MatchedPreferences    map[string][]string `json:"matched_preferences,omitempty"`
	MismatchedPreferences map[string][]string `json:"mismatched_preferences,omitempty"`
	DealBreakers          DealBreakerReport   `json:"deal_breakers"`
	MustHaves             TagSatisfaction     `json:"must_haves"`
	NiceToHaves           TagSatisfaction     `json:"nice_to_haves"`
	Explanation           *Explanation        `json:"explanation,omitempty"`
	Suggestions           []string            `json:"suggestions,omitempty"`
	DistanceKm            float64             `json:"distance_km"`
	BearingDeg            float64             `json:"bearing_deg"`
}

func summarize(p *Profile) *CandidateSummary {
	return &CandidateSummary{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		Age:          p.Age,
		PhotoCount:   p.PhotoCount,
		IsVerified:   p.IsVerified,
		LastActiveAt: p.LastActiveAt,
	}
}
