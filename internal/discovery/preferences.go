// internal/discovery/preferences.go

package discovery

import (
	"fmt"

	"github.com/amoralabs/amora-backend/internal/common/utils"
)

// MaxDealBreakers caps how many deal-breakers one seeker may activate.
const MaxDealBreakers = 10

// Preferences is the seeker-owned basic matching configuration.
type Preferences struct {
	AgeMin            int              `json:"age_min" db:"age_min"`
	AgeMax            int              `json:"age_max" db:"age_max"`
	MaxDistanceKm     float64          `json:"max_distance_km" db:"max_distance_km"`
	Orientations      []Orientation    `json:"orientations"`
	RelationshipTypes []string         `json:"relationship_types"`
	BodyTypes         []BodyType       `json:"body_types,omitempty"`
	HeightMinCm       *int             `json:"height_min_cm,omitempty" db:"height_min_cm"`
	HeightMaxCm       *int             `json:"height_max_cm,omitempty" db:"height_max_cm"`
	EducationLevels   []EducationLevel `json:"education_levels,omitempty"`
	DealBreakers      []DealBreaker    `json:"deal_breakers,omitempty"`
}

// CategoryWeights are the seeker's relative domain weights. They need not sum
// to 1; Normalized produces the derived copy aggregation actually uses.
type CategoryWeights struct {
	Physical     float64 `json:"physical"`
	Lifestyle    float64 `json:"lifestyle"`
	Social       float64 `json:"social"`
	Relationship float64 `json:"relationship"`
}

// DefaultWeights returns the platform default weighting.
func DefaultWeights() CategoryWeights {
	return CategoryWeights{
		Physical:     0.30,
		Lifestyle:    0.25,
		Social:       0.25,
		Relationship: 0.20,
	}
}

// Normalized clamps each weight to zero and rescales so the four sum to 1.
// A zero or negative sum falls back to equal weights so one misconfigured
// seeker never poisons a batch.
func (w CategoryWeights) Normalized() CategoryWeights {
	p := clampNonNegative(w.Physical)
	l := clampNonNegative(w.Lifestyle)
	s := clampNonNegative(w.Social)
	r := clampNonNegative(w.Relationship)

	sum := p + l + s + r
	if sum <= 0 {
		return CategoryWeights{Physical: 0.25, Lifestyle: 0.25, Social: 0.25, Relationship: 0.25}
	}

	return CategoryWeights{
		Physical:     p / sum,
		Lifestyle:    l / sum,
		Social:       s / sum,
		Relationship: r / sum,
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Thresholds are minimum acceptable scores. Overall gates the aggregate;
// the optional per-category minimums gate RAW category scores, independent of
// the aggregation algorithm and of weighting.
type Thresholds struct {
	Overall      float64  `json:"overall"`
	Physical     *float64 `json:"physical,omitempty"`
	Lifestyle    *float64 `json:"lifestyle,omitempty"`
	Social       *float64 `json:"social,omitempty"`
	Relationship *float64 `json:"relationship,omitempty"`
}

// Algorithm selects how category scores combine into one overall score.
type Algorithm string

const (
	AlgorithmWeightedAverage Algorithm = "weighted_average"
	AlgorithmMultiplicative  Algorithm = "multiplicative"
	AlgorithmHybrid          Algorithm = "hybrid"
)

// SortOrder selects the ranking key. Ties always break by candidate id.
type SortOrder string

const (
	SortByCompatibility  SortOrder = "compatibility"
	SortByDistance       SortOrder = "distance"
	SortByRecentActivity SortOrder = "recent_activity"
)

// Criteria extends Preferences with the advanced matching layer.
type Criteria struct {
	Weights           CategoryWeights `json:"weights"`
	Thresholds        Thresholds      `json:"thresholds"`
	DealBreakers      []DealBreaker   `json:"deal_breakers,omitempty"`
	MustHaves         []string        `json:"must_haves,omitempty"`
	NiceToHaves       []string        `json:"nice_to_haves,omitempty"`
	Algorithm         Algorithm       `json:"algorithm"`
	SortBy            SortOrder       `json:"sort_by"`
	AdvancedFiltering bool            `json:"advanced_filtering"`
}

// DefaultCriteria is what a request without an advanced layer runs under.
func DefaultCriteria() *Criteria {
	return &Criteria{
		Weights:           DefaultWeights(),
		Algorithm:         AlgorithmWeightedAverage,
		SortBy:            SortByCompatibility,
		AdvancedFiltering: true,
	}
}

// ActiveDealBreakers merges the basic and advanced deal-breaker sets,
// deduplicated in first-seen order so repeated passes stay reproducible.
func ActiveDealBreakers(prefs *Preferences, criteria *Criteria) []DealBreaker {
	seen := make(map[DealBreaker]bool)
	var active []DealBreaker

	appendAll := func(ids []DealBreaker) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				active = append(active, id)
			}
		}
	}

	if prefs != nil {
		appendAll(prefs.DealBreakers)
	}
	if criteria != nil {
		appendAll(criteria.DealBreakers)
	}
	return active
}

// Validate checks the semantic rules struct tags cannot express. Every
// violated field is reported, not just the first.
func (p *Preferences) Validate(platformMaxDistanceKm float64, minAge, maxAge int) error {
	ve := utils.NewValidationError()

	if p.AgeMin < minAge {
		ve.Add(fmt.Sprintf("age_min must be at least %d", minAge))
	}
	if p.AgeMax > maxAge {
		ve.Add(fmt.Sprintf("age_max must be at most %d", maxAge))
	}
	if p.AgeMin >= p.AgeMax {
		ve.Add("age_min must be less than age_max")
	}
	if p.MaxDistanceKm <= 0 {
		ve.Add("max_distance_km must be positive")
	} else if p.MaxDistanceKm > platformMaxDistanceKm {
		ve.Add(fmt.Sprintf("max_distance_km must be at most %.0f", platformMaxDistanceKm))
	}
	if p.HeightMinCm != nil && p.HeightMaxCm != nil && *p.HeightMinCm > *p.HeightMaxCm {
		ve.Add("height_min_cm must not exceed height_max_cm")
	}
	validateDealBreakerIDs(ve, "deal_breakers", p.DealBreakers)

	if ve.Empty() {
		return nil
	}
	return ve
}

// Validate checks the advanced layer. Weights are deliberately not validated:
// malformed weights are a configuration error handled by clamping and
// renormalization, never a request rejection.
func (c *Criteria) Validate() error {
	ve := utils.NewValidationError()

	validateThreshold(ve, "thresholds.overall", c.Thresholds.Overall)
	validateOptionalThreshold(ve, "thresholds.physical", c.Thresholds.Physical)
	validateOptionalThreshold(ve, "thresholds.lifestyle", c.Thresholds.Lifestyle)
	validateOptionalThreshold(ve, "thresholds.social", c.Thresholds.Social)
	validateOptionalThreshold(ve, "thresholds.relationship", c.Thresholds.Relationship)
	validateDealBreakerIDs(ve, "deal_breakers", c.DealBreakers)

	if ve.Empty() {
		return nil
	}
	return ve
}

func validateDealBreakerIDs(ve *utils.ValidationError, field string, ids []DealBreaker) {
	if len(ids) > MaxDealBreakers {
		ve.Add(fmt.Sprintf("%s must contain at most %d entries", field, MaxDealBreakers))
	}
	for _, id := range ids {
		if !id.Known() {
			ve.Add(fmt.Sprintf("%s contains unknown id %q", field, string(id)))
		}
	}
}

func validateThreshold(ve *utils.ValidationError, field string, v float64) {
	if v < 0 || v > 1 {
		ve.Add(fmt.Sprintf("%s must be between 0 and 1", field))
	}
}

func validateOptionalThreshold(ve *utils.ValidationError, field string, v *float64) {
	if v != nil {
		validateThreshold(ve, field, *v)
	}
}
