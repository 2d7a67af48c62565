package discovery

// DTOs for API requests. Core models stay free of transport concerns;
// handlers validate these and convert.

type MatchRequestDTO struct {
	Limit       int             `json:"limit,omitempty" validate:"omitempty,gte=1"`
	Preferences *PreferencesDTO `json:"preferences,omitempty"`
	Criteria    *CriteriaDTO    `json:"criteria,omitempty"`
}

// PreferencesDTO overrides stored preferences for a single run. Zero
// fields leave the stored value in place. Range checks (age bounds,
// platform distance ceiling, deal-breaker cap) run on the merged
// result through Preferences.Validate.
type PreferencesDTO struct {
	AgeMin            int      `json:"age_min,omitempty"`
	AgeMax            int      `json:"age_max,omitempty"`
	MaxDistanceKm     float64  `json:"max_distance_km,omitempty"`
	Orientations      []string `json:"orientations,omitempty" validate:"omitempty,max=6,dive,min=1,max=30"`
	RelationshipTypes []string `json:"relationship_types,omitempty" validate:"omitempty,max=6,dive,min=1,max=50"`
	BodyTypes         []string `json:"body_types,omitempty" validate:"omitempty,max=5,dive,oneof=slim athletic average curvy plus_size"`
	HeightMinCm       *int     `json:"height_min_cm,omitempty" validate:"omitempty,gte=100,lte=250"`
	HeightMaxCm       *int     `json:"height_max_cm,omitempty" validate:"omitempty,gte=100,lte=250"`
	EducationLevels   []string `json:"education_levels,omitempty" validate:"omitempty,max=7,dive,min=1,max=30"`
	DealBreakers      []string `json:"deal_breakers,omitempty" validate:"omitempty,max=10"`
}

// apply merges the overrides over the stored preferences and returns a
// fresh copy; the stored set is never mutated.
func (d *PreferencesDTO) apply(stored *Preferences) *Preferences {
	merged := Preferences{}
	if stored != nil {
		merged = *stored
	}

	if d.AgeMin != 0 {
		merged.AgeMin = d.AgeMin
	}
	if d.AgeMax != 0 {
		merged.AgeMax = d.AgeMax
	}
	if d.MaxDistanceKm != 0 {
		merged.MaxDistanceKm = d.MaxDistanceKm
	}
	if len(d.Orientations) > 0 {
		merged.Orientations = toTyped[Orientation](d.Orientations)
	}
	if len(d.RelationshipTypes) > 0 {
		merged.RelationshipTypes = d.RelationshipTypes
	}
	if len(d.BodyTypes) > 0 {
		merged.BodyTypes = toTyped[BodyType](d.BodyTypes)
	}
	if d.HeightMinCm != nil {
		merged.HeightMinCm = d.HeightMinCm
	}
	if d.HeightMaxCm != nil {
		merged.HeightMaxCm = d.HeightMaxCm
	}
	if len(d.EducationLevels) > 0 {
		merged.EducationLevels = toTyped[EducationLevel](d.EducationLevels)
	}
	if len(d.DealBreakers) > 0 {
		merged.DealBreakers = toTyped[DealBreaker](d.DealBreakers)
	}
	return &merged
}

// CriteriaDTO is the advanced matching layer as clients send it. Weights
// carry no validation on purpose: out-of-range values are clamped and
// normalized rather than rejected, so a bad slider never breaks matching.
type CriteriaDTO struct {
	Weights           *WeightsDTO    `json:"weights,omitempty"`
	Thresholds        *ThresholdsDTO `json:"thresholds,omitempty"`
	DealBreakers      []string       `json:"deal_breakers,omitempty" validate:"omitempty,max=10"`
	MustHaves         []string       `json:"must_haves,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
	NiceToHaves       []string       `json:"nice_to_haves,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
	Algorithm         string         `json:"algorithm,omitempty" validate:"omitempty,oneof=weighted_average multiplicative hybrid"`
	SortBy            string         `json:"sort_by,omitempty" validate:"omitempty,oneof=compatibility distance recent_activity"`
	AdvancedFiltering *bool          `json:"advanced_filtering,omitempty"`
}

type WeightsDTO struct {
	Physical     float64 `json:"physical"`
	Lifestyle    float64 `json:"lifestyle"`
	Social       float64 `json:"social"`
	Relationship float64 `json:"relationship"`
}

type ThresholdsDTO struct {
	Overall      float64  `json:"overall" validate:"gte=0,lte=1"`
	Physical     *float64 `json:"physical,omitempty" validate:"omitempty,gte=0,lte=1"`
	Lifestyle    *float64 `json:"lifestyle,omitempty" validate:"omitempty,gte=0,lte=1"`
	Social       *float64 `json:"social,omitempty" validate:"omitempty,gte=0,lte=1"`
	Relationship *float64 `json:"relationship,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type OptimizeRequestDTO struct {
	Goals []string `json:"goals" validate:"required,min=1,max=2,dive,oneof=more_matches better_matches"`
}

// toCriteria merges the DTO over the defaults; absent fields keep the
// platform behavior.
func (d *CriteriaDTO) toCriteria() *Criteria {
	c := DefaultCriteria()

	if d.Weights != nil {
		c.Weights = CategoryWeights{
			Physical:     d.Weights.Physical,
			Lifestyle:    d.Weights.Lifestyle,
			Social:       d.Weights.Social,
			Relationship: d.Weights.Relationship,
		}
	}
	if d.Thresholds != nil {
		c.Thresholds = Thresholds{
			Overall:      d.Thresholds.Overall,
			Physical:     d.Thresholds.Physical,
			Lifestyle:    d.Thresholds.Lifestyle,
			Social:       d.Thresholds.Social,
			Relationship: d.Thresholds.Relationship,
		}
	}
	if len(d.DealBreakers) > 0 {
		c.DealBreakers = toTyped[DealBreaker](d.DealBreakers)
	}
	c.MustHaves = d.MustHaves
	c.NiceToHaves = d.NiceToHaves
	if d.Algorithm != "" {
		c.Algorithm = Algorithm(d.Algorithm)
	}
	if d.SortBy != "" {
		c.SortBy = SortOrder(d.SortBy)
	}
	if d.AdvancedFiltering != nil {
		c.AdvancedFiltering = *d.AdvancedFiltering
	}
	return c
}
