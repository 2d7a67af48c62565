package discovery

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Goal is what the seeker wants the advisor to optimize for.
type Goal string

const (
	GoalMoreMatches   Goal = "more_matches"
	GoalBetterMatches Goal = "better_matches"
)

// Restrictiveness labels derived from recent match quality.
const (
	RestrictivenessVeryStrict  = "very_strict"
	RestrictivenessStrict      = "strict"
	RestrictivenessModerate    = "moderate"
	RestrictivenessRelaxed     = "relaxed"
	RestrictivenessVeryRelaxed = "very_relaxed"
)

// Suggestion is one advisor recommendation. ExpectedIncrease is the
// estimated percentage change in match volume: positive for quantity
// goals, negative when the suggestion trades volume for quality.
type Suggestion struct {
	Type             string `json:"type" yaml:"type"`
	Title            string `json:"title" yaml:"title"`
	Description      string `json:"description" yaml:"description"`
	ExpectedIncrease int    `json:"expected_increase" yaml:"expected_increase"`
	Impact           string `json:"impact" yaml:"impact"`
	Tradeoff         string `json:"tradeoff,omitempty" yaml:"tradeoff"`
}

// Preset is a named, ready-to-apply criteria bundle.
type Preset struct {
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description" yaml:"description"`
	ExpectedMatches string         `json:"expected_matches" yaml:"expected_matches"`
	Settings        PresetSettings `json:"settings" yaml:"settings"`
}

// PresetSettings carries the criteria fields a preset overrides.
type PresetSettings struct {
	Algorithm         Algorithm       `json:"algorithm" yaml:"algorithm"`
	OverallThreshold  float64         `json:"overall_threshold" yaml:"overall_threshold"`
	AdvancedFiltering bool            `json:"advanced_filtering" yaml:"advanced_filtering"`
	Weights           CategoryWeights `json:"weights" yaml:"weights"`
}

// Criteria converts the preset into a full criteria set, filling the
// fields a preset does not override with defaults.
func (p Preset) Criteria() *Criteria {
	c := DefaultCriteria()
	c.Weights = p.Settings.Weights
	c.Thresholds.Overall = p.Settings.OverallThreshold
	c.Algorithm = p.Settings.Algorithm
	c.AdvancedFiltering = p.Settings.AdvancedFiltering
	return c
}

// CurrentSettings summarizes how the seeker's filters are performing.
type CurrentSettings struct {
	Restrictiveness string  `json:"restrictiveness"`
	RecentMeanScore float64 `json:"recent_mean_score"`
	SampleSize      int     `json:"sample_size"`
}

// OptimizationReport is the advisor's full answer.
type OptimizationReport struct {
	CurrentSettings CurrentSettings `json:"current_settings"`
	Suggestions     []Suggestion    `json:"suggestions"`
	Presets         []Preset        `json:"presets"`
}

type advisorCatalog struct {
	Presets     []Preset              `yaml:"presets"`
	Suggestions map[Goal][]Suggestion `yaml:"suggestions"`
}

// Advisor produces preference tuning advice from a static template
// catalog. It never mutates the seeker's stored preferences; applying
// a suggestion is the client's call.
type Advisor struct {
	catalog advisorCatalog
}

// NewAdvisor parses the embedded catalog.
func NewAdvisor() (*Advisor, error) {
	var catalog advisorCatalog
	if err := yaml.Unmarshal(presetsYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parsing advisor catalog: %w", err)
	}
	return &Advisor{catalog: catalog}, nil
}

// Presets returns the named preset bundles.
func (a *Advisor) Presets() []Preset {
	return a.catalog.Presets
}

// Optimize assesses recent results and returns goal-matched suggestions
// plus the preset catalog. Unknown goals contribute nothing; duplicate
// suggestion types across goals are reported once; suggestions the
// seeker has no room to act on are dropped.
func (a *Advisor) Optimize(prefs *Preferences, goals []Goal, recent []MatchResult) *OptimizationReport {
	mean, n := meanScore(recent)
	report := &OptimizationReport{
		CurrentSettings: CurrentSettings{
			Restrictiveness: restrictiveness(mean, n),
			RecentMeanScore: mean,
			SampleSize:      n,
		},
		Suggestions: []Suggestion{},
		Presets:     a.catalog.Presets,
	}

	seen := make(map[string]bool)
	for _, goal := range goals {
		for _, s := range a.catalog.Suggestions[goal] {
			if seen[s.Type] || !applies(s.Type, prefs) {
				continue
			}
			seen[s.Type] = true
			report.Suggestions = append(report.Suggestions, s)
		}
	}
	return report
}

// applies filters out suggestions that cannot help this seeker.
func applies(suggestionType string, prefs *Preferences) bool {
	if prefs == nil {
		return true
	}
	switch suggestionType {
	case "expand_age_range":
		return prefs.AgeMax == 0 || prefs.AgeMax-prefs.AgeMin < 20
	case "relax_deal_breakers":
		return len(prefs.DealBreakers) > 0
	case "add_deal_breakers":
		return len(prefs.DealBreakers) < MaxDealBreakers
	default:
		return true
	}
}

// restrictiveness maps the mean recent compatibility to a label. A high
// mean implies the filters only let near-perfect candidates through.
func restrictiveness(mean float64, sampleSize int) string {
	if sampleSize == 0 {
		return RestrictivenessModerate
	}
	switch {
	case mean > 0.8:
		return RestrictivenessVeryStrict
	case mean > 0.65:
		return RestrictivenessStrict
	case mean > 0.5:
		return RestrictivenessModerate
	case mean > 0.35:
		return RestrictivenessRelaxed
	default:
		return RestrictivenessVeryRelaxed
	}
}

func meanScore(results []MatchResult) (float64, int) {
	if len(results) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results)), len(results)
}
