package discovery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func catScores(physical, lifestyle, social, relationship float64) CategoryScores {
	return CategoryScores{
		Physical:     CategoryScore{Score: physical},
		Lifestyle:    CategoryScore{Score: lifestyle},
		Social:       CategoryScore{Score: social},
		Relationship: CategoryScore{Score: relationship},
	}
}

func TestAggregate_WeightedAverage(t *testing.T) {
	scores := catScores(0.9, 0.5, 0.5, 0.5)
	weights := CategoryWeights{Physical: 0.6, Lifestyle: 0.2, Social: 0.1, Relationship: 0.1}

	got := Aggregate(scores, weights, AlgorithmWeightedAverage)
	assert.InDelta(t, 0.74, got, 1e-9)
}

func TestAggregate_WeightScaleInvariance(t *testing.T) {
	scores := catScores(0.9, 0.5, 0.5, 0.5)

	unit := Aggregate(scores, CategoryWeights{Physical: 0.6, Lifestyle: 0.2, Social: 0.1, Relationship: 0.1}, AlgorithmWeightedAverage)
	scaled := Aggregate(scores, CategoryWeights{Physical: 6, Lifestyle: 2, Social: 1, Relationship: 1}, AlgorithmWeightedAverage)

	assert.InDelta(t, unit, scaled, 1e-9, "weights should only matter relative to each other")
}

func TestAggregate_ZeroWeightsFallBackToEqual(t *testing.T) {
	scores := catScores(0.8, 0.6, 0.4, 0.2)

	got := Aggregate(scores, CategoryWeights{}, AlgorithmWeightedAverage)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestAggregate_NegativeWeightsClampedToZero(t *testing.T) {
	scores := catScores(0.9, 0.8, 0.6, 0.1)
	weights := CategoryWeights{Physical: -1, Lifestyle: 1, Social: 1, Relationship: 0}

	// Physical is clamped out entirely, leaving lifestyle and social
	// at half weight each.
	got := Aggregate(scores, weights, AlgorithmWeightedAverage)
	assert.InDelta(t, 0.7, got, 1e-9)
}

func TestAggregate_MultiplicativeGeometricMean(t *testing.T) {
	scores := catScores(1, 1, 1, 0.5)

	got := Aggregate(scores, DefaultWeights(), AlgorithmMultiplicative)
	assert.InDelta(t, math.Pow(0.5, 0.25), got, 1e-9)
}

func TestAggregate_MultiplicativeUniformScores(t *testing.T) {
	scores := catScores(0.81, 0.81, 0.81, 0.81)

	got := Aggregate(scores, DefaultWeights(), AlgorithmMultiplicative)
	assert.InDelta(t, 0.81, got, 1e-9)
}

func TestAggregate_MultiplicativeZeroCategory(t *testing.T) {
	scores := catScores(0.9, 0.9, 0.9, 0)

	got := Aggregate(scores, DefaultWeights(), AlgorithmMultiplicative)
	assert.Zero(t, got, "a zero category zeroes the whole product")
}

func TestAggregate_HybridPenalizesWeakCategory(t *testing.T) {
	scores := catScores(0.9, 0.9, 0.9, 0.15)
	weights := CategoryWeights{Physical: 1, Lifestyle: 1, Social: 1, Relationship: 1}

	// Base weighted average is 0.7125; the weakest category sits at half
	// the floor, so the result is halved.
	got := Aggregate(scores, weights, AlgorithmHybrid)
	assert.InDelta(t, 0.35625, got, 1e-9)
}

func TestAggregate_HybridNoPenaltyAtFloor(t *testing.T) {
	scores := catScores(0.9, 0.9, 0.9, 0.3)
	weights := CategoryWeights{Physical: 1, Lifestyle: 1, Social: 1, Relationship: 1}

	got := Aggregate(scores, weights, AlgorithmHybrid)
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestAggregate_UnknownAlgorithm(t *testing.T) {
	scores := catScores(0.9, 0.9, 0.9, 0.9)

	got := Aggregate(scores, DefaultWeights(), Algorithm("quantum"))
	assert.Equal(t, neutralScore, got)
}

func TestThresholdsPasses_OverallGate(t *testing.T) {
	th := Thresholds{Overall: 0.6}
	scores := catScores(0.6, 0.6, 0.6, 0.6)

	assert.True(t, th.Passes(0.6, scores), "threshold is inclusive")
	assert.True(t, th.Passes(0.75, scores))
	assert.False(t, th.Passes(0.59, scores))
}

func TestThresholdsPasses_CategoryMinimums(t *testing.T) {
	th := Thresholds{Overall: 0.5, Lifestyle: fp(0.5)}
	scores := catScores(0.9, 0.4, 0.9, 0.9)

	// Overall clears the bar but the lifestyle minimum gates the raw
	// category score.
	require.False(t, th.Passes(0.8, scores))

	scores.Lifestyle.Score = 0.5
	require.True(t, th.Passes(0.8, scores))
}

func TestThresholdsPasses_NilMinimumsIgnored(t *testing.T) {
	th := Thresholds{Overall: 0.2}
	scores := catScores(0.0, 0.0, 0.0, 0.0)

	assert.True(t, th.Passes(0.3, scores))
}

func TestThresholdsPasses_RaisingOverallNeverAdmitsMore(t *testing.T) {
	scores := catScores(0.7, 0.6, 0.5, 0.4)
	overalls := []float64{0.12, 0.35, 0.58, 0.61, 0.74, 0.9}

	prevPassing := len(overalls)
	for _, gate := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		th := Thresholds{Overall: gate}
		passing := 0
		for _, overall := range overalls {
			if th.Passes(overall, scores) {
				passing++
			}
		}
		assert.LessOrEqual(t, passing, prevPassing, "gate %v admitted more candidates than %v", gate, prevPassing)
		prevPassing = passing
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.7, clamp01(0.7))
}
