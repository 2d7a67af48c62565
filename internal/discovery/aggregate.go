// internal/discovery/aggregate.go

package discovery

import "math"

// lowCategoryFloor is where the hybrid algorithm starts penalizing a weak
// category.
const lowCategoryFloor = 0.3

// Aggregate combines the four category scores into one overall score under
// the chosen algorithm. Weights are renormalized before use regardless of
// their input sum. An unknown algorithm yields the neutral 0.5 so a
// misconfigured seeker degrades gracefully instead of aborting a batch.
func Aggregate(scores CategoryScores, weights CategoryWeights, algorithm Algorithm) float64 {
	w := weights.Normalized()

	switch algorithm {
	case AlgorithmWeightedAverage:
		return weightedAverage(scores, w)
	case AlgorithmMultiplicative:
		return geometricMean(scores)
	case AlgorithmHybrid:
		return hybrid(scores, w)
	default:
		return neutralScore
	}
}

func weightedAverage(scores CategoryScores, w CategoryWeights) float64 {
	return scores.Physical.Score*w.Physical +
		scores.Lifestyle.Score*w.Lifestyle +
		scores.Social.Score*w.Social +
		scores.Relationship.Score*w.Relationship
}

// geometricMean rewards candidates with no weak category: a single
// near-zero category collapses the result, and an exact zero yields
// exactly zero.
func geometricMean(scores CategoryScores) float64 {
	product := scores.Physical.Score *
		scores.Lifestyle.Score *
		scores.Social.Score *
		scores.Relationship.Score
	if product <= 0 {
		return 0
	}
	return math.Pow(product, 0.25)
}

// hybrid is the weighted average scaled down when the weakest category falls
// under the floor.
func hybrid(scores CategoryScores, w CategoryWeights) float64 {
	base := weightedAverage(scores, w)

	minScore := scores.Min()
	if minScore >= lowCategoryFloor {
		return base
	}

	penalty := minScore / lowCategoryFloor
	if penalty > 1 {
		penalty = 1
	}
	return base * penalty
}

// Passes reports whether a candidate clears the gate: the aggregate must
// reach Overall, and every defined per-category minimum must not exceed that
// category's raw score. Raw scores, never weighted contributions — the gate
// is independent of the aggregation algorithm.
func (t Thresholds) Passes(overall float64, scores CategoryScores) bool {
	if overall < t.Overall {
		return false
	}

	checks := []struct {
		min   *float64
		score float64
	}{
		{t.Physical, scores.Physical.Score},
		{t.Lifestyle, scores.Lifestyle.Score},
		{t.Social, scores.Social.Score},
		{t.Relationship, scores.Relationship.Score},
	}
	for _, c := range checks {
		if c.min != nil && *c.min > c.score {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
