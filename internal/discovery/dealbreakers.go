// internal/discovery/dealbreakers.go

package discovery

import (
	"time"
)

// DealBreaker identifies one predicate in the fixed catalog. A triggered
// deal-breaker removes the candidate from consideration unconditionally.
type DealBreaker string

const (
	DealBreakerSmoking              DealBreaker = "smoking"
	DealBreakerNoPhotos             DealBreaker = "no_photos"
	DealBreakerHeightMismatch       DealBreaker = "height_mismatch"
	DealBreakerBodyTypeMismatch     DealBreaker = "body_type_mismatch"
	DealBreakerDrinkingHeavily      DealBreaker = "drinking_heavily"
	DealBreakerDrugUse              DealBreaker = "drug_use"
	DealBreakerNoExercise           DealBreaker = "no_exercise"
	DealBreakerNoVerification       DealBreaker = "no_verification"
	DealBreakerEducationMismatch    DealBreaker = "education_mismatch"
	DealBreakerLanguageBarrier      DealBreaker = "language_barrier"
	DealBreakerInactiveUsers        DealBreaker = "inactive_users"
	DealBreakerNewProfiles          DealBreaker = "new_profiles"
	DealBreakerAgeGaps              DealBreaker = "age_gaps"
	DealBreakerRelationshipMismatch DealBreaker = "relationship_mismatch"
)

// dealBreakerInput bundles everything a predicate may inspect. now is fixed
// once per pass so time-based predicates agree across one pool.
type dealBreakerInput struct {
	seeker    *Profile
	prefs     *Preferences
	candidate *Profile
	now       time.Time
}

type dealBreakerFn func(in dealBreakerInput) bool

// dealBreakerCatalog maps each id to its predicate. Missing attributes never
// trigger a predicate: a candidate is eliminated for what their profile says,
// not for what it omits.
var dealBreakerCatalog = map[DealBreaker]dealBreakerFn{
	DealBreakerSmoking: func(in dealBreakerInput) bool {
		return in.candidate.Smoking == SmokingRegularly || in.candidate.Smoking == SmokingSocially
	},

	DealBreakerNoPhotos: func(in dealBreakerInput) bool {
		return in.candidate.PhotoCount == 0
	},

	DealBreakerHeightMismatch: func(in dealBreakerInput) bool {
		if in.seeker.HeightCm == nil || in.candidate.HeightCm == nil {
			return false
		}
		return absInt(*in.seeker.HeightCm-*in.candidate.HeightCm) > 20
	},

	DealBreakerBodyTypeMismatch: func(in dealBreakerInput) bool {
		if in.prefs == nil || len(in.prefs.BodyTypes) == 0 || in.candidate.BodyType == "" {
			return false
		}
		for _, bt := range in.prefs.BodyTypes {
			if bt == in.candidate.BodyType {
				return false
			}
		}
		return true
	},

	DealBreakerDrinkingHeavily: func(in dealBreakerInput) bool {
		return in.candidate.Drinking == DrinkingFrequently
	},

	DealBreakerDrugUse: func(in dealBreakerInput) bool {
		return in.candidate.Drugs == DrugsRegularly || in.candidate.Drugs == DrugsOccasionally
	},

	DealBreakerNoExercise: func(in dealBreakerInput) bool {
		return in.candidate.Exercise == ExerciseNever
	},

	DealBreakerNoVerification: func(in dealBreakerInput) bool {
		return !in.candidate.IsVerified
	},

	DealBreakerEducationMismatch: func(in dealBreakerInput) bool {
		seekerRank, ok := educationRank(in.seeker.Education)
		if !ok {
			return false
		}
		candidateRank, ok := educationRank(in.candidate.Education)
		if !ok {
			return false
		}
		return seekerRank-candidateRank > 2
	},

	DealBreakerLanguageBarrier: func(in dealBreakerInput) bool {
		if len(in.seeker.Languages) == 0 || len(in.candidate.Languages) == 0 {
			return false
		}
		return !sharesAny(in.seeker.Languages, in.candidate.Languages)
	},

	DealBreakerInactiveUsers: func(in dealBreakerInput) bool {
		if in.candidate.LastActiveAt.IsZero() {
			return false
		}
		return in.now.Sub(in.candidate.LastActiveAt) > 14*24*time.Hour
	},

	DealBreakerNewProfiles: func(in dealBreakerInput) bool {
		if in.candidate.CreatedAt.IsZero() {
			return false
		}
		return in.now.Sub(in.candidate.CreatedAt) < 24*time.Hour
	},

	DealBreakerAgeGaps: func(in dealBreakerInput) bool {
		return absInt(in.seeker.Age-in.candidate.Age) > 15
	},

	DealBreakerRelationshipMismatch: func(in dealBreakerInput) bool {
		if len(in.seeker.RelationshipTypes) == 0 || len(in.candidate.RelationshipTypes) == 0 {
			return false
		}
		return !sharesAny(in.seeker.RelationshipTypes, in.candidate.RelationshipTypes)
	},
}

// Known reports whether the id is in the catalog.
func (d DealBreaker) Known() bool {
	_, ok := dealBreakerCatalog[d]
	return ok
}

// AllDealBreakers returns the catalog ids in a stable order.
func AllDealBreakers() []DealBreaker {
	return []DealBreaker{
		DealBreakerSmoking,
		DealBreakerNoPhotos,
		DealBreakerHeightMismatch,
		DealBreakerBodyTypeMismatch,
		DealBreakerDrinkingHeavily,
		DealBreakerDrugUse,
		DealBreakerNoExercise,
		DealBreakerNoVerification,
		DealBreakerEducationMismatch,
		DealBreakerLanguageBarrier,
		DealBreakerInactiveUsers,
		DealBreakerNewProfiles,
		DealBreakerAgeGaps,
		DealBreakerRelationshipMismatch,
	}
}

// ApplyDealBreakers removes every candidate that triggers any active
// predicate, short-circuiting on the first hit. An empty active set is the
// identity: the input slice is returned unchanged with no side effects.
// Unknown ids never trigger.
func ApplyDealBreakers(seeker *Profile, prefs *Preferences, candidates []*Profile, active []DealBreaker) []*Profile {
	if len(active) == 0 {
		return candidates
	}

	now := time.Now()
	filtered := make([]*Profile, 0, len(candidates))

	for _, candidate := range candidates {
		if firstTriggered(seeker, prefs, candidate, active, now) == "" {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// EvaluateDealBreakers checks every active predicate against one candidate
// and reports all hits. Used for single-pair compatibility detail, where the
// caller wants the full picture rather than a short-circuit.
func EvaluateDealBreakers(seeker *Profile, prefs *Preferences, candidate *Profile, active []DealBreaker) DealBreakerReport {
	now := time.Now()
	var triggered []DealBreaker

	for _, id := range active {
		fn, ok := dealBreakerCatalog[id]
		if !ok {
			continue
		}
		if fn(dealBreakerInput{seeker: seeker, prefs: prefs, candidate: candidate, now: now}) {
			triggered = append(triggered, id)
		}
	}

	return DealBreakerReport{
		Passed:    len(triggered) == 0,
		Triggered: triggered,
	}
}

func firstTriggered(seeker *Profile, prefs *Preferences, candidate *Profile, active []DealBreaker, now time.Time) DealBreaker {
	in := dealBreakerInput{seeker: seeker, prefs: prefs, candidate: candidate, now: now}
	for _, id := range active {
		fn, ok := dealBreakerCatalog[id]
		if !ok {
			continue
		}
		if fn(in) {
			return id
		}
	}
	return ""
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sharesAny reports whether the two tag sets intersect, case-insensitively.
func sharesAny(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[normalizeTag(v)] = true
	}
	for _, v := range b {
		if set[normalizeTag(v)] {
			return true
		}
	}
	return false
}
