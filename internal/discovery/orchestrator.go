package discovery

import (
	"context"
	"errors"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/amoralabs/amora-backend/internal/geo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage identifies one step of the match pipeline, in execution order.
type Stage string

const (
	StageInit            Stage = "init"
	StageLocationFilter  Stage = "location_filter"
	StageDealBreakers    Stage = "deal_breaker_filter"
	StageCategoryScore   Stage = "category_score"
	StageThresholdGate   Stage = "threshold_gate"
	StageRank            Stage = "rank"
	StageTruncate        Stage = "truncate"
	StageDone            Stage = "done"
)

// Ranking boost per fully satisfied must-have / nice-to-have set.
const (
	mustHaveBoost   = 0.10
	niceToHaveBoost = 0.05
)

var (
	errNilSeeker      = errors.New("match request needs a seeker profile")
	errNilPreferences = errors.New("match request needs seeker preferences")
)

// MatchRequest is everything one pipeline run needs. Candidates are the
// coarse pool the repository produced; the pipeline narrows it down.
type MatchRequest struct {
	Seeker      *Profile
	Preferences *Preferences
	Criteria    *Criteria
	Candidates  []*Profile
	Limit       int
}

// MatchRun is the outcome of one pipeline execution.
type MatchRun struct {
	RunID       string        `json:"run_id"`
	SeekerID    int64         `json:"seeker_id"`
	Results     []MatchResult `json:"results"`
	Considered  int           `json:"candidates_considered"`
	Eliminated  map[Stage]int `json:"eliminated_by_stage"`
	GeneratedAt time.Time     `json:"generated_at"`
	ElapsedMs   int64         `json:"elapsed_ms"`
}

// Orchestrator drives the staged match pipeline: location filter,
// deal-breaker filter, concurrent category scoring, threshold gate,
// rank, truncate. A panicking candidate is dropped and logged; it never
// takes the run down with it.
type Orchestrator struct {
	scorer  Scorer
	logger  *zap.Logger
	workers int
}

func NewOrchestrator(scorer Scorer, logger *zap.Logger, workers int) *Orchestrator {
	if scorer == nil {
		scorer = NewScorer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		scorer:  scorer,
		logger:  logger,
		workers: workers,
	}
}

// Run executes the full pipeline for one seeker.
func (o *Orchestrator) Run(ctx context.Context, req *MatchRequest) (*MatchRun, error) {
	if req == nil || req.Seeker == nil {
		return nil, errNilSeeker
	}
	if req.Preferences == nil {
		return nil, errNilPreferences
	}

	criteria := req.Criteria
	if criteria == nil {
		criteria = DefaultCriteria()
	}

	start := time.Now()
	run := &MatchRun{
		RunID:       uuid.NewString(),
		SeekerID:    req.Seeker.ID,
		Results:     []MatchResult{},
		Considered:  len(req.Candidates),
		Eliminated:  make(map[Stage]int),
		GeneratedAt: start.UTC(),
	}

	pool, vectors := o.filterByLocation(req.Seeker, req.Preferences, req.Candidates)
	recordEliminations(StageLocationFilter, run.Eliminated, len(req.Candidates)-len(pool))

	survivors := o.filterDealBreakers(req.Seeker, req.Preferences, criteria, pool)
	recordEliminations(StageDealBreakers, run.Eliminated, len(pool)-len(survivors))

	scored, dropped, err := o.scorePool(ctx, req.Seeker, req.Preferences, criteria, survivors, vectors)
	if err != nil {
		return nil, err
	}
	recordEliminations(StageCategoryScore, run.Eliminated, dropped)
	candidatesScored.Add(float64(len(scored)))

	passed := make([]MatchResult, 0, len(scored))
	for _, res := range scored {
		if criteria.Thresholds.Passes(res.Score, res.Categories) {
			passed = append(passed, res)
		}
	}
	recordEliminations(StageThresholdGate, run.Eliminated, len(scored)-len(passed))

	o.rank(passed, criteria.SortBy)

	if req.Limit > 0 && len(passed) > req.Limit {
		recordEliminations(StageTruncate, run.Eliminated, len(passed)-req.Limit)
		passed = passed[:req.Limit]
	}
	run.Results = passed

	run.ElapsedMs = time.Since(start).Milliseconds()
	matchRunDuration.Observe(time.Since(start).Seconds())
	for _, res := range run.Results {
		compatibilityScores.Observe(res.Score)
	}

	o.logger.Debug("match run complete",
		zap.String("run_id", run.RunID),
		zap.Int64("seeker_id", run.SeekerID),
		zap.Int("considered", run.Considered),
		zap.Int("returned", len(run.Results)),
		zap.Int64("elapsed_ms", run.ElapsedMs),
	)
	return run, nil
}

// Evaluate scores a single pair without the pipeline's elimination
// stages: deal-breakers and thresholds are reported, not enforced, so
// the caller sees why a pairing would fail rather than an empty result.
func (o *Orchestrator) Evaluate(seeker, candidate *Profile, prefs *Preferences, criteria *Criteria) MatchResult {
	if criteria == nil {
		criteria = DefaultCriteria()
	}

	res, ok := o.scoreCandidate(seeker, prefs, criteria, candidate, nil)
	if !ok {
		res = MatchResult{
			CandidateID: candidate.ID,
			Candidate:   summarize(candidate),
			Score:       neutralScore,
			Categories:  neutralCategoryScores(),
		}
	}
	res.DealBreakers = EvaluateDealBreakers(seeker, prefs, candidate, ActiveDealBreakers(prefs, criteria))
	res.Explanation = Explain(res.Categories, res.Score, res.MatchedPreferences)
	res.Suggestions = improvementSuggestions(res.MismatchedPreferences)

	if seeker.HasCoordinates() && candidate.HasCoordinates() {
		v := geo.Between(*seeker.Latitude, *seeker.Longitude, *candidate.Latitude, *candidate.Longitude)
		res.DistanceKm = v.DistanceKm
		res.BearingDeg = v.BearingDeg
	}
	return res
}

// filterByLocation drops candidates outside the preferred radius and
// keeps their distance vectors for the final results. A seeker without
// coordinates skips the stage entirely.
func (o *Orchestrator) filterByLocation(seeker *Profile, prefs *Preferences, pool []*Profile) ([]*Profile, map[int64]geo.Vector) {
	vectors := make(map[int64]geo.Vector, len(pool))
	if !seeker.HasCoordinates() {
		return pool, vectors
	}

	kept := make([]*Profile, 0, len(pool))
	for _, candidate := range pool {
		if !candidate.HasCoordinates() {
			continue
		}
		v := geo.Between(*seeker.Latitude, *seeker.Longitude, *candidate.Latitude, *candidate.Longitude)
		if prefs.MaxDistanceKm > 0 && v.DistanceKm > prefs.MaxDistanceKm {
			continue
		}
		vectors[candidate.ID] = v
		kept = append(kept, candidate)
	}
	return kept, vectors
}

// filterDealBreakers hard-eliminates candidates, counting which rule
// fired. Disabled advanced filtering skips the stage.
func (o *Orchestrator) filterDealBreakers(seeker *Profile, prefs *Preferences, criteria *Criteria, pool []*Profile) []*Profile {
	active := ActiveDealBreakers(prefs, criteria)
	if !criteria.AdvancedFiltering || len(active) == 0 {
		return pool
	}

	now := time.Now()
	kept := make([]*Profile, 0, len(pool))
	for _, candidate := range pool {
		if db := firstTriggered(seeker, prefs, candidate, active, now); db != "" {
			dealBreakerTriggers.WithLabelValues(string(db)).Inc()
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

type scoreJob struct {
	idx       int
	candidate *Profile
}

// scorePool fans candidates out over the worker pool. Results land in
// index slots so concurrency never perturbs ordering; the returned int
// counts candidates dropped by scoring panics.
func (o *Orchestrator) scorePool(ctx context.Context, seeker *Profile, prefs *Preferences, criteria *Criteria, pool []*Profile, vectors map[int64]geo.Vector) ([]MatchResult, int, error) {
	if len(pool) == 0 {
		return nil, 0, nil
	}

	results := make([]MatchResult, len(pool))
	evaluated := make([]bool, len(pool))

	workers := o.workers
	if workers > len(pool) {
		workers = len(pool)
	}

	jobs := make(chan scoreJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if res, ok := o.scoreCandidate(seeker, prefs, criteria, job.candidate, vectors); ok {
					results[job.idx] = res
					evaluated[job.idx] = true
				}
			}
		}()
	}

	for i, candidate := range pool {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, 0, ctx.Err()
		case jobs <- scoreJob{idx: i, candidate: candidate}:
		}
	}
	close(jobs)
	wg.Wait()

	scored := make([]MatchResult, 0, len(pool))
	dropped := 0
	for i := range pool {
		if !evaluated[i] {
			dropped++
			continue
		}
		scored = append(scored, results[i])
	}
	return scored, dropped, nil
}

func (o *Orchestrator) scoreCandidate(seeker *Profile, prefs *Preferences, criteria *Criteria, candidate *Profile, vectors map[int64]geo.Vector) (res MatchResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("candidate scoring panicked",
				zap.Int64("candidate_id", candidate.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			ok = false
		}
	}()

	scores := o.scorer.ScoreCategories(seeker, candidate, prefs)
	overall := Aggregate(scores, criteria.Weights, criteria.Algorithm)
	matched, mismatched := preferenceMatches(seeker, candidate, prefs, scores)

	res = MatchResult{
		CandidateID:           candidate.ID,
		Candidate:             summarize(candidate),
		Score:                 overall,
		Categories:            scores,
		MatchedPreferences:    matched,
		MismatchedPreferences: mismatched,
		DealBreakers:          DealBreakerReport{Passed: true},
		MustHaves:             tagSatisfaction(criteria.MustHaves, candidate),
		NiceToHaves:           tagSatisfaction(criteria.NiceToHaves, candidate),
	}
	if v, found := vectors[candidate.ID]; found {
		res.DistanceKm = v.DistanceKm
		res.BearingDeg = v.BearingDeg
	}
	return res, true
}

// rank boosts scores for satisfied must-haves, attaches explanations,
// and sorts. Ties always break on ascending candidate id so repeated
// runs over the same pool return the same order.
func (o *Orchestrator) rank(results []MatchResult, order SortOrder) {
	for i := range results {
		res := &results[i]
		boost := 1 + mustHaveBoost*res.MustHaves.Ratio() + niceToHaveBoost*res.NiceToHaves.Ratio()
		res.Score = clamp01(res.Score * boost)
		res.Explanation = Explain(res.Categories, res.Score, res.MatchedPreferences)
		res.Suggestions = improvementSuggestions(res.MismatchedPreferences)
	}
	sortResults(results, order)
}

func sortResults(results []MatchResult, order SortOrder) {
	switch order {
	case SortByDistance:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].DistanceKm != results[j].DistanceKm {
				return results[i].DistanceKm < results[j].DistanceKm
			}
			return byScoreThenID(results, i, j)
		})
	case SortByRecentActivity:
		sort.SliceStable(results, func(i, j int) bool {
			ti, tj := results[i].Candidate.LastActiveAt, results[j].Candidate.LastActiveAt
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return byScoreThenID(results, i, j)
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return byScoreThenID(results, i, j)
		})
	}
}

func byScoreThenID(results []MatchResult, i, j int) bool {
	if results[i].Score != results[j].Score {
		return results[i].Score > results[j].Score
	}
	return results[i].CandidateID < results[j].CandidateID
}

func recordEliminations(stage Stage, counts map[Stage]int, n int) {
	if n <= 0 {
		return
	}
	counts[stage] += n
	stageEliminations.WithLabelValues(string(stage)).Add(float64(n))
}
