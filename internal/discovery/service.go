package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amoralabs/amora-backend/internal/common/utils"
	"go.uber.org/zap"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrCooldownActive      = errors.New("discovery cooldown active")
)

// CooldownError carries the remaining wait so handlers can set
// Retry-After. errors.Is(err, ErrCooldownActive) matches it.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("discovery cooldown active, retry in %s", e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

type Service interface {
	// Matching
	DiscoverMatches(ctx context.Context, seekerID int64, req *MatchRequestDTO) (*MatchRun, error)
	GetCachedResults(ctx context.Context, seekerID int64) (*MatchRun, error)
	GetCompatibility(ctx context.Context, seekerID, candidateID int64) (*MatchResult, error)

	// Advisor
	OptimizePreferences(ctx context.Context, seekerID int64, req *OptimizeRequestDTO) (*OptimizationReport, error)
	GetPresets() []Preset

	// Operations
	GetStats(ctx context.Context) (*PoolStats, error)
	RunDailyDigest(ctx context.Context) error
}

// ServiceConfig is the tuning surface the composition root wires from
// app config.
type ServiceConfig struct {
	CandidatePoolSize int
	DefaultLimit      int
	MaxLimit          int
	Cooldown          time.Duration
	CacheTTL          time.Duration
	MaxDistanceKm     float64
	MinAge            int
	MaxAge            int
	ActiveWindow      time.Duration
	DigestBatchSize   int
	DigestActiveDays  int
}

type service struct {
	repo     Repository
	engine   *Orchestrator
	advisor  *Advisor
	cooldown CooldownStore
	cache    ResultCache
	hub      *Hub
	cfg      ServiceConfig
	logger   *zap.Logger
}

func NewService(repo Repository, engine *Orchestrator, advisor *Advisor, cooldown CooldownStore, cache ResultCache, hub *Hub, cfg ServiceConfig, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:     repo,
		engine:   engine,
		advisor:  advisor,
		cooldown: cooldown,
		cache:    cache,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *service) DiscoverMatches(ctx context.Context, seekerID int64, req *MatchRequestDTO) (*MatchRun, error) {
	ok, err := s.cooldown.Claim(ctx, seekerID, s.cfg.Cooldown)
	if err != nil {
		// A broken cooldown backend should not block matching.
		s.logger.Warn("cooldown claim failed, allowing run",
			zap.Int64("seeker_id", seekerID), zap.Error(err))
	} else if !ok {
		remaining, rerr := s.cooldown.Remaining(ctx, seekerID)
		if rerr != nil {
			remaining = s.cfg.Cooldown
		}
		return nil, &CooldownError{Remaining: remaining}
	}

	seeker, prefs, err := s.loadSeeker(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	criteria := DefaultCriteria()
	limit := s.cfg.DefaultLimit
	if req != nil {
		if req.Preferences != nil {
			prefs = req.Preferences.apply(prefs)
		}
		if req.Criteria != nil {
			criteria = req.Criteria.toCriteria()
		}
		if err := s.validateRequest(req, prefs, criteria); err != nil {
			return nil, err
		}
		if req.Limit > 0 {
			limit = req.Limit
		}
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	run, err := s.runPipeline(ctx, seeker, prefs, criteria, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, run, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("caching match run failed",
			zap.Int64("seeker_id", seekerID), zap.Error(err))
	}
	if s.hub != nil {
		s.hub.NotifyRunComplete(run)
	}
	return run, nil
}

func (s *service) GetCachedResults(ctx context.Context, seekerID int64) (*MatchRun, error) {
	return s.cache.Get(ctx, seekerID)
}

func (s *service) GetCompatibility(ctx context.Context, seekerID, candidateID int64) (*MatchResult, error) {
	seeker, prefs, err := s.loadSeeker(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.repo.GetProfile(ctx, candidateID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}

	res := s.engine.Evaluate(seeker, candidate, prefs, nil)
	return &res, nil
}

func (s *service) OptimizePreferences(ctx context.Context, seekerID int64, req *OptimizeRequestDTO) (*OptimizationReport, error) {
	_, prefs, err := s.loadSeeker(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	var recent []MatchResult
	if run, err := s.cache.Get(ctx, seekerID); err == nil {
		recent = run.Results
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("reading cached run for advisor failed",
			zap.Int64("seeker_id", seekerID), zap.Error(err))
	}

	goals := make([]Goal, 0, len(req.Goals))
	for _, g := range req.Goals {
		goals = append(goals, Goal(g))
	}
	return s.advisor.Optimize(prefs, goals, recent), nil
}

func (s *service) GetPresets() []Preset {
	return s.advisor.Presets()
}

func (s *service) GetStats(ctx context.Context) (*PoolStats, error) {
	return s.repo.PoolStats(ctx)
}

// RunDailyDigest refreshes cached matches for recently active seekers.
// It bypasses the cooldown: the system initiated the run, not the user.
func (s *service) RunDailyDigest(ctx context.Context) error {
	activeWindow := time.Duration(s.cfg.DigestActiveDays) * 24 * time.Hour
	seekerIDs, err := s.repo.GetActiveSeekerIDs(ctx, activeWindow, s.cfg.DigestBatchSize)
	if err != nil {
		RecordDigestRun("error")
		return fmt.Errorf("listing active seekers: %w", err)
	}

	failures := 0
	for _, seekerID := range seekerIDs {
		if ctx.Err() != nil {
			RecordDigestRun("canceled")
			return ctx.Err()
		}
		if err := s.digestFor(ctx, seekerID); err != nil {
			failures++
			s.logger.Warn("digest run failed",
				zap.Int64("seeker_id", seekerID), zap.Error(err))
		}
	}

	s.logger.Info("daily digest complete",
		zap.Int("seekers", len(seekerIDs)),
		zap.Int("failures", failures),
	)
	RecordDigestRun("success")
	return nil
}

func (s *service) digestFor(ctx context.Context, seekerID int64) error {
	seeker, prefs, err := s.loadSeeker(ctx, seekerID)
	if err != nil {
		return err
	}

	run, err := s.runPipeline(ctx, seeker, prefs, DefaultCriteria(), s.cfg.DefaultLimit)
	if err != nil {
		return err
	}

	if err := s.cache.Put(ctx, run, s.cfg.CacheTTL); err != nil {
		return fmt.Errorf("caching digest run: %w", err)
	}
	if s.hub != nil {
		s.hub.NotifyRunComplete(run)
	}
	return nil
}

// loadSeeker fetches the profile and preferences. A seeker who never
// saved preferences gets an empty set, which filters nothing.
func (s *service) loadSeeker(ctx context.Context, seekerID int64) (*Profile, *Preferences, error) {
	seeker, err := s.repo.GetProfile(ctx, seekerID)
	if err != nil {
		return nil, nil, err
	}

	prefs, err := s.repo.GetPreferences(ctx, seekerID)
	if errors.Is(err, ErrPreferencesNotFound) {
		s.logger.Debug("seeker has no stored preferences",
			zap.Int64("seeker_id", seekerID))
		prefs = &Preferences{}
	} else if err != nil {
		return nil, nil, err
	}
	return seeker, prefs, nil
}

func (s *service) runPipeline(ctx context.Context, seeker *Profile, prefs *Preferences, criteria *Criteria, limit int) (*MatchRun, error) {
	prefs = s.withPlatformBounds(prefs)
	filters := &CandidateFilters{
		MinAge:       prefs.AgeMin,
		MaxAge:       prefs.AgeMax,
		ActiveWithin: s.cfg.ActiveWindow,
		Limit:        s.cfg.CandidatePoolSize,
	}

	candidates, err := s.repo.FindCandidates(ctx, seeker.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pool: %w", err)
	}

	return s.engine.Run(ctx, &MatchRequest{
		Seeker:      seeker,
		Preferences: prefs,
		Criteria:    criteria,
		Candidates:  candidates,
		Limit:       limit,
	})
}

// validateRequest collects every violation from request-supplied
// preference and criteria overrides into a single response. Stored
// preferences are trusted as written; only what the caller sent this
// time is checked.
func (s *service) validateRequest(req *MatchRequestDTO, prefs *Preferences, criteria *Criteria) error {
	verr := utils.NewValidationError()

	if req.Preferences != nil {
		check := *prefs
		if check.AgeMin == 0 {
			check.AgeMin = s.cfg.MinAge
		}
		if check.AgeMax == 0 {
			check.AgeMax = s.cfg.MaxAge
		}
		if check.MaxDistanceKm == 0 {
			check.MaxDistanceKm = s.cfg.MaxDistanceKm
		}
		if err := check.Validate(s.cfg.MaxDistanceKm, s.cfg.MinAge, s.cfg.MaxAge); err != nil {
			v, ok := utils.AsValidationError(err)
			if !ok {
				return err
			}
			for _, violation := range v.Violations {
				verr.Add(violation)
			}
		}
	}
	if req.Criteria != nil {
		if err := criteria.Validate(); err != nil {
			v, ok := utils.AsValidationError(err)
			if !ok {
				return err
			}
			for _, violation := range v.Violations {
				verr.Add(violation)
			}
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// withPlatformBounds copies prefs with unset fields defaulted and the
// platform distance ceiling enforced. Stored values outside the
// ceiling degrade to it rather than failing the run.
func (s *service) withPlatformBounds(prefs *Preferences) *Preferences {
	p := *prefs
	if p.AgeMin == 0 {
		p.AgeMin = s.cfg.MinAge
	}
	if p.AgeMax == 0 {
		p.AgeMax = s.cfg.MaxAge
	}
	if p.MaxDistanceKm <= 0 || p.MaxDistanceKm > s.cfg.MaxDistanceKm {
		p.MaxDistanceKm = s.cfg.MaxDistanceKm
	}
	return &p
}
