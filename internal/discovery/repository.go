package discovery

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository supplies the engine's read model: seeker profiles, stored
// preferences, and the coarse candidate pool the pipeline narrows down.
type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	FindCandidates(ctx context.Context, seekerID int64, filters *CandidateFilters) ([]*Profile, error)
	GetActiveSeekerIDs(ctx context.Context, activeWithin time.Duration, limit int) ([]int64, error)
	PoolStats(ctx context.Context) (*PoolStats, error)
}

// CandidateFilters is the coarse SQL window. Fine-grained elimination
// (distance, deal-breakers, thresholds) happens in the pipeline, not here.
type CandidateFilters struct {
	MinAge       int
	MaxAge       int
	ActiveWithin time.Duration
	ExcludeIDs   []int64
	Limit        int
}

// PoolStats backs the stats endpoint.
type PoolStats struct {
	TotalProfiles    int64 `db:"total_profiles" json:"total_profiles"`
	ActiveLastWeek   int64 `db:"active_last_week" json:"active_last_week"`
	VerifiedProfiles int64 `db:"verified_profiles" json:"verified_profiles"`
	WithPhotos       int64 `db:"with_photos" json:"with_photos"`
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileColumns is shared by every query that hydrates a Profile; the
// scan order in scanProfile must match it.
const profileColumns = `
	u.id,
	u.display_name,
	p.gender,
	EXTRACT(YEAR FROM AGE(p.birth_date))::int AS age,
	p.height_cm,
	COALESCE(p.body_type, '') AS body_type,
	p.photo_count,
	COALESCE(p.smoking, '') AS smoking,
	COALESCE(p.drinking, '') AS drinking,
	COALESCE(p.exercise, '') AS exercise,
	COALESCE(p.diet, '') AS diet,
	COALESCE(p.drugs, '') AS drugs,
	COALESCE(p.education, '') AS education,
	COALESCE(p.occupation, '') AS occupation,
	COALESCE(p.interests, '{}') AS interests,
	COALESCE(p.languages, '{}') AS languages,
	COALESCE(p.relationship_types, '{}') AS relationship_types,
	COALESCE(p.sexual_orientation, '') AS sexual_orientation,
	u.is_verified,
	COALESCE(u.last_active_at, u.created_at) AS last_active_at,
	u.created_at,
	p.latitude,
	p.longitude`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.Gender,
		&p.Age,
		&p.HeightCm,
		&p.BodyType,
		&p.PhotoCount,
		&p.Smoking,
		&p.Drinking,
		&p.Exercise,
		&p.Diet,
		&p.Drugs,
		&p.Education,
		&p.Occupation,
		pq.Array(&p.Interests),
		pq.Array(&p.Languages),
		pq.Array(&p.RelationshipTypes),
		&p.SexualOrientation,
		&p.IsVerified,
		&p.LastActiveAt,
		&p.CreatedAt,
		&p.Latitude,
		&p.Longitude,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM users u
		JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1 AND NOT u.is_banned
	`

	profile, err := scanProfile(r.db.QueryRowxContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *postgresRepository) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	query := `
		SELECT
			age_min, age_max, max_distance_km,
			COALESCE(orientations, '{}') AS orientations,
			COALESCE(relationship_types, '{}') AS relationship_types,
			COALESCE(body_types, '{}') AS body_types,
			height_min_cm, height_max_cm,
			COALESCE(education_levels, '{}') AS education_levels,
			COALESCE(deal_breakers, '{}') AS deal_breakers
		FROM user_preferences
		WHERE user_id = $1
	`

	var prefs Preferences
	var orientations, relationshipTypes, bodyTypes, educationLevels, dealBreakers []string

	err := r.db.QueryRowxContext(ctx, query, userID).Scan(
		&prefs.AgeMin,
		&prefs.AgeMax,
		&prefs.MaxDistanceKm,
		pq.Array(&orientations),
		pq.Array(&relationshipTypes),
		pq.Array(&bodyTypes),
		&prefs.HeightMinCm,
		&prefs.HeightMaxCm,
		pq.Array(&educationLevels),
		pq.Array(&dealBreakers),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}

	prefs.Orientations = toTyped[Orientation](orientations)
	prefs.RelationshipTypes = relationshipTypes
	prefs.BodyTypes = toTyped[BodyType](bodyTypes)
	prefs.EducationLevels = toTyped[EducationLevel](educationLevels)
	prefs.DealBreakers = toTyped[DealBreaker](dealBreakers)
	return &prefs, nil
}

func (r *postgresRepository) FindCandidates(ctx context.Context, seekerID int64, filters *CandidateFilters) ([]*Profile, error) {
	exclude := append([]int64{seekerID}, filters.ExcludeIDs...)

	activeSince := time.Time{}
	if filters.ActiveWithin > 0 {
		activeSince = time.Now().Add(-filters.ActiveWithin)
	}

	query := `
		SELECT ` + profileColumns + `
		FROM users u
		JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id != ALL($1)
		  AND NOT u.is_banned
		  AND EXTRACT(YEAR FROM AGE(p.birth_date)) BETWEEN $2 AND $3
		  AND COALESCE(u.last_active_at, u.created_at) > $4
		ORDER BY u.last_active_at DESC NULLS LAST, u.id
		LIMIT $5
	`

	rows, err := r.db.QueryxContext(
		ctx, query,
		pq.Array(exclude), filters.MinAge, filters.MaxAge, activeSince, filters.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*Profile, 0, filters.Limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, profile)
	}
	return candidates, rows.Err()
}

func (r *postgresRepository) GetActiveSeekerIDs(ctx context.Context, activeWithin time.Duration, limit int) ([]int64, error) {
	query := `
		SELECT u.id
		FROM users u
		JOIN user_preferences up ON up.user_id = u.id
		WHERE NOT u.is_banned
		  AND COALESCE(u.last_active_at, u.created_at) > $1
		ORDER BY u.last_active_at DESC NULLS LAST, u.id
		LIMIT $2
	`

	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, time.Now().Add(-activeWithin), limit)
	return ids, err
}

func (r *postgresRepository) PoolStats(ctx context.Context) (*PoolStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_profiles,
			COUNT(*) FILTER (WHERE COALESCE(u.last_active_at, u.created_at) > NOW() - INTERVAL '7 days') AS active_last_week,
			COUNT(*) FILTER (WHERE u.is_verified) AS verified_profiles,
			COUNT(*) FILTER (WHERE p.photo_count > 0) AS with_photos
		FROM users u
		JOIN user_profiles p ON p.user_id = u.id
		WHERE NOT u.is_banned
	`

	var stats PoolStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}

func toTyped[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}
