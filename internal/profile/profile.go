// Package profile loads candidate profiles for the matching workers, with a
// Redis read-through cache in front of Postgres.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"internship-workers/internal/common/errors"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/common/metrics"
	"internship-workers/internal/matching"
)

const cacheKeyPrefix = "candidate:profile:"

const candidateQuery = `
	SELECT full_name, email, phone, skills, preferred_locations, preferred_sectors,
	       preferred_modality, min_stipend
	FROM candidate_profiles
	WHERE id = $1`

type Profile struct {
	CandidateID string               `json:"candidateId"`
	Name        string               `json:"name,omitempty"`
	Email       string               `json:"email,omitempty"`
	Phone       string               `json:"phone,omitempty"`
	Skills      []string             `json:"skills"`
	Preferences matching.Preferences `json:"preferences"`
}

// Store reads profiles. A nil cache disables caching.
type Store struct {
	db    *sql.DB
	cache redis.Cmdable
	ttl   time.Duration
	log   logger.Logger
}

func NewStore(db *sql.DB, cache redis.Cmdable, ttl time.Duration, log logger.Logger) *Store {
	return &Store{db: db, cache: cache, ttl: ttl, log: log}
}

func CacheKey(candidateID string) string {
	return cacheKeyPrefix + candidateID
}

// Get returns the profile for candidateID. Cache errors are logged and fall
// through to the database.
func (s *Store) Get(ctx context.Context, candidateID string) (*Profile, error) {
	if p, ok := s.fromCache(ctx, candidateID); ok {
		return p, nil
	}

	p, err := s.load(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	s.store(ctx, p)
	return p, nil
}

func (s *Store) fromCache(ctx context.Context, candidateID string) (*Profile, bool) {
	if s.cache == nil {
		return nil, false
	}

	val, err := s.cache.Get(ctx, CacheKey(candidateID)).Result()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			s.log.Warn("profile cache read failed", map[string]interface{}{
				"candidateId": candidateID,
				"error":       err,
			})
		}
		metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var p Profile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		s.log.Warn("discarding corrupt cached profile", map[string]interface{}{
			"candidateId": candidateID,
			"error":       err,
		})
		metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
	return &p, true
}

func (s *Store) store(ctx context.Context, p *Profile) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKey(p.CandidateID), data, s.ttl).Err(); err != nil {
		s.log.Warn("profile cache write failed", map[string]interface{}{
			"candidateId": p.CandidateID,
			"error":       err,
		})
	}
}

func (s *Store) load(ctx context.Context, candidateID string) (*Profile, error) {
	var (
		name, email, phone, modality sql.NullString
		skills, locations, sectors   []byte
		minStipend                   sql.NullFloat64
	)

	err := s.db.QueryRowContext(ctx, candidateQuery, candidateID).Scan(
		&name, &email, &phone, &skills, &locations, &sectors, &modality, &minStipend,
	)
	if err != nil {
		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			return nil, errors.NewCandidateNotFoundError(candidateID)
		case ctx.Err() == context.DeadlineExceeded:
			return nil, errors.NewQueryTimeoutError("candidate_profile")
		default:
			return nil, errors.NewProfileLookupFailedError(candidateID, err)
		}
	}

	p := &Profile{
		CandidateID: candidateID,
		Name:        name.String,
		Email:       email.String,
		Phone:       phone.String,
		Preferences: matching.Preferences{
			Modality: matching.Modality(modality.String),
		},
	}
	if minStipend.Valid {
		p.Preferences.MinStipend = matching.NewNumber(minStipend.Float64)
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  *[]string
	}{
		{"skills", skills, &p.Skills},
		{"preferred_locations", locations, &p.Preferences.Locations},
		{"preferred_sectors", sectors, &p.Preferences.Sectors},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, errors.NewProfileLookupFailedError(candidateID, fmt.Errorf("%s: %w", col.name, err))
		}
	}
	return p, nil
}
