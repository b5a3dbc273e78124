package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DateLister is the slice of the entry store the calendar needs: the
// distinct dates carrying a live entry in a year, nothing else.
type DateLister interface {
	ListCalendarDates(ctx context.Context, profileID string, year int) ([]string, error)
}

// Service answers month-view lookups. Results are cached per profile and
// year in Redis; entry writes invalidate the year they touch.
type Service interface {
	// Year returns the set of dates in the year that have an entry.
	Year(ctx context.Context, profileID string, year int) (*DateSet, error)

	// Invalidate drops the cached date set for a profile's year.
	Invalidate(ctx context.Context, profileID string, year int) error
}

type service struct {
	dates  DateLister
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates a calendar service. With a nil Redis client every
// lookup goes straight to the store.
func NewService(dates DateLister, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) Service {
	return &service{dates: dates, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(profileID string, year int) string {
	return fmt.Sprintf("calendar:%s:%d", profileID, year)
}

// Year returns the date set for the profile's year, from cache when
// possible. Cache failures degrade to a store read; they never fail the
// lookup.
func (s *service) Year(ctx context.Context, profileID string, year int) (*DateSet, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, cacheKey(profileID, year)).Bytes()
		if err == nil {
			var dates []string
			if err := json.Unmarshal(raw, &dates); err == nil {
				return NewDateSet(dates), nil
			}
			s.logger.Warn("discarding malformed calendar cache entry", "profile_id", profileID, "year", year)
		} else if err != redis.Nil {
			s.logger.Warn("calendar cache read failed", "error", err)
		}
	}

	dates, err := s.dates.ListCalendarDates(ctx, profileID, year)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		raw, err := json.Marshal(dates)
		if err == nil {
			if err := s.rdb.Set(ctx, cacheKey(profileID, year), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("calendar cache write failed", "error", err)
			}
		}
	}

	return NewDateSet(dates), nil
}

// Invalidate drops the cached date set for a profile's year.
func (s *service) Invalidate(ctx context.Context, profileID string, year int) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, cacheKey(profileID, year)).Err()
}
