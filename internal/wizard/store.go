package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a profile has no in-progress wizard.
var ErrNoSession = fmt.Errorf("no wizard session")

// SessionStore persists wizard state between requests. One in-progress
// wizard per profile.
type SessionStore interface {
	Load(ctx context.Context, profileID string) (State, error)
	Save(ctx context.Context, profileID string, state State) error
	Delete(ctx context.Context, profileID string) error
}

type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a Redis-backed session store. Sessions expire
// after the TTL; every save refreshes it.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(profileID string) string {
	return "wizard:" + profileID
}

func (s *redisSessionStore) Load(ctx context.Context, profileID string) (State, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(profileID)).Bytes()
	if err == redis.Nil {
		return State{}, ErrNoSession
	}
	if err != nil {
		return State{}, fmt.Errorf("loading wizard session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decoding wizard session: %w", err)
	}
	return state, nil
}

func (s *redisSessionStore) Save(ctx context.Context, profileID string, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding wizard session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(profileID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving wizard session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, profileID string) error {
	if err := s.rdb.Del(ctx, sessionKey(profileID)).Err(); err != nil {
		return fmt.Errorf("deleting wizard session: %w", err)
	}
	return nil
}
