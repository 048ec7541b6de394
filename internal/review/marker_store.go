// Package review implements the rating-prompt eligibility tracker and
// the persisted idempotency markers that make prompting at-most-once
// across restarts and concurrent refreshes.
package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MarkerStore records which reservations have already triggered a
// rating prompt. MarkPrompted uses write-if-absent semantics: it
// returns true only for the first writer, so concurrent eligibility
// checks cannot both dispatch.
type MarkerStore interface {
	HasPrompted(ctx context.Context, reservationID uint64) (bool, error)
	MarkPrompted(ctx context.Context, reservationID uint64) (bool, error)
}

func markerKey(reservationID uint64) string {
	return fmt.Sprintf("rating_notified_%d", reservationID)
}

// RedisMarkerStore persists markers in Redis so prompting stays
// at-most-once across devices and restarts. Keys carry no TTL: a
// reservation is only ever prompted once.
type RedisMarkerStore struct {
	client *redis.Client
}

// NewRedisMarkerStore wraps a Redis client. The client must be non-nil;
// callers without Redis use NewMemoryMarkerStore instead.
func NewRedisMarkerStore(client *redis.Client) *RedisMarkerStore {
	return &RedisMarkerStore{client: client}
}

func (s *RedisMarkerStore) HasPrompted(ctx context.Context, reservationID uint64) (bool, error) {
	n, err := s.client.Exists(ctx, markerKey(reservationID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkPrompted sets the marker with SET NX; only the first caller for
// a reservation observes true.
func (s *RedisMarkerStore) MarkPrompted(ctx context.Context, reservationID uint64) (bool, error) {
	return s.client.SetNX(ctx, markerKey(reservationID), "true", 0).Result()
}

// MemoryMarkerStore is the in-process fallback used when Redis is
// unreachable and in tests. Markers do not survive restarts, so a
// prompt may repeat after a redeploy; within a process lifetime it is
// still at-most-once.
type MemoryMarkerStore struct {
	mu     sync.Mutex
	marked map[uint64]struct{}
}

func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{marked: make(map[uint64]struct{})}
}

func (s *MemoryMarkerStore) HasPrompted(ctx context.Context, reservationID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.marked[reservationID]
	return ok, nil
}

func (s *MemoryMarkerStore) MarkPrompted(ctx context.Context, reservationID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.marked[reservationID]; ok {
		return false, nil
	}
	s.marked[reservationID] = struct{}{}
	return true, nil
}
