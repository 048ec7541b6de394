package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/repository"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []uint64
	err   error
}

func (d *fakeDispatcher) PromptRating(_ context.Context, _, reservationID, _ uint64, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, reservationID)
	return d.err
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type failingMarkerStore struct{}

func (failingMarkerStore) HasPrompted(context.Context, uint64) (bool, error) {
	return false, errors.New("store down")
}

func (failingMarkerStore) MarkPrompted(context.Context, uint64) (bool, error) {
	return false, errors.New("store down")
}

func detail(id uint64, status string, hasReview bool, created time.Time) repository.ReservationDetail {
	return repository.ReservationDetail{
		Reservation: model.Reservation{
			ID:           id,
			RestaurantID: 7,
			Status:       status,
			HasReview:    hasReview,
			CreatedAt:    created,
		},
		RestaurantName: "Trattoria",
	}
}

func settled() time.Time { return time.Now().UTC().Add(-time.Hour) }

func TestObservePromptsExactlyOnce(t *testing.T) {
	d := &fakeDispatcher{}
	tr := NewTracker(NewMemoryMarkerStore(), d, time.Minute)
	list := []repository.ReservationDetail{detail(42, model.StatusCompleted, false, settled())}

	for i := 0; i < 5; i++ {
		tr.Observe(context.Background(), 1, list)
	}

	require.Equal(t, 1, d.callCount())
	assert.Equal(t, uint64(42), d.calls[0])
}

func TestObserveSkipsUnsettledCandidate(t *testing.T) {
	d := &fakeDispatcher{}
	tr := NewTracker(NewMemoryMarkerStore(), d, time.Minute)
	list := []repository.ReservationDetail{
		detail(42, model.StatusCompleted, false, time.Now().UTC().Add(-10*time.Second)),
	}

	tr.Observe(context.Background(), 1, list)
	assert.Zero(t, d.callCount())
}

func TestObserveIgnoresNonCandidates(t *testing.T) {
	d := &fakeDispatcher{}
	tr := NewTracker(NewMemoryMarkerStore(), d, time.Minute)
	list := []repository.ReservationDetail{
		detail(1, model.StatusPending, false, settled()),
		detail(2, model.StatusConfirmed, false, settled()),
		detail(3, model.StatusCancelled, false, settled()),
		detail(4, model.StatusCompleted, true, settled()), // already reviewed
	}

	tr.Observe(context.Background(), 1, list)
	assert.Zero(t, d.callCount())
}

func TestObservePicksNewestCompletedVisit(t *testing.T) {
	d := &fakeDispatcher{}
	tr := NewTracker(NewMemoryMarkerStore(), d, time.Minute)
	older := settled().Add(-24 * time.Hour)
	list := []repository.ReservationDetail{
		detail(1, model.StatusCompleted, false, older),
		detail(2, model.StatusCompleted, false, settled()),
	}

	tr.Observe(context.Background(), 1, list)

	require.Equal(t, 1, d.callCount())
	assert.Equal(t, uint64(2), d.calls[0])
}

func TestObserveFailsOpenOnMarkerErrors(t *testing.T) {
	d := &fakeDispatcher{}
	tr := NewTracker(failingMarkerStore{}, d, time.Minute)
	list := []repository.ReservationDetail{detail(42, model.StatusCompleted, false, settled())}

	tr.Observe(context.Background(), 1, list)
	assert.Zero(t, d.callCount())
}

func TestObserveDoesNotRetryAfterDispatchFailure(t *testing.T) {
	// The marker is written before dispatching, so a failed delivery is
	// not retried; a missed prompt beats a duplicate one.
	d := &fakeDispatcher{err: errors.New("broker down")}
	tr := NewTracker(NewMemoryMarkerStore(), d, time.Minute)
	list := []repository.ReservationDetail{detail(42, model.StatusCompleted, false, settled())}

	tr.Observe(context.Background(), 1, list)
	tr.Observe(context.Background(), 1, list)

	assert.Equal(t, 1, d.callCount())
}

func TestMemoryMarkerStoreWriteIfAbsent(t *testing.T) {
	s := NewMemoryMarkerStore()
	ctx := context.Background()

	prompted, err := s.HasPrompted(ctx, 9)
	require.NoError(t, err)
	assert.False(t, prompted)

	won, err := s.MarkPrompted(ctx, 9)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.MarkPrompted(ctx, 9)
	require.NoError(t, err)
	assert.False(t, won)

	prompted, err = s.HasPrompted(ctx, 9)
	require.NoError(t, err)
	assert.True(t, prompted)
}
