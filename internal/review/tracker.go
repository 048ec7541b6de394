package review

import (
	"context"
	"log"
	"time"

	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/repository"
)

// Dispatcher delivers the rating prompt to the guest. Delivery is
// fire-and-forget and may be at-least-once; the marker store is what
// makes the prompt itself at-most-once.
type Dispatcher interface {
	PromptRating(ctx context.Context, userID, reservationID, restaurantID uint64, restaurantName string) error
}

// Tracker watches a user's reservation list for completed, unreviewed
// visits and prompts for a rating exactly once per reservation. It is
// driven by the my-reservations read path (focus/poll/pull-to-refresh
// on clients), not by a timer of its own.
type Tracker struct {
	markers    MarkerStore
	dispatcher Dispatcher
	grace      time.Duration
	now        func() time.Time
}

// NewTracker builds a Tracker. grace is the settle window: a candidate
// created less than grace ago is skipped so a booking racing through
// states (test flows, rapid staff action) is not prompted prematurely.
func NewTracker(markers MarkerStore, dispatcher Dispatcher, grace time.Duration) *Tracker {
	if grace <= 0 {
		grace = 60 * time.Second
	}
	return &Tracker{markers: markers, dispatcher: dispatcher, grace: grace, now: time.Now}
}

// Observe runs one eligibility pass over the user's reservations.
// Candidates are completed and unreviewed; the most recently created
// one is considered. All failures fail open toward "do not prompt this
// cycle": a missed prompt is recoverable from the reservation list,
// a duplicate prompt is the defect being prevented.
func (t *Tracker) Observe(ctx context.Context, userID uint64, reservations []repository.ReservationDetail) {
	var candidate *repository.ReservationDetail
	for i := range reservations {
		r := &reservations[i]
		if r.Status != model.StatusCompleted || r.HasReview {
			continue
		}
		if candidate == nil || r.CreatedAt.After(candidate.CreatedAt) {
			candidate = r
		}
	}
	if candidate == nil {
		return
	}
	if t.now().UTC().Sub(candidate.CreatedAt) < t.grace {
		return // not settled yet
	}
	prompted, err := t.markers.HasPrompted(ctx, candidate.ID)
	if err != nil {
		log.Printf("rating-tracker: marker read failed for reservation %d: %v", candidate.ID, err)
		return
	}
	if prompted {
		return
	}
	// Write the marker before dispatching so an interrupted prompt or a
	// concurrent re-run cannot cause a second notification.
	won, err := t.markers.MarkPrompted(ctx, candidate.ID)
	if err != nil {
		log.Printf("rating-tracker: marker write failed for reservation %d: %v", candidate.ID, err)
		return
	}
	if !won {
		return // another check got there first
	}
	if err := t.dispatcher.PromptRating(ctx, userID, candidate.ID, candidate.RestaurantID, candidate.RestaurantName); err != nil {
		log.Printf("rating-tracker: dispatch failed for reservation %d: %v", candidate.ID, err)
	}
}
