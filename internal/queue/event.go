// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into user-facing
// notification records.
package queue

// Notification event kinds published by the booking core.
const (
	KindReservationCreated   = "reservation.created"
	KindReservationConfirmed = "reservation.confirmed"
	KindReservationCancelled = "reservation.cancelled"
	KindRatingPrompt         = "rating.prompt"
)

// NotificationEvent is published on reservation lifecycle milestones
// and rating prompts. It carries enough information for downstream
// consumers to notify the guest without querying the primary database.
// Refund bookkeeping rides along on cancellation events so the
// notification can mention the pending refund.
type NotificationEvent struct {
	Kind           string  `json:"kind"`
	ReservationID  uint64  `json:"reservation_id"`
	Code           string  `json:"code"`
	UserID         uint64  `json:"user_id"`
	RestaurantID   uint64  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	GuestCount     uint32  `json:"guest_count"`
	DepositAmount  float64 `json:"deposit_amount,omitempty"`
	RefundPending  bool    `json:"refund_pending,omitempty"`
	OccurredAt     string  `json:"occurred_at"`
}
