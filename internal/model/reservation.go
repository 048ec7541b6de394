package model

import "time"

// Reservation status values. The lifecycle is
// pending -> confirmed -> arrived -> completed, with side branches to
// cancelled (from pending/confirmed) and no_show (from confirmed/arrived).
// completed, cancelled and no_show are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusArrived   = "arrived"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Reservation records a user's booking of a table for a date and time.
// The occupancy window [StartsAt, EndsAt) is precomputed in UTC when
// the reservation is created so that overlap checks and overnight
// slots need no re-derivation. Deposit fields capture the terms that
// applied to the slot at booking time.
//
// Fields:
//  ID              – primary key identifier.
//  Code            – short human-readable lookup code.
//  QRToken         – opaque random token encoded into the QR payload;
//                    unguessable so check-in scanners cannot be enumerated.
//  UserID          – user who made the reservation.
//  RestaurantID    – restaurant being booked.
//  TableID         – assigned table.
//  Date            – calendar day of the seating ("2006-01-02").
//  Time            – time of day of the seating ("15:04").
//  StartsAt        – UTC start of the occupancy window.
//  EndsAt          – UTC end of the occupancy window.
//  GuestCount      – party size (≥ 1, ≤ table capacity).
//  Status          – lifecycle state, see constants above.
//  Occasion        – optional occasion label (birthday, anniversary, ...).
//  SpecialRequest  – optional free-text request.
//  DepositRequired – the slot required a deposit at booking time.
//  DepositAmount   – deposit amount (0 when not required).
//  DepositPaid     – whether the deposit has been authorized.
//  PaymentRef      – opaque payment gateway reference (nullable).
//  CancelReason    – reason recorded on cancellation (nullable).
//  RepeatOf        – source reservation when re-booked (nullable).
//  HasReview       – derived: a review exists for this reservation.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	Code            string    // reservations.code
	QRToken         string    // reservations.qr_token
	UserID          uint64    // reservations.user_id
	RestaurantID    uint64    // reservations.restaurant_id
	TableID         uint64    // reservations.table_id
	Date            string    // reservations.date
	Time            string    // reservations.time
	StartsAt        time.Time // reservations.starts_at (UTC)
	EndsAt          time.Time // reservations.ends_at (UTC)
	GuestCount      uint32    // reservations.guest_count
	Status          string    // reservations.status
	Occasion        *string   // reservations.occasion (nullable)
	SpecialRequest  *string   // reservations.special_request (nullable)
	DepositRequired bool      // reservations.deposit_required
	DepositAmount   float64   // reservations.deposit_amount
	DepositPaid     bool      // reservations.deposit_paid
	PaymentRef      *string   // reservations.payment_ref (nullable)
	CancelReason    *string   // reservations.cancel_reason (nullable)
	RepeatOf        *uint64   // reservations.repeat_of (nullable)
	HasReview       bool      // derived via EXISTS against reviews
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// Terminal reports whether the reservation can no longer transition.
func (r *Reservation) Terminal() bool {
	switch r.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
