package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sittara/table-reservation/internal/availability"
	"github.com/sittara/table-reservation/internal/model"
)

// activeStatuses are the reservation states that hold a table. Both
// pending and confirmed reservations block the slot: a conservative
// choice that prevents double-booking at the cost of short-lived false
// unavailability from abandoned pending requests, which are expired by
// ExpireStalePendingTx.
const activeStatuses = `'pending','confirmed','arrived'`

// ReservationRepo provides persistence for reservations. All
// timestamp fields are stored in UTC. Methods suffixed Tx run inside a
// caller-owned transaction: the handler locks the table row, then
// BookTx expires stale holds, re-checks overlap and inserts under that
// lock.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ExpireStalePendingTx cancels pending, unpaid reservations for a
// table that were created before the cutoff. Abandoned checkout flows
// would otherwise hold the table forever. Returns the number of
// reservations expired.
func (r *ReservationRepo) ExpireStalePendingTx(ctx context.Context, tx *sql.Tx, tableID uint64, cutoff time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations
		    SET status = 'cancelled', cancel_reason = 'pending hold expired'
		  WHERE table_id = ? AND status = 'pending' AND deposit_paid = 0 AND created_at <= ?`,
		tableID, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountOverlappingTx counts active reservations on the table whose
// occupancy window intersects [start, end). Two windows overlap iff
// existingStart < requestedEnd AND requestedStart < existingEnd. The
// caller must already hold the table row lock so the count cannot be
// invalidated before the insert commits.
func (r *ReservationRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, tableID uint64, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations
	            WHERE table_id = ? AND status IN (` + activeStatuses + `)
	              AND starts_at < ? AND ? < ends_at`
	var n int
	err := tx.QueryRowContext(ctx, q, tableID, end.UTC(), start.UTC()).Scan(&n)
	return n, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback the transaction
// and is responsible for having verified the overlap invariant first.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	    (code, qr_token, user_id, restaurant_id, table_id, date, time, starts_at, ends_at,
	     guest_count, status, occasion, special_request,
	     deposit_required, deposit_amount, deposit_paid, payment_ref, repeat_of)
	    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	result, err := tx.ExecContext(ctx, q,
		res.Code, res.QRToken, res.UserID, res.RestaurantID, res.TableID,
		res.Date, res.Time, res.StartsAt.UTC(), res.EndsAt.UTC(),
		res.GuestCount, res.Status, res.Occasion, res.SpecialRequest,
		res.DepositRequired, res.DepositAmount, res.DepositPaid, res.PaymentRef, res.RepeatOf)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back timestamps and defaults
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// BookTx runs the write side of the booking critical section inside
// the caller's transaction: expire stale pending holds on the table,
// re-check the overlap invariant, insert. Returns ErrTableUnavailable
// when an active reservation already holds an overlapping window. The
// caller must hold the table row lock.
func (r *ReservationRepo) BookTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, pendingCutoff time.Time) error {
	if _, err := r.ExpireStalePendingTx(ctx, tx, res.TableID, pendingCutoff); err != nil {
		return err
	}
	n, err := r.CountOverlappingTx(ctx, tx, res.TableID, res.StartsAt, res.EndsAt)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrTableUnavailable
	}
	return r.CreateTx(ctx, tx, res)
}

const reservationCols = `r.id, r.code, r.qr_token, r.user_id, r.restaurant_id, r.table_id,
       r.date, r.time, r.starts_at, r.ends_at, r.guest_count, r.status,
       r.occasion, r.special_request, r.deposit_required, r.deposit_amount,
       r.deposit_paid, r.payment_ref, r.cancel_reason, r.repeat_of,
       EXISTS(SELECT 1 FROM reviews v WHERE v.reservation_id = r.id) AS has_review,
       r.created_at, r.updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var (
		res      model.Reservation
		occasion sql.NullString
		request  sql.NullString
		payRef   sql.NullString
		reason   sql.NullString
		repeatOf sql.NullInt64
	)
	err := row.Scan(&res.ID, &res.Code, &res.QRToken, &res.UserID, &res.RestaurantID, &res.TableID,
		&res.Date, &res.Time, &res.StartsAt, &res.EndsAt, &res.GuestCount, &res.Status,
		&occasion, &request, &res.DepositRequired, &res.DepositAmount,
		&res.DepositPaid, &payRef, &reason, &repeatOf,
		&res.HasReview, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if occasion.Valid {
		v := occasion.String
		res.Occasion = &v
	}
	if request.Valid {
		v := request.String
		res.SpecialRequest = &v
	}
	if payRef.Valid {
		v := payRef.String
		res.PaymentRef = &v
	}
	if reason.Valid {
		v := reason.String
		res.CancelReason = &v
	}
	if repeatOf.Valid {
		v := uint64(repeatOf.Int64)
		res.RepeatOf = &v
	}
	return &res, nil
}

// GetByID fetches a reservation by id. Returns ErrReservationNotFound
// when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations r WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// GetByIDForUser fetches a reservation and enforces ownership. A
// reservation belonging to another user yields ErrForbidden.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Reservation, error) {
	res, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	return res, nil
}

// GetByQRToken resolves the opaque QR payload presented at check-in.
func (r *ReservationRepo) GetByQRToken(ctx context.Context, token string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations r WHERE r.qr_token = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ReservationDetail pairs a reservation with the restaurant and table
// attributes clients render in lists. It is returned by ListByUser.
type ReservationDetail struct {
	model.Reservation
	RestaurantName string `json:"restaurant_name"`
	TableNumber    uint32 `json:"table_number"`
	TableZone      string `json:"table_zone"`
}

// ListByUser returns all reservations of the user, newest first, with
// restaurant and table info joined in. When no reservations exist an
// empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT ` + reservationCols + `, rs.name, t.number, t.zone
	             FROM reservations r
	             JOIN restaurants rs ON rs.id = r.restaurant_id
	             JOIN restaurant_tables t ON t.id = r.table_id
	            WHERE r.user_id = ?
	            ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var (
			d        ReservationDetail
			occasion sql.NullString
			request  sql.NullString
			payRef   sql.NullString
			reason   sql.NullString
			repeatOf sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Code, &d.QRToken, &d.UserID, &d.RestaurantID, &d.TableID,
			&d.Date, &d.Time, &d.StartsAt, &d.EndsAt, &d.GuestCount, &d.Status,
			&occasion, &request, &d.DepositRequired, &d.DepositAmount,
			&d.DepositPaid, &payRef, &reason, &repeatOf,
			&d.HasReview, &d.CreatedAt, &d.UpdatedAt,
			&d.RestaurantName, &d.TableNumber, &d.TableZone); err != nil {
			return nil, err
		}
		if occasion.Valid {
			v := occasion.String
			d.Occasion = &v
		}
		if request.Valid {
			v := request.String
			d.SpecialRequest = &v
		}
		if payRef.Valid {
			v := payRef.String
			d.PaymentRef = &v
		}
		if reason.Valid {
			v := reason.String
			d.CancelReason = &v
		}
		if repeatOf.Valid {
			v := uint64(repeatOf.Int64)
			d.RepeatOf = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ActiveWindows implements the availability engine's OccupancySource:
// the occupancy intervals of all active reservations of a restaurant
// intersecting [from, to).
func (r *ReservationRepo) ActiveWindows(ctx context.Context, restaurantID uint64, from, to time.Time) ([]availability.Window, error) {
	const q = `SELECT table_id, starts_at, ends_at FROM reservations
	            WHERE restaurant_id = ? AND status IN (` + activeStatuses + `)
	              AND starts_at < ? AND ? < ends_at`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var wins []availability.Window
	for rows.Next() {
		var w availability.Window
		if err := rows.Scan(&w.TableID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		wins = append(wins, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wins, nil
}

// UpdateStatusGuarded transitions a reservation with the allowed
// source states encoded in the statement itself. Zero rows affected
// means the reservation was not in an allowed state (or does not
// exist); callers translate that into an invalid-transition error.
func (r *ReservationRepo) UpdateStatusGuarded(ctx context.Context, id uint64, to string, allowedFrom ...string) (bool, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(allowedFrom)), ",")
	args := make([]interface{}, 0, len(allowedFrom)+2)
	args = append(args, to, id)
	for _, s := range allowedFrom {
		args = append(args, s)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ConfirmGuarded applies the confirm transition with the deposit gate
// enforced in the statement: a deposit-requiring reservation can only
// confirm once deposit_paid is set.
func (r *ReservationRepo) ConfirmGuarded(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'confirmed'
		  WHERE id = ? AND status = 'pending' AND (deposit_required = 0 OR deposit_paid = 1)`,
		id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelGuarded cancels a reservation while it is still pending or
// confirmed and records the reason. Terminal and arrived states are
// untouched (zero rows).
func (r *ReservationRepo) CancelGuarded(ctx context.Context, id uint64, reason string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled', cancel_reason = ?
		  WHERE id = ? AND status IN ('pending','confirmed')`,
		reason, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkDepositPaid records a verified deposit authorization while the
// reservation is still pending. Zero rows affected means the
// reservation left pending concurrently (cancelled or expired while
// the payment settled); the caller must refund the verified charge
// instead of recording it.
func (r *ReservationRepo) MarkDepositPaid(ctx context.Context, id uint64, paymentRef string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET deposit_paid = 1, payment_ref = ?
		  WHERE id = ? AND status = 'pending'`,
		paymentRef, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
