package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sittara/table-reservation/internal/model"
)

func newMockDB(t *testing.T) (*ReservationRepo, *TableRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationRepo(db), NewTableRepo(db), mock
}

func tableRow(id, restaurantID uint64) *sqlmock.Rows {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "restaurant_id", "number", "capacity", "shape", "zone",
		"pos_x", "pos_y", "width", "height", "is_blocked", "created_at", "updated_at",
	}).AddRow(id, restaurantID, 4, 4, "rect", "main", 10, 20, 80, 80, false, now, now)
}

func sampleReservation() *model.Reservation {
	return &model.Reservation{
		Code:         "QZKM4P7T",
		QRToken:      "deadbeef",
		UserID:       9,
		RestaurantID: 1,
		TableID:      3,
		Date:         "2026-09-12",
		Time:         "19:00",
		StartsAt:     time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC),
		EndsAt:       time.Date(2026, 9, 12, 20, 30, 0, 0, time.UTC),
		GuestCount:   2,
		Status:       model.StatusPending,
	}
}

// The booking critical section: lock the table row, expire stale
// pending holds, re-check overlap, insert. A concurrent reservation
// already holding an overlapping window must surface as
// ErrTableUnavailable before any insert is attempted.
func TestBookTxOverlapRejected(t *testing.T) {
	reservations, tables, mock := newMockDB(t)
	res := sampleReservation()
	cutoff := time.Date(2026, 9, 12, 18, 45, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM restaurant_tables WHERE id = ? AND restaurant_id = ? FOR UPDATE`)).
		WithArgs(res.TableID, res.RestaurantID).
		WillReturnRows(tableRow(res.TableID, res.RestaurantID))
	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'cancelled', cancel_reason = 'pending hold expired'`)).
		WithArgs(res.TableID, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations`)).
		WithArgs(res.TableID, res.EndsAt, res.StartsAt).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := reservations.DB().BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = tables.LockTx(ctx, tx, res.TableID, res.RestaurantID)
	require.NoError(t, err)

	err = reservations.BookTx(ctx, tx, res, cutoff)
	assert.ErrorIs(t, err, ErrTableUnavailable)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookTxInsertsWhenFree(t *testing.T) {
	reservations, tables, mock := newMockDB(t)
	res := sampleReservation()
	cutoff := time.Date(2026, 9, 12, 18, 45, 0, 0, time.UTC)
	created := time.Date(2026, 9, 12, 19, 1, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(res.TableID, res.RestaurantID).
		WillReturnRows(tableRow(res.TableID, res.RestaurantID))
	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'cancelled', cancel_reason = 'pending hold expired'`)).
		WithArgs(res.TableID, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations`)).
		WithArgs(res.TableID, res.EndsAt, res.StartsAt).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM reservations WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := reservations.DB().BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = tables.LockTx(ctx, tx, res.TableID, res.RestaurantID)
	require.NoError(t, err)

	require.NoError(t, reservations.BookTx(ctx, tx, res, cutoff))
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint64(42), res.ID)
	assert.Equal(t, created, res.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTxUnknownTable(t *testing.T) {
	reservations, tables, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(uint64(99), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "restaurant_id", "number", "capacity", "shape", "zone",
			"pos_x", "pos_y", "width", "height", "is_blocked", "created_at", "updated_at",
		}))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := reservations.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tables.LockTx(ctx, tx, 99, 1)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

// MarkDepositPaid only records a payment while the reservation is
// still pending. A reservation cancelled while the charge settled
// leaves the statement matching zero rows, which callers take as the
// signal to refund instead.
func TestMarkDepositPaidGuard(t *testing.T) {
	reservations, _, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`SET deposit_paid = 1, payment_ref = ?`)).
		WithArgs("dep_abc", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	recorded, err := reservations.MarkDepositPaid(ctx, 5, "dep_abc")
	require.NoError(t, err)
	assert.True(t, recorded)

	// Reservation left pending before the update ran.
	mock.ExpectExec(regexp.QuoteMeta(`SET deposit_paid = 1, payment_ref = ?`)).
		WithArgs("dep_abc", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	recorded, err = reservations.MarkDepositPaid(ctx, 5, "dep_abc")
	require.NoError(t, err)
	assert.False(t, recorded)

	assert.NoError(t, mock.ExpectationsWereMet())
}
