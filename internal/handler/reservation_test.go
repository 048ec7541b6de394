package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sittara/table-reservation/internal/config"
	"github.com/sittara/table-reservation/internal/payment"
	"github.com/sittara/table-reservation/internal/repository"
)

// confirmingGateway always verifies the charge and records refund
// requests so tests can assert the money came back.
type confirmingGateway struct {
	refunds chan string
}

func (confirmingGateway) CreateDeposit(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payment.Deposit, error) {
	return nil, payment.ErrUnavailable
}

func (confirmingGateway) ConfirmDeposit(ctx context.Context, reference string) (bool, error) {
	return true, nil
}

func (g confirmingGateway) RefundDeposit(ctx context.Context, reference, reason string) (*payment.Refund, error) {
	g.refunds <- reference
	return &payment.Refund{ID: "rf_1", Status: "accepted"}, nil
}

var reservationColNames = []string{
	"id", "code", "qr_token", "user_id", "restaurant_id", "table_id",
	"date", "time", "starts_at", "ends_at", "guest_count", "status",
	"occasion", "special_request", "deposit_required", "deposit_amount",
	"deposit_paid", "payment_ref", "cancel_reason", "repeat_of",
	"has_review", "created_at", "updated_at",
}

func pendingDepositRow(id, userID uint64) *sqlmock.Rows {
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(reservationColNames).AddRow(
		id, "QZKM4P7T", "tok", userID, 1, 3,
		"2026-09-12", "19:00", start, start.Add(90*time.Minute), 2, "pending",
		nil, nil, true, 150.0,
		false, nil, nil, nil,
		false, now, now,
	)
}

// A deposit confirmation that arrives after the reservation was
// cancelled must not mark the dead booking paid. The verified charge
// is refunded and the client told the hold is gone.
func TestConfirmDepositRefundsWhenNoLongerPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	reservations := repository.NewReservationRepo(db)
	gw := confirmingGateway{refunds: make(chan string, 1)}
	h := NewReservationHandler(config.BookingConfig{},
		repository.NewRestaurantRepo(db), repository.NewTableRepo(db),
		reservations, gw, nil, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations r WHERE r.id = ?`)).
		WithArgs(uint64(5)).
		WillReturnRows(pendingDepositRow(5, 9))
	// The reservation was cancelled between the read and this update,
	// so the guarded statement matches nothing.
	mock.ExpectExec(regexp.QuoteMeta(`SET deposit_paid = 1, payment_ref = ?`)).
		WithArgs("dep_abc", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations/5/deposit/confirm",
		strings.NewReader(`{"payment_ref":"dep_abc"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(9))

	require.NoError(t, h.ConfirmDeposit(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "refunded")
	assert.NotContains(t, rec.Body.String(), `"deposit_paid":true`)

	select {
	case ref := <-gw.refunds:
		assert.Equal(t, "dep_abc", ref)
	case <-time.After(2 * time.Second):
		t.Fatal("refund was never requested")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
