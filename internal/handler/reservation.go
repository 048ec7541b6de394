package handler // customer reservation flow: create, deposit, cancel, list, repeat

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/config"
	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/payment"
	"github.com/sittara/table-reservation/internal/queue"
	"github.com/sittara/table-reservation/internal/repository"
	"github.com/sittara/table-reservation/internal/review"
	queue_publisher "github.com/sittara/table-reservation/internal/service"
)

// ReservationHandler orchestrates the booking write path. It owns the
// transaction in which the table row lock, stale-hold expiry, overlap
// check and insert happen atomically.
type ReservationHandler struct {
	Booking      config.BookingConfig
	Restaurants  *repository.RestaurantRepo
	Tables       *repository.TableRepo
	Reservations *repository.ReservationRepo
	Gateway      payment.Gateway
	Tracker      *review.Tracker
	PayTimeout   time.Duration
}

func NewReservationHandler(bk config.BookingConfig, restaurants *repository.RestaurantRepo, tables *repository.TableRepo, reservations *repository.ReservationRepo, gw payment.Gateway, tracker *review.Tracker, payTimeout time.Duration) *ReservationHandler {
	if restaurants == nil || tables == nil || reservations == nil || gw == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	if payTimeout <= 0 {
		payTimeout = 10 * time.Second
	}
	return &ReservationHandler{
		Booking:      bk,
		Restaurants:  restaurants,
		Tables:       tables,
		Reservations: reservations,
		Gateway:      gw,
		Tracker:      tracker,
		PayTimeout:   payTimeout,
	}
}

// ----- DTOs -----

type createReservationReq struct {
	RestaurantID   uint64  `json:"restaurant_id"`
	TableID        uint64  `json:"table_id"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	GuestCount     uint32  `json:"guest_count"`
	Occasion       *string `json:"occasion"`
	SpecialRequest *string `json:"special_request"`
	PaymentRef     string  `json:"payment_ref"`
	RepeatOf       *uint64 `json:"repeat_of"`
}

type reservationResp struct {
	ID              uint64    `json:"id"`
	Code            string    `json:"code"`
	QRToken         string    `json:"qr_token"`
	RestaurantID    uint64    `json:"restaurant_id"`
	TableID         uint64    `json:"table_id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	GuestCount      uint32    `json:"guest_count"`
	Status          string    `json:"status"`
	Occasion        *string   `json:"occasion,omitempty"`
	SpecialRequest  *string   `json:"special_request,omitempty"`
	DepositRequired bool      `json:"deposit_required"`
	DepositAmount   float64   `json:"deposit_amount,omitempty"`
	DepositPaid     bool      `json:"deposit_paid"`
	CancelReason    *string   `json:"cancel_reason,omitempty"`
	HasReview       bool      `json:"has_review"`
	CreatedAt       time.Time `json:"created_at"`

	RestaurantName string `json:"restaurant_name,omitempty"`
	TableNumber    uint32 `json:"table_number,omitempty"`
	TableZone      string `json:"table_zone,omitempty"`
}

func toReservationResp(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:              r.ID,
		Code:            r.Code,
		QRToken:         r.QRToken,
		RestaurantID:    r.RestaurantID,
		TableID:         r.TableID,
		Date:            r.Date,
		Time:            r.Time,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		GuestCount:      r.GuestCount,
		Status:          r.Status,
		Occasion:        r.Occasion,
		SpecialRequest:  r.SpecialRequest,
		DepositRequired: r.DepositRequired,
		DepositAmount:   r.DepositAmount,
		DepositPaid:     r.DepositPaid,
		CancelReason:    r.CancelReason,
		HasReview:       r.HasReview,
		CreatedAt:       r.CreatedAt,
	}
}

func toReservationDetailResp(d *repository.ReservationDetail) reservationResp {
	out := toReservationResp(&d.Reservation)
	out.RestaurantName = d.RestaurantName
	out.TableNumber = d.TableNumber
	out.TableZone = d.TableZone
	return out
}

// publishEvent ships a notification event without blocking the request.
func publishEvent(ev queue.NotificationEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishNotification(ctx, ev); err != nil {
			log.Printf("reservation: publish %s failed: %v", ev.Kind, err)
		}
	}()
}

func reservationEvent(kind string, r *model.Reservation, restaurantName string) queue.NotificationEvent {
	return queue.NotificationEvent{
		Kind:           kind,
		ReservationID:  r.ID,
		Code:           r.Code,
		UserID:         r.UserID,
		RestaurantID:   r.RestaurantID,
		RestaurantName: restaurantName,
		Date:           r.Date,
		Time:           r.Time,
		GuestCount:     r.GuestCount,
		DepositAmount:  r.DepositAmount,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/reservations. Inside one transaction the
// table row is locked FOR UPDATE, stale pending holds are expired, the
// overlap count is taken and the row inserted, so two concurrent
// requests for the same table and window cannot both succeed.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RestaurantID == 0 || req.TableID == 0 || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id, table_id, date and time are required"})
	}
	if req.GuestCount < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_count must be at least 1"})
	}

	ctx := c.Request().Context()
	rest, err := h.Restaurants.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	day, err := booking.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is in the past"})
	}
	if day.After(today.AddDate(0, 0, h.Booking.MaxAdvanceDays)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is beyond the booking horizon"})
	}
	sched := rest.Hours.ScheduleFor(day.Weekday())
	if sched.Closed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant is closed on that day"})
	}
	within, err := booking.WithinHours(sched, req.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !within {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time is outside opening hours"})
	}
	occupancy := time.Duration(h.Booking.OccupancyMinutes) * time.Minute
	start, end, err := booking.OccupancyWindow(req.Date, req.Time, sched, occupancy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !start.After(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time is in the past"})
	}

	terms := booking.ResolveDeposit(rest, req.Time)

	code, err := booking.NewCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "code generation failed"})
	}
	qrToken, err := booking.NewQRToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	res := &model.Reservation{
		Code:            code,
		QRToken:         qrToken,
		UserID:          userID,
		RestaurantID:    req.RestaurantID,
		TableID:         req.TableID,
		Date:            req.Date,
		Time:            req.Time,
		StartsAt:        start,
		EndsAt:          end,
		GuestCount:      req.GuestCount,
		Status:          model.StatusPending,
		Occasion:        req.Occasion,
		SpecialRequest:  req.SpecialRequest,
		DepositRequired: terms.Required,
		DepositAmount:   terms.Amount,
		RepeatOf:        req.RepeatOf,
	}

	// Settle the deposit before entering the critical section so the
	// table lock is never held across a gateway round-trip.
	if terms.Required && req.PaymentRef != "" {
		payCtx, cancel := context.WithTimeout(ctx, h.PayTimeout)
		paid, payErr := h.Gateway.ConfirmDeposit(payCtx, req.PaymentRef)
		cancel()
		if payErr != nil {
			log.Printf("reservation: deposit confirm failed for ref %s: %v", req.PaymentRef, payErr)
		}
		if paid {
			res.DepositPaid = true
			ref := req.PaymentRef
			res.PaymentRef = &ref
		}
	}
	// Auto-accept only applies once no deposit is outstanding.
	if rest.AutoAccept && (!terms.Required || res.DepositPaid) {
		res.Status = model.StatusConfirmed
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	tbl, err := h.Tables.LockTx(ctx, tx, req.TableID, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if tbl.IsBlocked {
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available"})
	}
	if tbl.Capacity < req.GuestCount {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party exceeds table capacity"})
	}

	cutoff := now.Add(-time.Duration(h.Booking.PendingTTLMinutes) * time.Minute)
	if err := h.Reservations.BookTx(ctx, tx, res, cutoff); err != nil {
		if errors.Is(err, repository.ErrTableUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table is already booked for that time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	publishEvent(reservationEvent(queue.KindReservationCreated, res, rest.Name))
	if res.Status == model.StatusConfirmed {
		publishEvent(reservationEvent(queue.KindReservationConfirmed, res, rest.Name))
	}

	resp := echo.Map{"reservation": toReservationResp(res)}

	// Deposit still owed: open a charge with the gateway and hand the
	// client what it needs to pay. A gateway failure leaves the
	// reservation pending; payment can be retried via deposit confirm.
	if terms.Required && !res.DepositPaid {
		payCtx, cancel := context.WithTimeout(ctx, h.PayTimeout)
		dep, depErr := h.Gateway.CreateDeposit(payCtx, terms.Amount, "USD", map[string]string{
			"reservation_code": res.Code,
		})
		cancel()
		if depErr != nil {
			log.Printf("reservation: deposit create failed for %s: %v", res.Code, depErr)
		} else {
			resp["deposit"] = dep
		}
	}

	return c.JSON(http.StatusCreated, resp)
}

// ConfirmDeposit handles POST /v1/reservations/:id/deposit/confirm.
// The gateway is the authority: only a verified authorization marks the
// deposit paid. A gateway timeout reads as not paid.
func (h *ReservationHandler) ConfirmDeposit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		PaymentRef string `json:"payment_ref"`
	}
	if err := c.Bind(&body); err != nil || body.PaymentRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_ref required"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByIDForUser(ctx, resID, userID)
	if err != nil {
		return reservationLookupError(c, err)
	}
	if !res.DepositRequired {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation requires no deposit"})
	}
	if res.DepositPaid {
		return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res)})
	}
	if res.Status != model.StatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not awaiting payment"})
	}

	payCtx, cancel := context.WithTimeout(ctx, h.PayTimeout)
	paid, payErr := h.Gateway.ConfirmDeposit(payCtx, body.PaymentRef)
	cancel()
	if payErr != nil || !paid {
		if payErr != nil {
			log.Printf("reservation: deposit confirm failed for ref %s: %v", body.PaymentRef, payErr)
		}
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "deposit payment not confirmed"})
	}
	recorded, err := h.Reservations.MarkDepositPaid(ctx, resID, body.PaymentRef)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}
	if !recorded {
		// The reservation left pending while the payment settled (e.g. a
		// concurrent cancellation). The charge is verified, so return the
		// guest's money instead of holding it against a dead booking.
		ref := body.PaymentRef
		go func() {
			refundCtx, cancel := context.WithTimeout(context.Background(), h.PayTimeout)
			defer cancel()
			if _, err := h.Gateway.RefundDeposit(refundCtx, ref, "reservation no longer pending"); err != nil {
				log.Printf("reservation: refund failed for ref %s: %v", ref, err)
			}
		}()
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is no longer awaiting payment; the deposit will be refunded"})
	}
	res.DepositPaid = true
	res.PaymentRef = &body.PaymentRef

	rest, restErr := h.Restaurants.GetByID(ctx, res.RestaurantID)
	if restErr == nil && rest.AutoAccept {
		if ok, err := h.Reservations.ConfirmGuarded(ctx, resID); err == nil && ok {
			res.Status = model.StatusConfirmed
			publishEvent(reservationEvent(queue.KindReservationConfirmed, res, rest.Name))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res)})
}

// Cancel handles POST /v1/reservations/:id/cancel for the owning user.
// A paid deposit triggers exactly one fire-and-forget refund request.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body)
	if body.Reason == "" {
		body.Reason = "cancelled by guest"
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByIDForUser(ctx, resID, userID)
	if err != nil {
		return reservationLookupError(c, err)
	}
	if !booking.CanCancel(res.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be cancelled"})
	}

	done, err := h.Reservations.CancelGuarded(ctx, resID, body.Reason)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
	if !done {
		// lost the race against a staff transition
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be cancelled"})
	}

	// The guarded update succeeded exactly once, so the refund and the
	// cancellation event fire at most once per reservation.
	refundPending := false
	if res.DepositPaid && res.PaymentRef != nil {
		refundPending = true
		ref := *res.PaymentRef
		go func() {
			refundCtx, cancel := context.WithTimeout(context.Background(), h.PayTimeout)
			defer cancel()
			if _, err := h.Gateway.RefundDeposit(refundCtx, ref, "reservation cancelled"); err != nil {
				log.Printf("reservation: refund failed for ref %s: %v", ref, err)
			}
		}()
	}

	restaurantName := ""
	if rest, restErr := h.Restaurants.GetByID(ctx, res.RestaurantID); restErr == nil {
		restaurantName = rest.Name
	}
	ev := reservationEvent(queue.KindReservationCancelled, res, restaurantName)
	ev.RefundPending = refundPending
	publishEvent(ev)

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/my-reservations. Each read doubles as a rating
// eligibility pass: completed, unreviewed visits get a one-time prompt.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	if h.Tracker != nil {
		observed := make([]repository.ReservationDetail, len(details))
		copy(observed, details)
		go h.Tracker.Observe(context.Background(), userID, observed)
	}
	out := make([]reservationResp, 0, len(details))
	for i := range details {
		out = append(out, toReservationDetailResp(&details[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/reservations/:id for the owning user.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.GetByIDForUser(c.Request().Context(), resID, userID)
	if err != nil {
		return reservationLookupError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res)})
}

// Repeat handles POST /v1/reservations/:id/repeat. It never books
// directly: it returns a pre-populated booking request so the client
// re-runs availability with fresh data before confirming.
func (h *ReservationHandler) Repeat(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.GetByIDForUser(c.Request().Context(), resID, userID)
	if err != nil {
		return reservationLookupError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"prefill": echo.Map{
			"restaurant_id":   res.RestaurantID,
			"table_id":        res.TableID,
			"time":            res.Time,
			"guest_count":     res.GuestCount,
			"occasion":        res.Occasion,
			"special_request": res.SpecialRequest,
			"repeat_of":       res.ID,
		},
	})
}

// reservationLookupError maps repository lookup failures for the
// owner-scoped endpoints.
func reservationLookupError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
}
