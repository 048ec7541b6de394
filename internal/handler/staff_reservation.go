package handler // staff surface: lifecycle transitions, QR check-in, table blocking

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/payment"
	"github.com/sittara/table-reservation/internal/queue"
	"github.com/sittara/table-reservation/internal/repository"
)

// StaffHandler drives reservation lifecycle transitions on behalf of
// restaurant personnel.
type StaffHandler struct {
	Restaurants  *repository.RestaurantRepo
	Tables       *repository.TableRepo
	Reservations *repository.ReservationRepo
	Gateway      payment.Gateway
	Arrival      booking.ArrivalWindow
	PayTimeout   time.Duration
}

func NewStaffHandler(restaurants *repository.RestaurantRepo, tables *repository.TableRepo, reservations *repository.ReservationRepo, gw payment.Gateway, arrival booking.ArrivalWindow, payTimeout time.Duration) *StaffHandler {
	if restaurants == nil || tables == nil || reservations == nil || gw == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	if payTimeout <= 0 {
		payTimeout = 10 * time.Second
	}
	return &StaffHandler{
		Restaurants:  restaurants,
		Tables:       tables,
		Reservations: reservations,
		Gateway:      gw,
		Arrival:      arrival,
		PayTimeout:   payTimeout,
	}
}

// Transition handles POST /v1/staff/reservations/:id/transition with a
// body of {"event": "confirm|arrive|complete|no_show|cancel"}. The
// state machine is validated up front and then re-enforced by the
// guarded conditional UPDATE, so a race with another transition
// surfaces as a 409 instead of a silent double-apply.
func (h *StaffHandler) Transition(c echo.Context) error {
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Event  string `json:"event"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, ok := booking.ParseEvent(body.Event)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown event"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	target, err := booking.Next(res.Status, ev)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}

	now := time.Now().UTC()
	var applied bool
	switch ev {
	case booking.EventConfirm:
		if err := booking.GuardConfirm(res); err != nil {
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "deposit must be paid before confirmation"})
		}
		applied, err = h.Reservations.ConfirmGuarded(ctx, resID)
	case booking.EventArrive:
		if !h.Arrival.Contains(res.StartsAt, now) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "outside the arrival window"})
		}
		applied, err = h.Reservations.UpdateStatusGuarded(ctx, resID, model.StatusArrived, model.StatusConfirmed)
	case booking.EventComplete:
		applied, err = h.Reservations.UpdateStatusGuarded(ctx, resID, model.StatusCompleted, model.StatusArrived)
	case booking.EventNoShow:
		if !h.Arrival.NoShowEligible(res.StartsAt, now) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "grace period has not elapsed"})
		}
		applied, err = h.Reservations.UpdateStatusGuarded(ctx, resID, model.StatusNoShow, model.StatusConfirmed, model.StatusArrived)
	case booking.EventCancel:
		reason := body.Reason
		if reason == "" {
			reason = "cancelled by staff"
		}
		applied, err = h.Reservations.CancelGuarded(ctx, resID, reason)
		if err == nil && applied && res.DepositPaid && res.PaymentRef != nil {
			ref := *res.PaymentRef
			go func() {
				refundCtx, cancel := context.WithTimeout(context.Background(), h.PayTimeout)
				defer cancel()
				if _, err := h.Gateway.RefundDeposit(refundCtx, ref, "cancelled by staff"); err != nil {
					log.Printf("staff: refund failed for ref %s: %v", ref, err)
				}
			}()
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to apply transition"})
	}
	if !applied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}

	res.Status = target
	switch ev {
	case booking.EventConfirm, booking.EventCancel:
		kind := queue.KindReservationConfirmed
		if ev == booking.EventCancel {
			kind = queue.KindReservationCancelled
		}
		restaurantName := ""
		if rest, restErr := h.Restaurants.GetByID(ctx, res.RestaurantID); restErr == nil {
			restaurantName = rest.Name
		}
		publishEvent(reservationEvent(kind, res, restaurantName))
	}

	return c.JSON(http.StatusOK, echo.Map{"reservation": toReservationResp(res)})
}

// Checkin handles GET /v1/staff/checkin/:token, resolving a scanned QR
// payload into the reservation it belongs to. can_arrive tells the
// scanner whether the arrive transition would currently succeed.
func (h *StaffHandler) Checkin(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	res, err := h.Reservations.GetByQRToken(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown check-in token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	canArrive := res.Status == model.StatusConfirmed && h.Arrival.Contains(res.StartsAt, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{
		"reservation": toReservationResp(res),
		"can_arrive":  canArrive,
	})
}

// SetTableBlocked handles POST /v1/staff/restaurants/:id/tables/:tableID/block
// with {"blocked": true|false}. Availability stops offering a blocked
// table immediately; existing reservations stay for staff to handle.
func (h *StaffHandler) SetTableBlocked(c echo.Context) error {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	tableID, ok := parseIDParam(c, "tableID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var body struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Tables.SetBlocked(c.Request().Context(), tableID, restaurantID, body.Blocked); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"table_id": tableID, "blocked": body.Blocked})
}
