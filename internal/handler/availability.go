package handler // availability reads: time-slot picker and free-table picker

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/availability"
	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/repository"
)

// AvailabilityHandler serves slot and table availability queries.
type AvailabilityHandler struct {
	Engine         *availability.Engine
	RestaurantRepo *repository.RestaurantRepo
}

func NewAvailabilityHandler(engine *availability.Engine, restaurants *repository.RestaurantRepo) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine, RestaurantRepo: restaurants}
}

// availabilityError maps engine validation failures onto HTTP codes.
func availabilityError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, availability.ErrPastDate),
		errors.Is(err, availability.ErrTooFarAhead),
		errors.Is(err, availability.ErrPartySize),
		errors.Is(err, availability.ErrOutsideHours),
		errors.Is(err, booking.ErrBadDate),
		errors.Is(err, booking.ErrBadTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
}

func partySizeParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil {
		return 0
	}
	return n
}

// TimeSlots handles GET /v1/restaurants/:id/timeslots?date=&party_size=.
// A closed day returns an empty items array, not an error.
func (h *AvailabilityHandler) TimeSlots(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	slots, err := h.Engine.ComputeTimeSlots(c.Request().Context(), id, date, partySizeParam(c))
	if err != nil {
		return availabilityError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "items": slots})
}

// AvailableTables handles
// GET /v1/restaurants/:id/availability?date=&time=&party_size=.
// Tables that cannot seat the party are omitted entirely.
func (h *AvailabilityHandler) AvailableTables(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	timeOfDay := c.QueryParam("time")
	if date == "" || timeOfDay == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	tables, err := h.Engine.AvailableTables(c.Request().Context(), id, date, timeOfDay, partySizeParam(c))
	if err != nil {
		return availabilityError(c, err)
	}
	out := make([]PublicTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, toPublicTable(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "time": timeOfDay, "items": out})
}
