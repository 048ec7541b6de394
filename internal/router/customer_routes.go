package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/handler"
	"github.com/sittara/table-reservation/internal/middleware"
)

// RegisterCustomer registers the customer booking endpoints under /v1.
// All routes require a valid JWT with the CUSTOMER role; ownership of
// the targeted reservation is enforced inside the handlers.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, rv *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/reservations", h.Create)
	g.GET("/my-reservations", h.List)
	g.GET("/reservations/:id", h.Get)
	g.POST("/reservations/:id/cancel", h.Cancel)
	g.POST("/reservations/:id/deposit/confirm", h.ConfirmDeposit)
	g.POST("/reservations/:id/repeat", h.Repeat)

	g.POST("/reviews", rv.Create)
}
