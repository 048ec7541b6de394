package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/handler"
	"github.com/sittara/table-reservation/internal/middleware"
)

// RegisterStaff registers the staff-only endpoints under /v1/staff:
// lifecycle transitions, QR check-in and table maintenance blocking.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STAFF"),
	)
	g.POST("/reservations/:id/transition", h.Transition)
	g.GET("/checkin/:token", h.Checkin)
	g.POST("/restaurants/:id/tables/:tableID/block", h.SetTableBlocked)
}
