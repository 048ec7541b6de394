// Package router wires HTTP routes to handlers and the middleware each
// route group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/handler"
	"github.com/sittara/table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication and no
// caching. Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login
// and refresh live under /v1/auth without a session; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("CUSTOMER", "STAFF"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse and availability
// endpoints. cacheMW is the Redis response cache; availability reads
// are advisory snapshots, so short-TTL caching is acceptable there too.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, av *handler.AvailabilityHandler, rv *handler.ReviewHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1", cacheMW)
	g.GET("/restaurants", p.ListRestaurants)
	g.GET("/restaurants/:id", p.GetRestaurant)
	g.GET("/restaurants/:id/tables", p.ListTables)
	g.GET("/restaurants/:id/timeslots", av.TimeSlots)
	g.GET("/restaurants/:id/availability", av.AvailableTables)
	g.GET("/restaurants/:id/reviews", rv.ListByRestaurant)
	g.GET("/restaurants/:id/reviews/stats", rv.Stats)
}
