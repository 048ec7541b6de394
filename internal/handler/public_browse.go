package handler // public browsing: restaurants, floor-map tables, hours

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/repository"
)

// PublicHandler aggregates repositories for unauthenticated browsing.
type PublicHandler struct {
	RestaurantRepo *repository.RestaurantRepo
	TableRepo      *repository.TableRepo
}

// PublicRestaurant is a restaurant as exposed on browse endpoints.
// Internal flags (auto_accept, is_active) are filtered out.
type PublicRestaurant struct {
	ID              uint64             `json:"id"`
	Name            string             `json:"name"`
	Description     *string            `json:"description,omitempty"`
	Address         string             `json:"address"`
	Cuisine         string             `json:"cuisine"`
	Hours           model.WeekSchedule `json:"opening_hours"`
	DepositRequired bool               `json:"deposit_required"`
	DepositAmount   float64            `json:"deposit_amount,omitempty"`
}

// PublicTable carries the floor-map attributes of a table. Status is
// "blocked" for maintenance-blocked tables and empty otherwise; the
// date-specific projection comes from the availability endpoints.
type PublicTable struct {
	ID       uint64 `json:"id"`
	Number   uint32 `json:"number"`
	Capacity uint32 `json:"capacity"`
	Shape    string `json:"shape"`
	Zone     string `json:"zone"`
	PosX     int32  `json:"pos_x"`
	PosY     int32  `json:"pos_y"`
	Width    int32  `json:"width"`
	Height   int32  `json:"height"`
	Status   string `json:"status,omitempty"`
}

func toPublicRestaurant(r *model.Restaurant) PublicRestaurant {
	out := PublicRestaurant{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Address:         r.Address,
		Cuisine:         r.Cuisine,
		Hours:           r.Hours,
		DepositRequired: r.DepositRequired,
	}
	if r.DepositRequired {
		out.DepositAmount = r.DepositAmount
	}
	return out
}

func toPublicTable(t model.Table) PublicTable {
	out := PublicTable{
		ID:       t.ID,
		Number:   t.Number,
		Capacity: t.Capacity,
		Shape:    t.Shape,
		Zone:     t.Zone,
		PosX:     t.PosX,
		PosY:     t.PosY,
		Width:    t.Width,
		Height:   t.Height,
	}
	if t.IsBlocked {
		out.Status = model.TableBlocked
	} else if t.Status != "" {
		out.Status = t.Status
	}
	return out
}

// ListRestaurants handles GET /v1/restaurants.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	ctx := c.Request().Context()
	restaurants, err := h.RestaurantRepo.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicRestaurant, 0, len(restaurants))
	for i := range restaurants {
		out = append(out, toPublicRestaurant(&restaurants[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetRestaurant handles GET /v1/restaurants/:id.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rst, err := h.RestaurantRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPublicRestaurant(rst))
}

// ListTables handles GET /v1/restaurants/:id/tables. It returns every
// table with its floor-map attributes; blocked tables are included so
// clients can render them greyed out.
func (h *PublicHandler) ListTables(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.RestaurantRepo.GetByID(ctx, id); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tables, err := h.TableRepo.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, toPublicTable(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
