package handler // review endpoints: submit, list, stats

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/model"
	"github.com/sittara/table-reservation/internal/repository"
)

// ReviewHandler serves review creation and the public review reads.
type ReviewHandler struct {
	Reviews      *repository.ReviewRepo
	Reservations *repository.ReservationRepo
	Restaurants  *repository.RestaurantRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, reservations *repository.ReservationRepo, restaurants *repository.RestaurantRepo) *ReviewHandler {
	if reviews == nil || reservations == nil || restaurants == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews, Reservations: reservations, Restaurants: restaurants}
}

type createReviewReq struct {
	ReservationID  uint64  `json:"reservation_id"`
	Rating         uint8   `json:"rating"`
	FoodRating     uint8   `json:"food_rating"`
	ServiceRating  uint8   `json:"service_rating"`
	AmbianceRating uint8   `json:"ambiance_rating"`
	ValueRating    uint8   `json:"value_rating"`
	Comment        *string `json:"comment"`
}

type reviewResp struct {
	ID             uint64    `json:"id"`
	ReservationID  uint64    `json:"reservation_id"`
	RestaurantID   uint64    `json:"restaurant_id"`
	Rating         uint8     `json:"rating"`
	FoodRating     uint8     `json:"food_rating,omitempty"`
	ServiceRating  uint8     `json:"service_rating,omitempty"`
	AmbianceRating uint8     `json:"ambiance_rating,omitempty"`
	ValueRating    uint8     `json:"value_rating,omitempty"`
	Comment        *string   `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toReviewResp(r *model.Review) reviewResp {
	return reviewResp{
		ID:             r.ID,
		ReservationID:  r.ReservationID,
		RestaurantID:   r.RestaurantID,
		Rating:         r.Rating,
		FoodRating:     r.FoodRating,
		ServiceRating:  r.ServiceRating,
		AmbianceRating: r.AmbianceRating,
		ValueRating:    r.ValueRating,
		Comment:        r.Comment,
		CreatedAt:      r.CreatedAt,
	}
}

func validRating(r uint8) bool { return r >= 1 && r <= 5 }

// validSubRating allows 0 for "not given".
func validSubRating(r uint8) bool { return r <= 5 }

// Create handles POST /v1/reviews. The reservation must belong to the
// caller and be completed; a duplicate submission returns 409 with an
// informational message rather than an error the client must surface.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id required"})
	}
	if !validRating(req.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if !validSubRating(req.FoodRating) || !validSubRating(req.ServiceRating) ||
		!validSubRating(req.AmbianceRating) || !validSubRating(req.ValueRating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sub-ratings must be at most 5"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByIDForUser(ctx, req.ReservationID, userID)
	if err != nil {
		return reservationLookupError(c, err)
	}
	if res.Status != model.StatusCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only completed visits can be reviewed"})
	}

	rev := &model.Review{
		ReservationID:  req.ReservationID,
		RestaurantID:   res.RestaurantID,
		UserID:         userID,
		Rating:         req.Rating,
		FoodRating:     req.FoodRating,
		ServiceRating:  req.ServiceRating,
		AmbianceRating: req.AmbianceRating,
		ValueRating:    req.ValueRating,
		Comment:        req.Comment,
	}
	if err := h.Reviews.Create(ctx, rev); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "this visit has already been reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save review"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"review": toReviewResp(rev)})
}

// ListByRestaurant handles GET /v1/restaurants/:id/reviews with
// limit/offset paging.
func (h *ReviewHandler) ListByRestaurant(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	reviews, err := h.Reviews.ListByRestaurant(ctx, id, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reviews"})
	}
	out := make([]reviewResp, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResp(&reviews[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Stats handles GET /v1/restaurants/:id/reviews/stats.
func (h *ReviewHandler) Stats(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	stats, err := h.Reviews.Stats(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	return c.JSON(http.StatusOK, stats)
}
