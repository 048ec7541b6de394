package model

import "time"

// Review is a guest's rating of a completed visit. At most one review
// may exist per reservation; the uniqueness constraint on
// reviews.reservation_id is what makes a reservation's has_review flag
// flip exactly once.
//
// Fields:
//  ID             – primary key identifier.
//  ReservationID  – reviewed reservation (unique).
//  RestaurantID   – restaurant the visit took place at.
//  UserID         – author of the review.
//  Rating         – overall rating 1..5.
//  FoodRating     – optional sub-rating 1..5 (0 when not given).
//  ServiceRating  – optional sub-rating 1..5.
//  AmbianceRating – optional sub-rating 1..5.
//  ValueRating    – optional sub-rating 1..5.
//  Comment        – optional free-text comment.
//  CreatedAt      – creation timestamp.
type Review struct {
	ID             uint64    // reviews.id
	ReservationID  uint64    // reviews.reservation_id (unique)
	RestaurantID   uint64    // reviews.restaurant_id
	UserID         uint64    // reviews.user_id
	Rating         uint8     // reviews.rating
	FoodRating     uint8     // reviews.food_rating
	ServiceRating  uint8     // reviews.service_rating
	AmbianceRating uint8     // reviews.ambiance_rating
	ValueRating    uint8     // reviews.value_rating
	Comment        *string   // reviews.comment (nullable)
	CreatedAt      time.Time // reviews.created_at
}

// ReviewStats aggregates the reviews of a restaurant for display on
// browse and detail screens.
type ReviewStats struct {
	Count           int             `json:"count"`
	AverageRating   float64         `json:"average_rating"`
	AverageFood     float64         `json:"average_food_rating"`
	AverageService  float64         `json:"average_service_rating"`
	AverageAmbiance float64         `json:"average_ambiance_rating"`
	AverageValue    float64         `json:"average_value_rating"`
	Distribution    map[uint8]int64 `json:"distribution"`
}
