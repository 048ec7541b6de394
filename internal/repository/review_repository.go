package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sittara/table-reservation/internal/model"
)

// ReviewRepo provides persistence for reviews. The unique index on
// reviews.reservation_id is the authority behind the "at most one
// review per reservation" invariant; the repository only translates
// the duplicate-key failure into ErrDuplicateReview.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and populates its generated ID. A second
// review for the same reservation returns ErrDuplicateReview.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO reviews
	    (reservation_id, restaurant_id, user_id, rating,
	     food_rating, service_rating, ambiance_rating, value_rating, comment)
	    VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		rev.ReservationID, rev.RestaurantID, rev.UserID, rev.Rating,
		rev.FoodRating, rev.ServiceRating, rev.AmbianceRating, rev.ValueRating, rev.Comment)
	if err != nil {
		// MySQL duplicate entry on the reservation_id unique index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	// Query back the database-assigned timestamp
	const sel = `SELECT created_at FROM reviews WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, rev.ID).Scan(&rev.CreatedAt)
}

// HasReview reports whether a review exists for the reservation.
func (r *ReviewRepo) HasReview(ctx context.Context, reservationID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE reservation_id = ?)`,
		reservationID).Scan(&exists)
	return exists, err
}

// ListByRestaurant returns reviews of a restaurant, newest first, with
// limit/offset paging.
func (r *ReviewRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, limit, offset int) ([]model.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT id, reservation_id, restaurant_id, user_id, rating,
	                  food_rating, service_rating, ambiance_rating, value_rating, comment, created_at
	             FROM reviews WHERE restaurant_id = ?
	            ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		var (
			rev     model.Review
			comment sql.NullString
		)
		if err := rows.Scan(&rev.ID, &rev.ReservationID, &rev.RestaurantID, &rev.UserID, &rev.Rating,
			&rev.FoodRating, &rev.ServiceRating, &rev.AmbianceRating, &rev.ValueRating,
			&comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			v := comment.String
			rev.Comment = &v
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats aggregates the rating distribution and averages for a
// restaurant. Sub-rating averages ignore zero (not-given) values.
func (r *ReviewRepo) Stats(ctx context.Context, restaurantID uint64) (*model.ReviewStats, error) {
	stats := &model.ReviewStats{Distribution: map[uint8]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	const q = `SELECT COUNT(*),
	                  COALESCE(AVG(rating), 0),
	                  COALESCE(AVG(NULLIF(food_rating, 0)), 0),
	                  COALESCE(AVG(NULLIF(service_rating, 0)), 0),
	                  COALESCE(AVG(NULLIF(ambiance_rating, 0)), 0),
	                  COALESCE(AVG(NULLIF(value_rating, 0)), 0)
	             FROM reviews WHERE restaurant_id = ?`
	if err := r.db.QueryRowContext(ctx, q, restaurantID).Scan(
		&stats.Count, &stats.AverageRating, &stats.AverageFood,
		&stats.AverageService, &stats.AverageAmbiance, &stats.AverageValue); err != nil {
		return nil, err
	}
	const distQ = `SELECT rating, COUNT(*) FROM reviews WHERE restaurant_id = ? GROUP BY rating`
	rows, err := r.db.QueryContext(ctx, distQ, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rating uint8
			n      int64
		)
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, err
		}
		stats.Distribution[rating] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
