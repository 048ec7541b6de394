package repository

// Restaurants are created and maintained by management tooling outside
// this service, so this repository is read-only: the booking core only
// ever consults a restaurant's schedule and deposit settings.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sittara/table-reservation/internal/model"
)

// RestaurantRepo encapsulates all database queries related to
// restaurants. It depends on a sql.DB connection configured elsewhere.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB
// handle. This allows dependency injection of the database in tests
// and at startup.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

const restaurantCols = `id, name, description, address, cuisine, opening_hours,
       deposit_required, deposit_amount, auto_accept, peak_deposit_from, peak_deposit_until,
       is_active, created_at, updated_at`

// scanRestaurant reads one row into a model.Restaurant, unmarshalling
// the opening_hours JSON column into the week schedule.
func scanRestaurant(row interface{ Scan(...interface{}) error }) (*model.Restaurant, error) {
	var (
		rst       model.Restaurant
		desc      sql.NullString
		hoursJSON []byte
		peakFrom  sql.NullString
		peakUntil sql.NullString
	)
	err := row.Scan(&rst.ID, &rst.Name, &desc, &rst.Address, &rst.Cuisine, &hoursJSON,
		&rst.DepositRequired, &rst.DepositAmount, &rst.AutoAccept, &peakFrom, &peakUntil,
		&rst.IsActive, &rst.CreatedAt, &rst.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rst.Description = &d
	}
	if peakFrom.Valid {
		p := peakFrom.String
		rst.PeakDepositFrom = &p
	}
	if peakUntil.Valid {
		p := peakUntil.String
		rst.PeakDepositUntil = &p
	}
	rst.Hours = model.WeekSchedule{}
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &rst.Hours); err != nil {
			return nil, err
		}
	}
	return &rst, nil
}

// GetByID fetches an active restaurant by its ID. It returns
// ErrRestaurantNotFound if no active row exists.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	const q = `SELECT ` + restaurantCols + ` FROM restaurants WHERE id = ? AND is_active = 1`
	rst, err := scanRestaurant(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return rst, nil
}

// GetRestaurant adapts GetByID to the availability engine's
// ScheduleSource interface.
func (r *RestaurantRepo) GetRestaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	return r.GetByID(ctx, id)
}

// ListActive returns all active restaurants ordered by name, for the
// public browse endpoint.
func (r *RestaurantRepo) ListActive(ctx context.Context) ([]model.Restaurant, error) {
	const q = `SELECT ` + restaurantCols + ` FROM restaurants WHERE is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		rst, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
