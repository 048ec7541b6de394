// Package availability computes free time slots and free tables for a
// (restaurant, date, time, party size) tuple. The engine reads through
// narrow source interfaces so the slot math can be exercised without a
// database; the repositories implement the interfaces in production.
// Engine reads are advisory snapshots; the reservation write path
// re-validates overlap inside its own transaction.
package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/model"
)

// Validation failures surfaced to the request boundary. They are never
// retried automatically.
var (
	ErrPastDate     = errors.New("date is in the past")
	ErrTooFarAhead  = errors.New("date is beyond the booking horizon")
	ErrPartySize    = errors.New("party size must be at least 1")
	ErrOutsideHours = errors.New("time is outside opening hours")
)

// Window is one table's occupancy interval taken by an active
// (pending, confirmed or arrived) reservation.
type Window struct {
	TableID uint64
	Start   time.Time
	End     time.Time
}

// ScheduleSource resolves restaurants and their opening hours.
type ScheduleSource interface {
	GetRestaurant(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// TableSource lists the bookable tables of a restaurant.
type TableSource interface {
	ListTables(ctx context.Context, restaurantID uint64) ([]model.Table, error)
}

// OccupancySource reports the active occupancy windows of a restaurant
// intersecting [from, to).
type OccupancySource interface {
	ActiveWindows(ctx context.Context, restaurantID uint64, from, to time.Time) ([]Window, error)
}

// Config carries the engine tunables. Now is injectable for tests and
// defaults to time.Now.
type Config struct {
	OccupancyMinutes    int
	SlotIntervalMinutes int
	MaxAdvanceDays      int
	Now                 func() time.Time
}

// Engine answers "what times/tables are free" without ever offering a
// double-booked table.
type Engine struct {
	cfg       Config
	schedules ScheduleSource
	tables    TableSource
	occupancy OccupancySource
}

// New constructs an Engine. Zero config fields fall back to the
// production defaults (90 minute occupancy, 30 minute interval, 60 day
// horizon).
func New(cfg Config, schedules ScheduleSource, tables TableSource, occupancy OccupancySource) *Engine {
	if cfg.OccupancyMinutes <= 0 {
		cfg.OccupancyMinutes = 90
	}
	if cfg.SlotIntervalMinutes <= 0 {
		cfg.SlotIntervalMinutes = 30
	}
	if cfg.MaxAdvanceDays <= 0 {
		cfg.MaxAdvanceDays = 60
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, schedules: schedules, tables: tables, occupancy: occupancy}
}

// OccupancyDuration exposes the configured per-seating hold length.
func (e *Engine) OccupancyDuration() time.Duration {
	return time.Duration(e.cfg.OccupancyMinutes) * time.Minute
}

// validateDate enforces the booking horizon. day is the UTC midnight
// of the requested service day.
func (e *Engine) validateDate(day time.Time) error {
	now := e.cfg.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return ErrPastDate
	}
	if day.After(today.AddDate(0, 0, e.cfg.MaxAdvanceDays)) {
		return ErrTooFarAhead
	}
	return nil
}

// ComputeTimeSlots returns the seating times on the given service day
// for which at least one adequate table is free for the full occupancy
// window, each slot annotated with its deposit terms. A closed day
// yields an empty slice. Slots are ascending by time of day and the
// result is deterministic for a fixed reservation snapshot.
func (e *Engine) ComputeTimeSlots(ctx context.Context, restaurantID uint64, date string, partySize int) ([]model.TimeSlot, error) {
	if partySize < 1 {
		return nil, ErrPartySize
	}
	day, err := booking.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if err := e.validateDate(day); err != nil {
		return nil, err
	}
	rest, err := e.schedules.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	sched := rest.Hours.ScheduleFor(day.Weekday())
	if sched.Closed {
		return []model.TimeSlot{}, nil
	}
	open, err := booking.ParseTimeOfDay(sched.Open)
	if err != nil {
		return nil, err
	}
	closeAt, err := booking.ParseTimeOfDay(sched.Close)
	if err != nil {
		return nil, err
	}
	if closeAt <= open {
		closeAt += 24 * 60 // close past midnight
	}

	candidates, err := e.candidateTables(ctx, restaurantID, partySize)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []model.TimeSlot{}, nil
	}
	byTable, err := e.windowsByTable(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}

	now := e.cfg.Now().UTC()
	occupancy := e.OccupancyDuration()
	slots := make([]model.TimeSlot, 0)
	for t := open; t < closeAt; t += e.cfg.SlotIntervalMinutes {
		start := day.Add(time.Duration(t) * time.Minute)
		if !start.After(now) {
			continue // today's already-passed times
		}
		if !anyTableFree(candidates, byTable, start, start.Add(occupancy)) {
			continue
		}
		terms := booking.ResolveDeposit(rest, booking.FormatTimeOfDay(t))
		slot := model.TimeSlot{Time: booking.FormatTimeOfDay(t), RequiresDeposit: terms.Required}
		if terms.Required {
			slot.DepositAmount = terms.Amount
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// AvailableTables returns the tables that can seat the party at the
// requested time, annotated with the derived "available" status.
// Undersized tables are excluded entirely rather than marked
// unavailable; an oversized party therefore yields an empty slice, not
// an error.
func (e *Engine) AvailableTables(ctx context.Context, restaurantID uint64, date, timeOfDay string, partySize int) ([]model.Table, error) {
	if partySize < 1 {
		return nil, ErrPartySize
	}
	day, err := booking.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if err := e.validateDate(day); err != nil {
		return nil, err
	}
	rest, err := e.schedules.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	sched := rest.Hours.ScheduleFor(day.Weekday())
	if sched.Closed {
		return []model.Table{}, nil
	}
	within, err := booking.WithinHours(sched, timeOfDay)
	if err != nil {
		return nil, err
	}
	if !within {
		return nil, ErrOutsideHours
	}
	start, end, err := booking.OccupancyWindow(date, timeOfDay, sched, e.OccupancyDuration())
	if err != nil {
		return nil, err
	}
	if !start.After(e.cfg.Now().UTC()) {
		return nil, ErrPastDate
	}
	candidates, err := e.candidateTables(ctx, restaurantID, partySize)
	if err != nil {
		return nil, err
	}
	byTable, err := e.windowsByTable(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}
	free := make([]model.Table, 0, len(candidates))
	for _, tbl := range candidates {
		if tableFree(byTable[tbl.ID], start, end) {
			tbl.Status = model.TableAvailable
			free = append(free, tbl)
		}
	}
	return free, nil
}

// candidateTables filters to non-blocked tables with enough capacity,
// sorted by table number for deterministic output.
func (e *Engine) candidateTables(ctx context.Context, restaurantID uint64, partySize int) ([]model.Table, error) {
	all, err := e.tables.ListTables(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Table, 0, len(all))
	for _, t := range all {
		if t.IsBlocked || int(t.Capacity) < partySize {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// windowsByTable loads the service day's active occupancy windows,
// padded by a day on each side so overnight seatings and windows
// spilling over midnight are included.
func (e *Engine) windowsByTable(ctx context.Context, restaurantID uint64, day time.Time) (map[uint64][]Window, error) {
	wins, err := e.occupancy.ActiveWindows(ctx, restaurantID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 2))
	if err != nil {
		return nil, err
	}
	byTable := make(map[uint64][]Window, len(wins))
	for _, w := range wins {
		byTable[w.TableID] = append(byTable[w.TableID], w)
	}
	return byTable, nil
}

func tableFree(wins []Window, start, end time.Time) bool {
	for _, w := range wins {
		if booking.Overlaps(w.Start, w.End, start, end) {
			return false
		}
	}
	return true
}

func anyTableFree(tables []model.Table, byTable map[uint64][]Window, start, end time.Time) bool {
	for _, t := range tables {
		if tableFree(byTable[t.ID], start, end) {
			return true
		}
	}
	return false
}
