package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/model"
)

type fakeSchedules struct{ r *model.Restaurant }

func (f fakeSchedules) GetRestaurant(_ context.Context, _ uint64) (*model.Restaurant, error) {
	return f.r, nil
}

type fakeTables struct{ ts []model.Table }

func (f fakeTables) ListTables(_ context.Context, _ uint64) ([]model.Table, error) {
	return f.ts, nil
}

type fakeOccupancy struct{ wins []Window }

func (f fakeOccupancy) ActiveWindows(_ context.Context, _ uint64, _, _ time.Time) ([]Window, error) {
	return f.wins, nil
}

func allWeek(open, close string) model.WeekSchedule {
	days := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	s := make(model.WeekSchedule, len(days))
	for _, d := range days {
		s[d] = model.DaySchedule{Open: open, Close: close}
	}
	return s
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newEngine(r *model.Restaurant, tables []model.Table, wins []Window, now time.Time) *Engine {
	return New(
		Config{Now: fixedNow(now)},
		fakeSchedules{r: r},
		fakeTables{ts: tables},
		fakeOccupancy{wins: wins},
	)
}

func slotTimes(slots []model.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func TestComputeTimeSlotsBlockedByExistingSeating(t *testing.T) {
	// One capacity-4 table with a 19:00-20:30 seating. Every slot whose
	// 90 minute window intersects it must disappear.
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	tables := []model.Table{{ID: 10, Number: 1, Capacity: 4}}
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	wins := []Window{{TableID: 10, Start: day.Add(19 * time.Hour), End: day.Add(20*time.Hour + 30*time.Minute)}}

	e := newEngine(rest, tables, wins, time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))
	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"12:00", "12:30", "13:00", "13:30", "14:00", "14:30",
		"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
		"20:30", "21:00", "21:30",
	}, slotTimes(slots))
}

func TestComputeTimeSlotsClosedDay(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: model.WeekSchedule{}}
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil,
		time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))

	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 2)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestComputeTimeSlotsOvernightHours(t *testing.T) {
	// 19:00-02:00: the candidate list crosses midnight and the
	// post-midnight slots belong to the same service day.
	rest := &model.Restaurant{ID: 1, Hours: allWeek("19:00", "02:00")}
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil,
		time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))

	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 2)
	require.NoError(t, err)

	times := slotTimes(slots)
	require.Len(t, times, 14)
	assert.Equal(t, "19:00", times[0])
	assert.Equal(t, "00:00", times[10])
	assert.Equal(t, "01:30", times[13])
}

func TestComputeTimeSlotsSkipsElapsedTimes(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	now := time.Date(2026, 9, 12, 18, 10, 0, 0, time.UTC)
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil, now)

	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 2)
	require.NoError(t, err)

	times := slotTimes(slots)
	require.NotEmpty(t, times)
	assert.Equal(t, "18:30", times[0])
	assert.Equal(t, []string{"18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30"}, times)
}

func TestComputeTimeSlotsDepositAnnotation(t *testing.T) {
	from, until := "18:00", "21:00"
	rest := &model.Restaurant{
		ID:               1,
		Hours:            allWeek("12:00", "22:00"),
		PeakDepositFrom:  &from,
		PeakDepositUntil: &until,
	}
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil,
		time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))

	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 2)
	require.NoError(t, err)

	byTime := make(map[string]model.TimeSlot, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s
	}
	assert.False(t, byTime["12:00"].RequiresDeposit)
	assert.Zero(t, byTime["12:00"].DepositAmount)
	assert.True(t, byTime["18:00"].RequiresDeposit)
	assert.Equal(t, float64(booking.DefaultDepositAmount), byTime["18:00"].DepositAmount)
	assert.True(t, byTime["20:30"].RequiresDeposit)
	assert.False(t, byTime["21:00"].RequiresDeposit)
}

func TestComputeTimeSlotsNoAdequateTable(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	tables := []model.Table{
		{ID: 10, Number: 1, Capacity: 4},
		{ID: 11, Number: 2, Capacity: 8, IsBlocked: true},
	}
	e := newEngine(rest, tables, nil, time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))

	// party of 6 exceeds every non-blocked table
	slots, err := e.ComputeTimeSlots(context.Background(), 1, "2026-09-12", 6)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeTimeSlotsValidation(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil, now)
	ctx := context.Background()

	_, err := e.ComputeTimeSlots(ctx, 1, "2026-09-12", 0)
	assert.ErrorIs(t, err, ErrPartySize)

	_, err = e.ComputeTimeSlots(ctx, 1, "2026-09-09", 2)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = e.ComputeTimeSlots(ctx, 1, "2026-11-10", 2)
	assert.ErrorIs(t, err, ErrTooFarAhead)

	_, err = e.ComputeTimeSlots(ctx, 1, "09/12/2026", 2)
	assert.ErrorIs(t, err, booking.ErrBadDate)
}

func TestAvailableTablesExcludesOverlapping(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	tables := []model.Table{
		{ID: 10, Number: 1, Capacity: 2},
		{ID: 11, Number: 2, Capacity: 4},
	}
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	wins := []Window{{TableID: 11, Start: day.Add(19 * time.Hour), End: day.Add(20*time.Hour + 30*time.Minute)}}
	e := newEngine(rest, tables, wins, time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	free, err := e.AvailableTables(ctx, 1, "2026-09-12", "19:30", 2)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, uint64(10), free[0].ID)
	assert.Equal(t, model.TableAvailable, free[0].Status)

	// outside the occupied window both tables are free
	free, err = e.AvailableTables(ctx, 1, "2026-09-12", "17:30", 2)
	require.NoError(t, err)
	assert.Len(t, free, 2)

	// nobody seats a party of 6
	free, err = e.AvailableTables(ctx, 1, "2026-09-12", "17:30", 6)
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestAvailableTablesOvernightSeating(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("19:00", "02:00")}
	tables := []model.Table{{ID: 10, Number: 1, Capacity: 4}}
	// existing seating starting past midnight, i.e. on the next
	// calendar day of the same service day
	nextDay := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	wins := []Window{{TableID: 10, Start: nextDay.Add(30 * time.Minute), End: nextDay.Add(2 * time.Hour)}}
	e := newEngine(rest, tables, wins, time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	free, err := e.AvailableTables(ctx, 1, "2026-09-12", "00:30", 2)
	require.NoError(t, err)
	assert.Empty(t, free)

	free, err = e.AvailableTables(ctx, 1, "2026-09-12", "19:00", 2)
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestAvailableTablesRejectsOutsideOpeningHours(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil,
		time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// free table, but the restaurant does not seat anyone at 03:00
	_, err := e.AvailableTables(ctx, 1, "2026-09-12", "03:00", 2)
	assert.ErrorIs(t, err, ErrOutsideHours)

	// closing time itself is not a seating time
	_, err = e.AvailableTables(ctx, 1, "2026-09-12", "22:00", 2)
	assert.ErrorIs(t, err, ErrOutsideHours)

	// overnight hours accept the post-midnight stretch but nothing
	// between close and open
	night := &model.Restaurant{ID: 1, Hours: allWeek("19:00", "02:00")}
	e = newEngine(night, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil,
		time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC))

	free, err := e.AvailableTables(ctx, 1, "2026-09-12", "01:30", 2)
	require.NoError(t, err)
	assert.Len(t, free, 1)

	_, err = e.AvailableTables(ctx, 1, "2026-09-12", "12:00", 2)
	assert.ErrorIs(t, err, ErrOutsideHours)
}

func TestAvailableTablesRejectsElapsedStart(t *testing.T) {
	rest := &model.Restaurant{ID: 1, Hours: allWeek("12:00", "22:00")}
	now := time.Date(2026, 9, 12, 18, 10, 0, 0, time.UTC)
	e := newEngine(rest, []model.Table{{ID: 10, Number: 1, Capacity: 4}}, nil, now)

	_, err := e.AvailableTables(context.Background(), 1, "2026-09-12", "18:00", 2)
	assert.ErrorIs(t, err, ErrPastDate)
}
