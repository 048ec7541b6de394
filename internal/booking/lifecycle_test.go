package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sittara/table-reservation/internal/model"
)

func TestNextLegalTransitions(t *testing.T) {
	cases := []struct {
		from string
		ev   Event
		to   string
	}{
		{model.StatusPending, EventConfirm, model.StatusConfirmed},
		{model.StatusPending, EventCancel, model.StatusCancelled},
		{model.StatusConfirmed, EventArrive, model.StatusArrived},
		{model.StatusConfirmed, EventCancel, model.StatusCancelled},
		{model.StatusConfirmed, EventNoShow, model.StatusNoShow},
		{model.StatusArrived, EventComplete, model.StatusCompleted},
		{model.StatusArrived, EventNoShow, model.StatusNoShow},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.ev)
		require.NoError(t, err, "%s + %s", tc.from, tc.ev)
		assert.Equal(t, tc.to, got)
	}
}

func TestNextRejectsIllegalTransitions(t *testing.T) {
	illegal := []struct {
		from string
		ev   Event
	}{
		{model.StatusPending, EventArrive},
		{model.StatusPending, EventComplete},
		{model.StatusPending, EventNoShow},
		{model.StatusConfirmed, EventConfirm},
		{model.StatusConfirmed, EventComplete},
		{model.StatusArrived, EventConfirm},
		{model.StatusArrived, EventCancel},
	}
	for _, tc := range illegal {
		_, err := Next(tc.from, tc.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s + %s", tc.from, tc.ev)
	}
}

func TestTerminalStatesAcceptNoEvents(t *testing.T) {
	events := []Event{EventConfirm, EventArrive, EventComplete, EventNoShow, EventCancel}
	for _, from := range []string{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow} {
		for _, ev := range events {
			_, err := Next(from, ev)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s + %s", from, ev)
		}
	}
}

func TestParseEvent(t *testing.T) {
	for _, s := range []string{"confirm", "arrive", "complete", "no_show", "cancel"} {
		ev, ok := ParseEvent(s)
		assert.True(t, ok, s)
		assert.Equal(t, Event(s), ev)
	}
	_, ok := ParseEvent("reopen")
	assert.False(t, ok)
	_, ok = ParseEvent("")
	assert.False(t, ok)
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(model.StatusPending))
	assert.True(t, CanCancel(model.StatusConfirmed))
	assert.False(t, CanCancel(model.StatusArrived))
	assert.False(t, CanCancel(model.StatusCompleted))
	assert.False(t, CanCancel(model.StatusCancelled))
	assert.False(t, CanCancel(model.StatusNoShow))
}

func TestGuardConfirmDepositGate(t *testing.T) {
	unpaid := &model.Reservation{DepositRequired: true, DepositPaid: false}
	assert.ErrorIs(t, GuardConfirm(unpaid), ErrDepositUnpaid)

	paid := &model.Reservation{DepositRequired: true, DepositPaid: true}
	assert.NoError(t, GuardConfirm(paid))

	noDeposit := &model.Reservation{DepositRequired: false}
	assert.NoError(t, GuardConfirm(noDeposit))
}

func TestArrivalWindow(t *testing.T) {
	w := ArrivalWindow{Early: 15 * time.Minute, Grace: 20 * time.Minute}
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	assert.True(t, w.Contains(start, start))
	assert.True(t, w.Contains(start, start.Add(-15*time.Minute)))
	assert.True(t, w.Contains(start, start.Add(20*time.Minute)))
	assert.False(t, w.Contains(start, start.Add(-16*time.Minute)))
	assert.False(t, w.Contains(start, start.Add(21*time.Minute)))

	assert.False(t, w.NoShowEligible(start, start.Add(20*time.Minute)))
	assert.True(t, w.NoShowEligible(start, start.Add(21*time.Minute)))
}
