package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFor(t *testing.T) {
	s := WeekSchedule{
		"monday": {Open: "12:00", Close: "22:00"},
		"friday": {Open: "19:00", Close: "02:00"},
	}

	mon := s.ScheduleFor(time.Monday)
	assert.False(t, mon.Closed)
	assert.Equal(t, "12:00", mon.Open)

	fri := s.ScheduleFor(time.Friday)
	assert.Equal(t, "02:00", fri.Close)

	// days absent from the schedule are closed
	assert.True(t, s.ScheduleFor(time.Sunday).Closed)
	assert.True(t, WeekSchedule{}.ScheduleFor(time.Wednesday).Closed)
}

func TestReservationTerminal(t *testing.T) {
	for status, terminal := range map[string]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusArrived:   false,
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	} {
		r := Reservation{Status: status}
		assert.Equal(t, terminal, r.Terminal(), status)
	}
}
