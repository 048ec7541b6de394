package model

import "time"

// DaySchedule describes the operating hours for a single weekday.
// Times are "HH:MM" strings in the restaurant's local service day.
// When Close is earlier than Open the service runs past midnight and
// Close refers to the following calendar day.
//
// Fields:
//  Open   – opening time of day ("12:00").
//  Close  – closing time of day ("22:00", or "02:00" for overnight).
//  Closed – the restaurant does not operate on this weekday.
type DaySchedule struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeekSchedule maps time.Weekday names (lowercase, "monday"...) to the
// schedule for that day. Days missing from the map are treated as closed.
type WeekSchedule map[string]DaySchedule

// Restaurant represents a bookable venue. Opening hours are stored as
// JSON in the `opening_hours` column and unmarshalled into a
// WeekSchedule. Deposit settings provide the restaurant-level default
// consulted by the deposit policy; the peak band, when set, marks the
// time-of-day range in which a deposit is always required regardless
// of the default.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name of the restaurant.
//  Description      – optional description shown in browse endpoints.
//  Address          – street address.
//  Cuisine          – cuisine label used for browse filtering.
//  Hours            – per-weekday operating schedule.
//  DepositRequired  – restaurant-level default for deposit gating.
//  DepositAmount    – default deposit amount in currency units.
//  AutoAccept       – new reservations skip the pending staff-review step
//                     when no deposit is outstanding.
//  PeakDepositFrom  – start of the peak deposit band (nullable "HH:MM").
//  PeakDepositUntil – end of the peak deposit band (nullable "HH:MM").
//  IsActive         – whether the restaurant accepts bookings.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Restaurant struct {
	ID               uint64       // restaurants.id
	Name             string       // restaurants.name
	Description      *string      // restaurants.description (nullable)
	Address          string       // restaurants.address
	Cuisine          string       // restaurants.cuisine
	Hours            WeekSchedule // restaurants.opening_hours (JSON)
	DepositRequired  bool         // restaurants.deposit_required
	DepositAmount    float64      // restaurants.deposit_amount
	AutoAccept       bool         // restaurants.auto_accept
	PeakDepositFrom  *string      // restaurants.peak_deposit_from (nullable TIME)
	PeakDepositUntil *string      // restaurants.peak_deposit_until (nullable TIME)
	IsActive         bool         // restaurants.is_active
	CreatedAt        time.Time    // restaurants.created_at
	UpdatedAt        time.Time    // restaurants.updated_at
}

// ScheduleFor returns the schedule for the given weekday. Missing
// entries are reported as closed days.
func (s WeekSchedule) ScheduleFor(day time.Weekday) DaySchedule {
	names := [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	d, ok := s[names[day]]
	if !ok {
		return DaySchedule{Closed: true}
	}
	return d
}
