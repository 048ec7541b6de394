package booking

import "github.com/sittara/table-reservation/internal/model"

// DefaultDepositAmount applies when a slot or restaurant requires a
// deposit but carries no configured amount.
const DefaultDepositAmount = 150

// DepositTerms is the resolved deposit requirement for one time slot.
type DepositTerms struct {
	Required bool
	Amount   float64
}

// ResolveDeposit determines whether a seating at the given time of day
// requires a pre-paid deposit. Resolution order: slot-level peak band
// override > restaurant-level default > none. The function is pure and
// never returns a negative amount.
func ResolveDeposit(r *model.Restaurant, timeOfDay string) DepositTerms {
	amount := r.DepositAmount
	if amount <= 0 {
		amount = DefaultDepositAmount
	}
	if inPeakBand(r, timeOfDay) {
		return DepositTerms{Required: true, Amount: amount}
	}
	if r.DepositRequired {
		return DepositTerms{Required: true, Amount: amount}
	}
	return DepositTerms{}
}

// inPeakBand reports whether the time of day falls inside the
// restaurant's peak deposit band. A band wrapping midnight
// (from > until) covers [from, 24:00) plus [00:00, until).
func inPeakBand(r *model.Restaurant, timeOfDay string) bool {
	if r.PeakDepositFrom == nil || r.PeakDepositUntil == nil {
		return false
	}
	t, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false
	}
	from, err := ParseTimeOfDay(*r.PeakDepositFrom)
	if err != nil {
		return false
	}
	until, err := ParseTimeOfDay(*r.PeakDepositUntil)
	if err != nil {
		return false
	}
	if from <= until {
		return t >= from && t < until
	}
	return t >= from || t < until
}
