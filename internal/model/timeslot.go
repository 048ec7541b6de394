package model

// TimeSlot is a candidate seating time produced by the availability
// engine. It is computed on demand and never stored. The deposit terms
// are always present on the slot (never a bare time string) so clients
// do not need to normalize heterogeneous shapes.
type TimeSlot struct {
	Time            string  `json:"time"`
	RequiresDeposit bool    `json:"requires_deposit"`
	DepositAmount   float64 `json:"deposit_amount"`
}
