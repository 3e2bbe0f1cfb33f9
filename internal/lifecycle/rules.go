package lifecycle

// Rules are the thresholds the gates evaluate against. They are built from configuration
// by the caller.
type Rules struct {
	MinimumAttendancePercentage int
	PassingPercentage           float64
	TicketDetailsRequired       bool
}

func DefaultRules() Rules {
	return Rules{
		MinimumAttendancePercentage: 80,
		PassingPercentage:           60,
		TicketDetailsRequired:       true,
	}
}
