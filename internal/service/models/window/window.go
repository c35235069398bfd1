package window

import "time"

// Window is the half-open calendar range [From, To) used to select orders
// for one export run. Both bounds are midnight dates in the store's local
// timezone; nothing is persisted between runs.
type Window struct {
	From time.Time
	To   time.Time
}

// Calculate derives the export window from the current time: From is
// "yesterday minus lookbackWeeks weeks", To is today. Pure function of its
// arguments.
func Calculate(now time.Time, lookbackWeeks int) Window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{
		From: today.AddDate(0, 0, -1).AddDate(0, 0, -7*lookbackWeeks),
		To:   today,
	}
}
