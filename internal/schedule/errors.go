package schedule

import "errors"

// Validation and resolution failures. Callers match them with errors.Is;
// every one of them is fatal to the operation that produced it.
var (
	ErrInvalidWeekdayName = errors.New("invalid weekday name")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrNoWorkingDayFound  = errors.New("no working day found")
)
