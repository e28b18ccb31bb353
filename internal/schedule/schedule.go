package schedule

import (
	"fmt"
	"time"

	"github.com/aensidhe/telegram-muter/pkg/dateutil"
)

// TimezoneAuto selects the host's local timezone at call time
const TimezoneAuto = "auto"

// maxResolveDays bounds the working-day search so a configuration that never
// yields a working day fails instead of looping forever
const maxResolveDays = 3650

// Schedule is a fully resolved working-day schedule. Immutable after
// construction and safe for concurrent use; resolution is a pure function of
// the date and the schedule.
type Schedule struct {
	Name               string
	StartOfDay         TimeOfDay
	EndOfDay           *TimeOfDay
	Timezone           string
	Weekends           WeekdaySet
	WorkingWeekends    DateExceptionSet
	NonworkingWeekdays DateExceptionSet
}

// Location returns the schedule's timezone, resolving "auto" to the host zone
func (s *Schedule) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == TimezoneAuto {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// isWorkingDate applies the weekend and exception rules to a single date.
// nonworking_weekdays wins over working_weekends: a date listed in both is
// nonworking. working_weekends only promotes weekends, a plain weekday listed
// there is already working.
func (s *Schedule) isWorkingDate(d dateutil.Date) bool {
	if s.NonworkingWeekdays.Contains(d) {
		return false
	}
	if s.Weekends.Contains(d.Weekday()) {
		return s.WorkingWeekends.Contains(d)
	}
	return true
}

// NextWorkingDay returns the first working date not earlier than from
func (s *Schedule) NextWorkingDay(from dateutil.Date) (dateutil.Date, error) {
	candidate := from
	for i := 0; i <= maxResolveDays; i++ {
		if s.isWorkingDate(candidate) {
			return candidate, nil
		}
		candidate = candidate.AddDays(1)
	}
	return dateutil.Date{}, fmt.Errorf("%w within %d days of %s", ErrNoWorkingDayFound, maxResolveDays, from)
}

// NextMuteEnd returns the instant at which the next working day starts,
// relative to now: the first working day's start_of_day in the schedule's
// timezone. When now is already past today's start_of_day the search begins
// tomorrow.
func (s *Schedule) NextMuteEnd(now time.Time) (time.Time, error) {
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve timezone %q: %w", s.Timezone, err)
	}

	local := now.In(loc)
	start := dateutil.DateOf(local)
	if !timeOfDayOf(local).Before(s.StartOfDay) {
		start = start.AddDays(1)
	}

	day, err := s.NextWorkingDay(start)
	if err != nil {
		return time.Time{}, err
	}

	return day.At(s.StartOfDay.Hour, s.StartOfDay.Minute, s.StartOfDay.Second, loc), nil
}

// InWorkingHours reports whether now falls inside the schedule's working day:
// a working date with start_of_day <= wall clock < end_of_day. Always false
// when end_of_day is not configured.
func (s *Schedule) InWorkingHours(now time.Time) (bool, error) {
	if s.EndOfDay == nil {
		return false, nil
	}

	loc, err := s.Location()
	if err != nil {
		return false, fmt.Errorf("failed to resolve timezone %q: %w", s.Timezone, err)
	}

	local := now.In(loc)
	if !s.isWorkingDate(dateutil.DateOf(local)) {
		return false, nil
	}

	tod := timeOfDayOf(local)
	return !tod.Before(s.StartOfDay) && tod.Before(*s.EndOfDay), nil
}
