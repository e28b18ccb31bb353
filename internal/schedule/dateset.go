package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aensidhe/telegram-muter/pkg/dateutil"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict ISO-8601 YYYY-MM-DD literal. Anything else,
// including shortened forms and impossible dates, is rejected.
func ParseDate(s string) (dateutil.Date, error) {
	if !isoDatePattern.MatchString(s) {
		return dateutil.Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateFormat, s)
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("%w: %q is not a real calendar date", ErrInvalidDateFormat, s)
	}

	return dateutil.DateOf(t), nil
}

// DateInterval is an inclusive range of calendar dates
type DateInterval struct {
	Start dateutil.Date
	End   dateutil.Date
}

// Contains reports whether the date falls inside the interval, bounds included
func (i DateInterval) Contains(d dateutil.Date) bool {
	return !d.Before(i.Start) && !d.After(i.End)
}

// DateExceptionSet is an immutable collection of single dates and inclusive
// date intervals. Overlapping intervals are permitted.
type DateExceptionSet struct {
	intervals []DateInterval
}

// ParseDateExceptionSet builds a set from raw configuration entries. Each
// entry is either a single date string or a two-element list holding the
// interval bounds.
func ParseDateExceptionSet(entries []interface{}) (DateExceptionSet, error) {
	var set DateExceptionSet
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			d, err := ParseDate(v)
			if err != nil {
				return DateExceptionSet{}, err
			}
			set.intervals = append(set.intervals, DateInterval{Start: d, End: d})
		case []interface{}:
			interval, err := parseInterval(v)
			if err != nil {
				return DateExceptionSet{}, err
			}
			set.intervals = append(set.intervals, interval)
		default:
			return DateExceptionSet{}, fmt.Errorf("%w: entry must be a date or a pair of dates, got %T", ErrInvalidDateFormat, entry)
		}
	}
	return set, nil
}

func parseInterval(raw []interface{}) (DateInterval, error) {
	if len(raw) != 2 {
		return DateInterval{}, fmt.Errorf("%w: interval must hold exactly 2 dates, got %d", ErrInvalidDateRange, len(raw))
	}

	bounds := make([]dateutil.Date, 2)
	for i, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			return DateInterval{}, fmt.Errorf("%w: interval bound must be a date string, got %T", ErrInvalidDateFormat, entry)
		}
		d, err := ParseDate(s)
		if err != nil {
			return DateInterval{}, err
		}
		bounds[i] = d
	}

	if bounds[0].After(bounds[1]) {
		return DateInterval{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, bounds[0], bounds[1])
	}

	return DateInterval{Start: bounds[0], End: bounds[1]}, nil
}

// Contains reports whether the date is in any of the set's intervals
func (s DateExceptionSet) Contains(d dateutil.Date) bool {
	for _, interval := range s.intervals {
		if interval.Contains(d) {
			return true
		}
	}
	return false
}

// Len returns the number of intervals in the set
func (s DateExceptionSet) Len() int {
	return len(s.intervals)
}

// String lists the set's entries, intervals formatted as start..end
func (s DateExceptionSet) String() string {
	parts := make([]string, 0, len(s.intervals))
	for _, interval := range s.intervals {
		if interval.Start == interval.End {
			parts = append(parts, interval.Start.String())
		} else {
			parts = append(parts, interval.Start.String()+".."+interval.End.String())
		}
	}
	return strings.Join(parts, ", ")
}
