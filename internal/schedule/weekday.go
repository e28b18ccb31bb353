package schedule

import (
	"fmt"
	"strings"
	"time"
)

// weekdayNames maps the accepted short names, English and Russian, onto
// calendar weekdays. Matching is case-sensitive: "Mon" is valid, "mon" and
// "Monday" are not.
var weekdayNames = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
	"Пн":  time.Monday,
	"Вт":  time.Tuesday,
	"Ср":  time.Wednesday,
	"Чт":  time.Thursday,
	"Пт":  time.Friday,
	"Сб":  time.Saturday,
	"Вс":  time.Sunday,
}

// englishNames is indexed by time.Weekday (Sunday = 0)
var englishNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseWeekday converts a short weekday name into a calendar weekday
func ParseWeekday(token string) (time.Weekday, error) {
	day, ok := weekdayNames[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekdayName, token)
	}
	return day, nil
}

// WeekdaySet is an immutable set of calendar weekdays
type WeekdaySet uint8

// ParseWeekdaySet builds a set from short weekday names, collapsing duplicates
func ParseWeekdaySet(tokens []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, token := range tokens {
		day, err := ParseWeekday(token)
		if err != nil {
			return 0, err
		}
		set |= 1 << uint(day)
	}
	return set, nil
}

// Contains reports whether the weekday is in the set
func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

// String lists the set's weekdays Monday-first using English short names
func (s WeekdaySet) String() string {
	var names []string
	for i := 0; i < 7; i++ {
		day := time.Weekday((i + 1) % 7) // Monday first
		if s.Contains(day) {
			names = append(names, englishNames[day])
		}
	}
	return strings.Join(names, ", ")
}
