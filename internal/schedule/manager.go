package schedule

import (
	"fmt"
	"regexp"
)

// DefaultName is the schedule every configuration must define. Chats that
// match no group setting use it.
const DefaultName = "default"

// Spec is a schedule as written in the configuration, before inheritance and
// parsing. Optional fields that are absent inherit from the parent chain; an
// explicitly empty list overrides the parent with an empty set.
type Spec struct {
	Name               string        `mapstructure:"name"`
	Parent             string        `mapstructure:"parent"`
	StartOfDay         string        `mapstructure:"start_of_day"`
	EndOfDay           string        `mapstructure:"end_of_day"`
	Timezone           string        `mapstructure:"timezone"`
	Weekends           []string      `mapstructure:"weekends"`
	WorkingWeekends    []interface{} `mapstructure:"working_weekends"`
	NonworkingWeekdays []interface{} `mapstructure:"nonworking_weekdays"`
}

// GroupSpec selects a schedule for chats matching a title. Exactly one of
// Name (exact match) and NamePattern (regular expression) must be set.
type GroupSpec struct {
	Name        string `mapstructure:"name"`
	NamePattern string `mapstructure:"name_pattern"`
	Schedule    string `mapstructure:"schedule"`
}

// Manager holds the effective schedules and the group matching rules.
// Immutable after construction.
type Manager struct {
	schedules map[string]*Schedule
	names     []string
	groups    []groupRule
}

type groupRule struct {
	name     string
	pattern  *regexp.Regexp
	schedule *Schedule
}

// NewManager validates the schedule and group specs and resolves every
// schedule to its effective form. Any invalid value fails construction.
func NewManager(specs []Spec, groups []GroupSpec) (*Manager, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no schedules defined")
	}

	byName := make(map[string]Spec, len(specs))
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("schedule without a name")
		}
		if _, ok := byName[spec.Name]; ok {
			return nil, fmt.Errorf("duplicate schedule %q", spec.Name)
		}
		byName[spec.Name] = spec
		names = append(names, spec.Name)
	}
	if _, ok := byName[DefaultName]; !ok {
		return nil, fmt.Errorf("schedule %q must be defined", DefaultName)
	}

	m := &Manager{
		schedules: make(map[string]*Schedule, len(specs)),
		names:     names,
	}
	for _, name := range names {
		chain, err := parentChain(name, byName)
		if err != nil {
			return nil, err
		}
		sched, err := buildSchedule(name, chain)
		if err != nil {
			return nil, err
		}
		if _, err := sched.Location(); err != nil {
			return nil, fmt.Errorf("schedule %q: unknown timezone %q: %w", name, sched.Timezone, err)
		}
		m.schedules[name] = sched
	}

	for i, g := range groups {
		rule, err := compileGroupRule(g, m.schedules)
		if err != nil {
			return nil, fmt.Errorf("group setting %d: %w", i+1, err)
		}
		m.groups = append(m.groups, rule)
	}

	return m, nil
}

// parentChain collects the named spec and its ancestors, child first,
// rejecting unknown parents and cycles
func parentChain(name string, byName map[string]Spec) ([]Spec, error) {
	var chain []Spec
	seen := make(map[string]bool)
	child := ""
	for current := name; current != ""; {
		if seen[current] {
			return nil, fmt.Errorf("circular parent chain involving schedule %q", current)
		}
		seen[current] = true

		spec, ok := byName[current]
		if !ok {
			return nil, fmt.Errorf("schedule %q references unknown parent %q", child, current)
		}
		chain = append(chain, spec)
		child = current
		current = spec.Parent
	}
	return chain, nil
}

// buildSchedule merges the chain field by field, nearest ancestor first, and
// parses the merged values
func buildSchedule(name string, chain []Spec) (*Schedule, error) {
	var merged Spec
	for _, spec := range chain {
		if merged.StartOfDay == "" {
			merged.StartOfDay = spec.StartOfDay
		}
		if merged.EndOfDay == "" {
			merged.EndOfDay = spec.EndOfDay
		}
		if merged.Timezone == "" {
			merged.Timezone = spec.Timezone
		}
		if merged.Weekends == nil {
			merged.Weekends = spec.Weekends
		}
		if merged.WorkingWeekends == nil {
			merged.WorkingWeekends = spec.WorkingWeekends
		}
		if merged.NonworkingWeekdays == nil {
			merged.NonworkingWeekdays = spec.NonworkingWeekdays
		}
	}

	if merged.StartOfDay == "" {
		return nil, fmt.Errorf("schedule %q: start_of_day is not set in the schedule or its parents", name)
	}
	if merged.Weekends == nil {
		return nil, fmt.Errorf("schedule %q: weekends are not set in the schedule or its parents", name)
	}

	startOfDay, err := ParseTimeOfDay(merged.StartOfDay)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", name, err)
	}

	var endOfDay *TimeOfDay
	if merged.EndOfDay != "" {
		tod, err := ParseTimeOfDay(merged.EndOfDay)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", name, err)
		}
		if !startOfDay.Before(tod) {
			return nil, fmt.Errorf("schedule %q: end_of_day %s must be after start_of_day %s", name, tod, startOfDay)
		}
		endOfDay = &tod
	}

	weekends, err := ParseWeekdaySet(merged.Weekends)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", name, err)
	}
	workingWeekends, err := ParseDateExceptionSet(merged.WorkingWeekends)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: working_weekends: %w", name, err)
	}
	nonworkingWeekdays, err := ParseDateExceptionSet(merged.NonworkingWeekdays)
	if err != nil {
		return nil, fmt.Errorf("schedule %q: nonworking_weekdays: %w", name, err)
	}

	timezone := merged.Timezone
	if timezone == "" {
		timezone = TimezoneAuto
	}

	return &Schedule{
		Name:               name,
		StartOfDay:         startOfDay,
		EndOfDay:           endOfDay,
		Timezone:           timezone,
		Weekends:           weekends,
		WorkingWeekends:    workingWeekends,
		NonworkingWeekdays: nonworkingWeekdays,
	}, nil
}

func compileGroupRule(g GroupSpec, schedules map[string]*Schedule) (groupRule, error) {
	if g.Name == "" && g.NamePattern == "" {
		return groupRule{}, fmt.Errorf("either name or name_pattern must be set")
	}
	if g.Name != "" && g.NamePattern != "" {
		return groupRule{}, fmt.Errorf("name and name_pattern are mutually exclusive")
	}
	if g.Schedule == "" {
		return groupRule{}, fmt.Errorf("schedule is required")
	}

	sched, ok := schedules[g.Schedule]
	if !ok {
		return groupRule{}, fmt.Errorf("unknown schedule %q", g.Schedule)
	}

	rule := groupRule{name: g.Name, schedule: sched}
	if g.NamePattern != "" {
		pattern, err := regexp.Compile(g.NamePattern)
		if err != nil {
			return groupRule{}, fmt.Errorf("invalid name_pattern %q: %w", g.NamePattern, err)
		}
		rule.pattern = pattern
	}
	return rule, nil
}

// Schedule returns the effective schedule with the given name
func (m *Manager) Schedule(name string) (*Schedule, bool) {
	sched, ok := m.schedules[name]
	return sched, ok
}

// Names returns the schedule names in configuration order
func (m *Manager) Names() []string {
	return m.names
}

// ForGroup returns the schedule for a chat title: an exact group-setting name
// wins over patterns, patterns are tried in configuration order, and chats
// matching nothing use the default schedule.
func (m *Manager) ForGroup(title string) *Schedule {
	for _, rule := range m.groups {
		if rule.pattern == nil && rule.name == title {
			return rule.schedule
		}
	}
	for _, rule := range m.groups {
		if rule.pattern != nil && rule.pattern.MatchString(title) {
			return rule.schedule
		}
	}
	return m.schedules[DefaultName]
}
