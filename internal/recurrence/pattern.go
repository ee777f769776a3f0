package recurrence

import (
	"fmt"
	"sort"
	"time"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the pattern frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily generates occurrences every Interval days.
	FrequencyDaily
	// FrequencyWeekly generates occurrences on the selected weekdays every Interval weeks.
	FrequencyWeekly
	// FrequencyMonthly generates occurrences on the selected days of month every Interval months.
	FrequencyMonthly
	// FrequencyYearly generates occurrences in the selected months every Interval years.
	FrequencyYearly
)

// String returns the wire representation used by the API and storage layers.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	case FrequencyYearly:
		return "yearly"
	default:
		return ""
	}
}

// ParseFrequency converts a wire value into a Frequency. An empty value maps
// to FrequencyUnspecified without error.
func ParseFrequency(value string) (Frequency, error) {
	switch value {
	case "":
		return FrequencyUnspecified, nil
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	case "yearly":
		return FrequencyYearly, nil
	default:
		return FrequencyUnspecified, fmt.Errorf("recurrence: unknown frequency %q", value)
	}
}

// Pattern describes a recurrence configuration for an event or for an
// exception that starts a replacement series.
//
// Interval multiplies the frequency step and is anchored at the base start of
// the series, never recomputed from the current time. DaysOfWeek applies to
// weekly patterns (and optionally filters daily ones), DaysOfMonth to monthly
// and yearly patterns, MonthsOfYear to yearly patterns. Empty selections fall
// back to the day or month derived from the base start.
//
// EndDate and Count are both optional termination bounds. When both are set,
// whichever stops expansion first wins.
type Pattern struct {
	Frequency    Frequency
	Interval     int
	DaysOfWeek   []time.Weekday
	DaysOfMonth  []int
	MonthsOfYear []time.Month
	EndDate      *time.Time
	Count        *int
}

// Validate reports configuration problems that should be rejected at write
// time rather than surfacing during expansion.
func (p Pattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return ErrInvalidFrequency
	}
	if p.Interval < 0 {
		return ErrInvalidInterval
	}
	for _, day := range p.DaysOfWeek {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("recurrence: day of week %d out of range", day)
		}
	}
	for _, day := range p.DaysOfMonth {
		if day < 1 || day > 31 {
			return fmt.Errorf("recurrence: day of month %d out of range", day)
		}
	}
	for _, month := range p.MonthsOfYear {
		if month < time.January || month > time.December {
			return fmt.Errorf("recurrence: month %d out of range", month)
		}
	}
	if p.Count != nil && *p.Count <= 0 {
		return fmt.Errorf("recurrence: occurrence count must be positive")
	}
	return nil
}

// interval returns the effective step multiplier, treating the unset zero
// value as 1.
func (p Pattern) interval() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

func (p Pattern) weekdaySet() map[time.Weekday]struct{} {
	set := make(map[time.Weekday]struct{}, len(p.DaysOfWeek))
	for _, day := range p.DaysOfWeek {
		set[day] = struct{}{}
	}
	return set
}

// sortedWeekdays returns the unique weekday selection in ascending order,
// falling back to the weekday of the supplied anchor when empty.
func (p Pattern) sortedWeekdays(anchor time.Time) []time.Weekday {
	if len(p.DaysOfWeek) == 0 {
		return []time.Weekday{anchor.Weekday()}
	}
	seen := make(map[time.Weekday]struct{}, len(p.DaysOfWeek))
	days := make([]time.Weekday, 0, len(p.DaysOfWeek))
	for _, day := range p.DaysOfWeek {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// sortedMonthDays returns the unique day-of-month selection in ascending
// order, falling back to the day of the supplied anchor when empty.
func (p Pattern) sortedMonthDays(anchor time.Time) []int {
	if len(p.DaysOfMonth) == 0 {
		return []int{anchor.Day()}
	}
	seen := make(map[int]struct{}, len(p.DaysOfMonth))
	days := make([]int, 0, len(p.DaysOfMonth))
	for _, day := range p.DaysOfMonth {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// sortedMonths returns the unique month selection in ascending order, falling
// back to the month of the supplied anchor when empty.
func (p Pattern) sortedMonths(anchor time.Time) []time.Month {
	if len(p.MonthsOfYear) == 0 {
		return []time.Month{anchor.Month()}
	}
	seen := make(map[time.Month]struct{}, len(p.MonthsOfYear))
	months := make([]time.Month, 0, len(p.MonthsOfYear))
	for _, month := range p.MonthsOfYear {
		if _, ok := seen[month]; ok {
			continue
		}
		seen[month] = struct{}{}
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}

// Clone returns a deep copy of the pattern. A nil receiver yields nil.
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	clone := Pattern{
		Frequency: p.Frequency,
		Interval:  p.Interval,
	}
	if len(p.DaysOfWeek) > 0 {
		clone.DaysOfWeek = append([]time.Weekday(nil), p.DaysOfWeek...)
	}
	if len(p.DaysOfMonth) > 0 {
		clone.DaysOfMonth = append([]int(nil), p.DaysOfMonth...)
	}
	if len(p.MonthsOfYear) > 0 {
		clone.MonthsOfYear = append([]time.Month(nil), p.MonthsOfYear...)
	}
	if p.EndDate != nil {
		end := *p.EndDate
		clone.EndDate = &end
	}
	if p.Count != nil {
		count := *p.Count
		clone.Count = &count
	}
	return &clone
}
