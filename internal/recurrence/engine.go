package recurrence

import (
	"errors"
	"time"
)

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidInterval indicates the recurrence interval is negative.
var ErrInvalidInterval = errors.New("recurrence: interval must be positive")

// ErrInvalidWindow indicates the generation window is missing an end bound.
var ErrInvalidWindow = errors.New("recurrence: generation window requires an end bound")

// ErrInvalidDuration indicates the base event duration is invalid.
var ErrInvalidDuration = errors.New("recurrence: event duration must be positive")

// Window bounds occurrence generation to the half-open range [From, To).
// To is mandatory: patterns without a termination rule are conceptually
// infinite and must be clipped by the caller.
type Window struct {
	From time.Time
	To   time.Time
}

// Occurrence represents one concrete instance produced by expanding a
// recurrence pattern.
type Occurrence struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// Engine expands recurrence patterns into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes results to the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

func (e *Engine) loc() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}

// Expand produces the occurrences of an event within the window, ordered by
// start ascending.
//
// The engine enforces the following semantics:
//   - All timestamps are normalized to the engine's timezone (default UTC).
//   - A nil pattern describes a non-recurring event: the base interval is the
//     only occurrence, emitted when it intersects the window.
//   - Each occurrence preserves the base duration and is anchored at the base
//     start; the interval multiplies the frequency step.
//   - Termination bounds (end date, occurrence count) are counted from the
//     series anchor, not from the window. When both are set, whichever stops
//     expansion first wins.
func (e *Engine) Expand(eventID string, baseStart, baseEnd time.Time, pattern *Pattern, window Window) ([]Occurrence, error) {
	loc := e.loc()

	baseStart = baseStart.In(loc)
	baseEnd = baseEnd.In(loc)
	if !baseEnd.After(baseStart) {
		return nil, ErrInvalidDuration
	}
	if window.To.IsZero() {
		return nil, ErrInvalidWindow
	}
	from := window.From.In(loc)
	to := window.To.In(loc)
	if !window.From.IsZero() && !to.After(from) {
		return nil, ErrInvalidWindow
	}
	duration := baseEnd.Sub(baseStart)

	occurrences := make([]Occurrence, 0)

	if pattern == nil {
		if baseStart.Before(to) && baseEnd.After(from) {
			occurrences = append(occurrences, Occurrence{EventID: eventID, Start: baseStart, End: baseEnd})
		}
		return occurrences, nil
	}

	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	var endDate time.Time
	if pattern.EndDate != nil {
		endDate = pattern.EndDate.In(loc)
	}
	remaining := -1
	if pattern.Count != nil {
		remaining = *pattern.Count
	}

	// emit applies the termination bounds to one candidate start and records
	// the occurrence when it intersects the window. It reports whether
	// expansion may continue. Candidates before the series anchor are skipped
	// without consuming the occurrence count.
	emit := func(start time.Time) bool {
		if start.Before(baseStart) {
			return true
		}
		if !endDate.IsZero() && start.After(endDate) {
			return false
		}
		if remaining == 0 {
			return false
		}
		if remaining > 0 {
			remaining--
		}
		if !start.Before(to) {
			return false
		}
		end := start.Add(duration)
		if end.After(from) {
			occurrences = append(occurrences, Occurrence{EventID: eventID, Start: start, End: end})
		}
		return true
	}

	switch pattern.Frequency {
	case FrequencyDaily:
		e.expandDaily(pattern, baseStart, to, emit)
	case FrequencyWeekly:
		e.expandWeekly(pattern, baseStart, to, emit)
	case FrequencyMonthly:
		e.expandMonthly(pattern, baseStart, to, emit)
	case FrequencyYearly:
		e.expandYearly(pattern, baseStart, to, emit)
	default:
		return nil, ErrInvalidFrequency
	}

	return occurrences, nil
}

// expandDaily steps Interval days at a time from the anchor. A weekday
// selection, when present, filters candidates without consuming the
// occurrence count.
func (e *Engine) expandDaily(pattern *Pattern, anchor, to time.Time, emit func(time.Time) bool) {
	weekdays := pattern.weekdaySet()
	for current := anchor; current.Before(to); current = current.AddDate(0, 0, pattern.interval()) {
		if len(weekdays) > 0 {
			if _, ok := weekdays[current.Weekday()]; !ok {
				continue
			}
		}
		if !emit(current) {
			return
		}
	}
}

// expandWeekly visits week blocks anchored at the week containing the series
// anchor, stepping Interval weeks, and emits the selected weekdays within
// each block in ascending order.
func (e *Engine) expandWeekly(pattern *Pattern, anchor, to time.Time, emit func(time.Time) bool) {
	loc := e.loc()
	days := pattern.sortedWeekdays(anchor)
	for block := startOfWeek(anchor); combineDateTime(block, anchor, loc).Before(to); block = block.AddDate(0, 0, 7*pattern.interval()) {
		for _, day := range days {
			candidate := combineDateTime(block.AddDate(0, 0, int(day)), anchor, loc)
			if !emit(candidate) {
				return
			}
		}
	}
}

// expandMonthly visits month blocks stepping Interval months from the anchor
// month and emits the selected days of month. Days that do not exist in a
// given month (e.g. the 31st of February) are skipped.
func (e *Engine) expandMonthly(pattern *Pattern, anchor, to time.Time, emit func(time.Time) bool) {
	loc := e.loc()
	days := pattern.sortedMonthDays(anchor)
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	for k := 0; ; k += pattern.interval() {
		block := first.AddDate(0, k, 0)
		if !combineDateTime(block, anchor, loc).Before(to) {
			return
		}
		for _, day := range days {
			candidate := time.Date(block.Year(), block.Month(), day, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), loc)
			if candidate.Month() != block.Month() {
				continue
			}
			if !emit(candidate) {
				return
			}
		}
	}
}

// expandYearly visits year blocks stepping Interval years and emits the
// selected months combined with the selected days of month. Invalid dates
// (e.g. February 29th outside leap years) are skipped.
func (e *Engine) expandYearly(pattern *Pattern, anchor, to time.Time, emit func(time.Time) bool) {
	loc := e.loc()
	months := pattern.sortedMonths(anchor)
	days := pattern.sortedMonthDays(anchor)
	for year := anchor.Year(); ; year += pattern.interval() {
		blockStart := time.Date(year, time.January, 1, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), loc)
		if !blockStart.Before(to) {
			return
		}
		for _, month := range months {
			for _, day := range days {
				candidate := time.Date(year, month, day, anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), loc)
				if candidate.Month() != month {
					continue
				}
				if !emit(candidate) {
					return
				}
			}
		}
	}
}

func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func combineDateTime(dateSource, template time.Time, loc *time.Location) time.Time {
	y, m, d := dateSource.In(loc).Date()
	template = template.In(loc)
	return time.Date(y, m, d, template.Hour(), template.Minute(), template.Second(), template.Nanosecond(), loc)
}
