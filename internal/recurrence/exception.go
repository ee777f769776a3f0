package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrSupersedeDepth indicates superseding exceptions nested beyond the
// supported depth, which would otherwise allow unbounded splice chains.
var ErrSupersedeDepth = errors.New("recurrence: superseding exceptions nest too deeply")

const maxSupersedeDepth = 32

// ExceptionKind identifies what an exception does to the occurrence slot it
// overrides.
type ExceptionKind int

const (
	// ExceptionCancelled drops the overridden occurrence.
	ExceptionCancelled ExceptionKind = iota
	// ExceptionRescheduled moves the overridden occurrence to a new interval
	// without touching the rest of the series.
	ExceptionRescheduled
	// ExceptionSuperseded replaces the overridden occurrence and every later
	// one from the parent series with a fresh pattern anchored at the
	// exception's new start.
	ExceptionSuperseded
)

// String returns the wire representation of the exception kind.
func (k ExceptionKind) String() string {
	switch k {
	case ExceptionCancelled:
		return "cancelled"
	case ExceptionRescheduled:
		return "rescheduled"
	case ExceptionSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("ExceptionKind(%d)", int(k))
	}
}

// ParseExceptionKind converts a wire value into an ExceptionKind.
func ParseExceptionKind(value string) (ExceptionKind, error) {
	switch value {
	case "cancelled":
		return ExceptionCancelled, nil
	case "rescheduled":
		return ExceptionRescheduled, nil
	case "superseded":
		return ExceptionSuperseded, nil
	default:
		return ExceptionCancelled, fmt.Errorf("recurrence: unknown exception kind %q", value)
	}
}

// Exception overrides a single occurrence slot of a recurring series. The
// slot is addressed by the original start instant the parent pattern would
// have generated; an exception whose original start matches no generated
// candidate is inert.
type Exception struct {
	EventID       string
	OriginalStart time.Time
	OriginalEnd   time.Time
	Kind          ExceptionKind

	// Start and End carry the replacement interval for rescheduled and
	// superseded exceptions. They are ignored for cancellations.
	Start time.Time
	End   time.Time

	// Pattern describes the replacement series for superseded exceptions.
	Pattern *Pattern
}

// Validate reports structural problems that should be rejected at write time.
func (x Exception) Validate() error {
	if x.OriginalStart.IsZero() {
		return fmt.Errorf("recurrence: exception requires an original start")
	}
	switch x.Kind {
	case ExceptionCancelled:
		return nil
	case ExceptionRescheduled:
		if x.Start.IsZero() || !x.End.After(x.Start) {
			return ErrInvalidDuration
		}
		return nil
	case ExceptionSuperseded:
		if x.Start.IsZero() || !x.End.After(x.Start) {
			return ErrInvalidDuration
		}
		if x.Pattern == nil {
			return fmt.Errorf("recurrence: superseding exception requires a pattern")
		}
		return x.Pattern.Validate()
	default:
		return fmt.Errorf("recurrence: unknown exception kind %d", int(x.Kind))
	}
}

// Resolve expands the event's pattern and merges its exception set into the
// effective occurrence list for the window: ordered by start ascending and
// deduplicated by start.
//
// Candidates are generated from the series anchor so that exceptions keyed
// before the window still take effect (a supersede in the past reshapes the
// occurrences visible today); only occurrences intersecting the window are
// returned. Cancellations drop their slot, reschedules replace the interval
// of their slot only, and supersedes splice in a replacement series anchored
// at the exception's new start, discarding the parent's candidates from the
// overridden slot onward. Replacement series are themselves subject to the
// remaining exceptions.
func (e *Engine) Resolve(eventID string, baseStart, baseEnd time.Time, pattern *Pattern, exceptions []Exception, window Window) ([]Occurrence, error) {
	loc := e.loc()

	if window.To.IsZero() {
		return nil, ErrInvalidWindow
	}
	from := window.From.In(loc)
	to := window.To.In(loc)

	internal := Window{From: baseStart, To: window.To}
	if !window.From.IsZero() && from.Before(baseStart.In(loc)) {
		internal.From = window.From
	}

	candidates, err := e.Expand(eventID, baseStart, baseEnd, pattern, internal)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]Exception, len(exceptions))
	for _, exception := range exceptions {
		if exception.EventID != "" && exception.EventID != eventID {
			continue
		}
		index[exception.OriginalStart.In(loc).UnixNano()] = exception
	}

	consumed := make(map[int64]struct{})
	merged, err := e.overlay(eventID, candidates, index, to, consumed, 0)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start.Before(merged[j].Start) })

	effective := make([]Occurrence, 0, len(merged))
	var lastStart time.Time
	for i, occurrence := range merged {
		if i > 0 && occurrence.Start.Equal(lastStart) {
			continue
		}
		lastStart = occurrence.Start
		if !occurrence.Start.Before(to) {
			continue
		}
		if !window.From.IsZero() && !occurrence.End.After(from) {
			continue
		}
		effective = append(effective, occurrence)
	}

	return effective, nil
}

// overlay walks candidates in order, applying the exception matching each
// candidate's start. A superseding exception truncates the remaining
// candidates and recurses into its replacement expansion; the consumed set
// prevents a splice from re-triggering itself when the replacement pattern
// regenerates the overridden slot.
func (e *Engine) overlay(eventID string, candidates []Occurrence, index map[int64]Exception, to time.Time, consumed map[int64]struct{}, depth int) ([]Occurrence, error) {
	out := make([]Occurrence, 0, len(candidates))

	for _, candidate := range candidates {
		key := candidate.Start.UnixNano()
		exception, ok := index[key]
		if ok {
			if _, used := consumed[key]; used {
				ok = false
			}
		}
		if !ok {
			out = append(out, candidate)
			continue
		}

		switch exception.Kind {
		case ExceptionCancelled:
			// Slot dropped.
		case ExceptionRescheduled:
			out = append(out, Occurrence{EventID: eventID, Start: exception.Start, End: exception.End})
		case ExceptionSuperseded:
			if depth >= maxSupersedeDepth {
				return nil, ErrSupersedeDepth
			}
			consumed[key] = struct{}{}
			if !exception.Start.Before(to) {
				// The replacement series starts beyond the window; the
				// parent's remaining candidates are still superseded.
				return out, nil
			}
			replacement, err := e.Expand(eventID, exception.Start, exception.End, exception.Pattern, Window{From: exception.Start, To: to})
			if err != nil {
				return nil, err
			}
			spliced, err := e.overlay(eventID, replacement, index, to, consumed, depth+1)
			if err != nil {
				return nil, err
			}
			return append(out, spliced...), nil
		default:
			return nil, fmt.Errorf("recurrence: unknown exception kind %d", int(exception.Kind))
		}
	}

	return out, nil
}
