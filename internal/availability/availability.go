// Package availability projects effective event occurrences onto rooms. The
// projection is pure: callers resolve recurrence and exceptions first and
// feed the resulting occurrences in.
package availability

import (
	"sort"
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

// defaultWindowRadiusDays bounds the default projection to fifteen calendar
// days either side of the reference date.
const defaultWindowRadiusDays = 15

// DefaultWindow returns the projection window used when the caller supplies
// no explicit bounds: midnight fifteen days before the reference date up to,
// exclusively, midnight after the fifteenth day following it. If loc is nil,
// UTC is used.
func DefaultWindow(now time.Time, loc *time.Location) recurrence.Window {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return recurrence.Window{
		From: day.AddDate(0, 0, -defaultWindowRadiusDays),
		To:   day.AddDate(0, 0, defaultWindowRadiusDays+1),
	}
}

// Entry associates one effective occurrence with the room it occupies.
type Entry struct {
	RoomID     string
	Occurrence recurrence.Occurrence
}

// Interval is a half-open time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// RoomSchedule lists a room's effective occurrences within a window, ordered
// by start ascending.
type RoomSchedule struct {
	RoomID      string
	Occurrences []recurrence.Occurrence
}

// Project groups entries by room. Every requested room appears in the result
// in input order, with an empty occurrence list when nothing is booked;
// entries for rooms outside the request are ignored.
func Project(roomIDs []string, entries []Entry) []RoomSchedule {
	byRoom := make(map[string][]recurrence.Occurrence, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := byRoom[id]; !ok {
			byRoom[id] = make([]recurrence.Occurrence, 0)
		}
	}
	for _, entry := range entries {
		occurrences, ok := byRoom[entry.RoomID]
		if !ok {
			continue
		}
		byRoom[entry.RoomID] = append(occurrences, entry.Occurrence)
	}

	schedules := make([]RoomSchedule, 0, len(roomIDs))
	seen := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		occurrences := byRoom[id]
		sort.SliceStable(occurrences, func(i, j int) bool {
			return occurrences[i].Start.Before(occurrences[j].Start)
		})
		schedules = append(schedules, RoomSchedule{RoomID: id, Occurrences: occurrences})
	}
	return schedules
}

// Busy returns the schedule's occupied intervals with overlapping and
// adjacent occurrences coalesced.
func (s RoomSchedule) Busy() []Interval {
	busy := make([]Interval, 0, len(s.Occurrences))
	for _, occurrence := range s.Occurrences {
		if n := len(busy); n > 0 && !occurrence.Start.After(busy[n-1].End) {
			if occurrence.End.After(busy[n-1].End) {
				busy[n-1].End = occurrence.End
			}
			continue
		}
		busy = append(busy, Interval{Start: occurrence.Start, End: occurrence.End})
	}
	return busy
}

// Free returns the gaps between the schedule's busy intervals within the
// window. A room with no bookings is free for the whole window.
func (s RoomSchedule) Free(window recurrence.Window) []Interval {
	free := make([]Interval, 0)
	cursor := window.From
	for _, interval := range s.Busy() {
		if !interval.End.After(cursor) {
			continue
		}
		if !interval.Start.Before(window.To) {
			break
		}
		if interval.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: interval.Start})
		}
		if interval.End.After(cursor) {
			cursor = interval.End
		}
	}
	if cursor.Before(window.To) {
		free = append(free, Interval{Start: cursor, End: window.To})
	}
	return free
}
