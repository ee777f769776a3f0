package booking

import "time"

// RoomRule declares an allowed usage window for a room on one weekday,
// expressed in minutes from midnight in the booking's timezone.
type RoomRule struct {
	RoomID      string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// contains reports whether the interval [startMinute, endMinute) fits inside
// the rule window.
func (r RoomRule) contains(startMinute, endMinute int) bool {
	return startMinute >= r.StartMinute && endMinute <= r.EndMinute
}

// CheckRules verifies the candidate booking against the room's usage rules.
// Rules are allowed-hours: a room with no rules accepts any interval, while a
// room with rules requires the booking to fit entirely inside one rule window
// on the booking's weekday. Bookings that cross midnight never fit a window.
func CheckRules(rules []RoomRule, candidate Booking) []Conflict {
	if candidate.RoomID == "" {
		return nil
	}

	applicable := make([]RoomRule, 0, len(rules))
	for _, rule := range rules {
		if rule.RoomID == candidate.RoomID {
			applicable = append(applicable, rule)
		}
	}
	if len(applicable) == 0 {
		return nil
	}

	startMinute := candidate.Start.Hour()*60 + candidate.Start.Minute()
	endMinute := candidate.End.Hour()*60 + candidate.End.Minute()
	sameDay := candidate.Start.Year() == candidate.End.Year() && candidate.Start.YearDay() == candidate.End.YearDay()
	if !sameDay && endMinute == 0 {
		// An interval ending exactly at midnight still belongs to the
		// starting day.
		last := candidate.End.Add(-time.Minute)
		if candidate.Start.Year() == last.Year() && candidate.Start.YearDay() == last.YearDay() {
			sameDay = true
			endMinute = 24 * 60
		}
	}

	if sameDay {
		for _, rule := range applicable {
			if rule.Weekday != candidate.Start.Weekday() {
				continue
			}
			if rule.contains(startMinute, endMinute) {
				return nil
			}
		}
	}

	return []Conflict{{
		WithEventID: candidate.EventID,
		Type:        ConflictTypeRoomRule,
		RoomID:      candidate.RoomID,
		Start:       candidate.Start,
		End:         candidate.End,
	}}
}
