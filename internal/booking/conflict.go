package booking

import "time"

// Booking represents one concrete reserved interval, typically a single
// occurrence of an event after recurrence expansion.
type Booking struct {
	EventID      string
	RoomID       string
	Participants []string
	Start        time.Time
	End          time.Time
}

// ConflictType describes the type of conflict detected between bookings.
type ConflictType string

const (
	// ConflictTypeRoom indicates a room is double-booked.
	ConflictTypeRoom ConflictType = "room"
	// ConflictTypeParticipant indicates a participant is double-booked.
	ConflictTypeParticipant ConflictType = "participant"
	// ConflictTypeRoomRule indicates a booking falls outside the room's
	// allowed hours.
	ConflictTypeRoomRule ConflictType = "room_rule"
)

// Conflict details an overlapping booking relation that callers can present
// to users. Conflicts are advisory: detection never blocks a write.
type Conflict struct {
	WithEventID string
	Type        ConflictType
	Participant string
	RoomID      string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies conflicts for the candidate booking against
// existing ones. Bookings belonging to the candidate's own event are skipped
// so that updates do not conflict with the occurrences they replace.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	conflicts := make([]Conflict, 0)

	for _, other := range existing {
		if other.EventID == candidate.EventID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
			continue
		}

		if candidate.RoomID != "" && other.RoomID == candidate.RoomID {
			conflicts = append(conflicts, Conflict{
				WithEventID: other.EventID,
				Type:        ConflictTypeRoom,
				RoomID:      other.RoomID,
				Start:       other.Start,
				End:         other.End,
			})
		}

		for _, participant := range sharedParticipants(candidate.Participants, other.Participants) {
			conflicts = append(conflicts, Conflict{
				WithEventID: other.EventID,
				Type:        ConflictTypeParticipant,
				Participant: participant,
				Start:       other.Start,
				End:         other.End,
			})
		}
	}

	return conflicts
}

func sharedParticipants(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	shared := make([]string, 0)
	for _, id := range b {
		if _, ok := set[id]; ok {
			shared = append(shared, id)
			delete(set, id)
		}
	}
	return shared
}
