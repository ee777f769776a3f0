package availability

import (
	"testing"
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

func occ(eventID string, hour, durationMinutes int) recurrence.Occurrence {
	start := time.Date(2024, time.January, 8, hour, 0, 0, 0, time.UTC)
	return recurrence.Occurrence{
		EventID: eventID,
		Start:   start,
		End:     start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

func TestDefaultWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 20, 14, 35, 0, 0, time.UTC)
	window := DefaultWindow(now, nil)

	wantFrom := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	if !window.From.Equal(wantFrom) {
		t.Fatalf("expected from %v, got %v", wantFrom, window.From)
	}
	if !window.To.Equal(wantTo) {
		t.Fatalf("expected to %v, got %v", wantTo, window.To)
	}
}

func TestProject(t *testing.T) {
	t.Parallel()

	t.Run("groups occurrences by room in request order", func(t *testing.T) {
		t.Parallel()

		entries := []Entry{
			{RoomID: "room-2", Occurrence: occ("event-3", 11, 60)},
			{RoomID: "room-1", Occurrence: occ("event-2", 13, 60)},
			{RoomID: "room-1", Occurrence: occ("event-1", 9, 60)},
		}
		schedules := Project([]string{"room-1", "room-2"}, entries)
		if len(schedules) != 2 {
			t.Fatalf("expected 2 schedules, got %d", len(schedules))
		}
		if schedules[0].RoomID != "room-1" || schedules[1].RoomID != "room-2" {
			t.Fatalf("unexpected room order: %s, %s", schedules[0].RoomID, schedules[1].RoomID)
		}
		if len(schedules[0].Occurrences) != 2 {
			t.Fatalf("expected 2 occurrences for room-1, got %d", len(schedules[0].Occurrences))
		}
		if schedules[0].Occurrences[0].EventID != "event-1" {
			t.Fatalf("expected occurrences ordered by start, got %s first", schedules[0].Occurrences[0].EventID)
		}
	})

	t.Run("empty rooms are present, not absent", func(t *testing.T) {
		t.Parallel()

		schedules := Project([]string{"room-1"}, nil)
		if len(schedules) != 1 {
			t.Fatalf("expected 1 schedule, got %d", len(schedules))
		}
		if schedules[0].Occurrences == nil || len(schedules[0].Occurrences) != 0 {
			t.Fatalf("expected an empty occurrence list, got %v", schedules[0].Occurrences)
		}
	})

	t.Run("entries for unrequested rooms are ignored", func(t *testing.T) {
		t.Parallel()

		entries := []Entry{{RoomID: "room-9", Occurrence: occ("event-1", 9, 60)}}
		schedules := Project([]string{"room-1"}, entries)
		if len(schedules) != 1 || len(schedules[0].Occurrences) != 0 {
			t.Fatalf("expected one empty schedule, got %v", schedules)
		}
	})
}

func TestRoomSchedule_Busy(t *testing.T) {
	t.Parallel()

	schedule := RoomSchedule{RoomID: "room-1", Occurrences: []recurrence.Occurrence{
		occ("event-1", 9, 60),
		occ("event-2", 9, 90),  // overlaps event-1
		occ("event-3", 11, 60), // adjacent to nothing
		occ("event-4", 12, 30), // back-to-back with event-3
	}}

	busy := schedule.Busy()
	if len(busy) != 2 {
		t.Fatalf("expected 2 busy intervals, got %d: %v", len(busy), busy)
	}
	if !busy[0].Start.Equal(occ("", 9, 0).Start) || !busy[0].End.Equal(occ("", 9, 90).End) {
		t.Fatalf("unexpected first interval: %v", busy[0])
	}
	if !busy[1].Start.Equal(occ("", 11, 0).Start) || !busy[1].End.Equal(occ("", 12, 30).End) {
		t.Fatalf("unexpected second interval: %v", busy[1])
	}
}

func TestRoomSchedule_Free(t *testing.T) {
	t.Parallel()

	window := recurrence.Window{
		From: time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 8, 18, 0, 0, 0, time.UTC),
	}

	t.Run("gaps between bookings", func(t *testing.T) {
		t.Parallel()

		schedule := RoomSchedule{Occurrences: []recurrence.Occurrence{
			occ("event-1", 9, 60),
			occ("event-2", 13, 120),
		}}
		free := schedule.Free(window)
		if len(free) != 3 {
			t.Fatalf("expected 3 free intervals, got %d: %v", len(free), free)
		}
		if !free[0].End.Equal(occ("", 9, 0).Start) {
			t.Fatalf("expected first gap to end at 09:00, got %v", free[0].End)
		}
		if !free[1].Start.Equal(occ("", 10, 0).Start) || !free[1].End.Equal(occ("", 13, 0).Start) {
			t.Fatalf("unexpected middle gap: %v", free[1])
		}
		if !free[2].Start.Equal(occ("", 15, 0).Start) || !free[2].End.Equal(window.To) {
			t.Fatalf("unexpected trailing gap: %v", free[2])
		}
	})

	t.Run("unbooked room is free for the whole window", func(t *testing.T) {
		t.Parallel()

		free := RoomSchedule{}.Free(window)
		if len(free) != 1 || !free[0].Start.Equal(window.From) || !free[0].End.Equal(window.To) {
			t.Fatalf("expected the full window, got %v", free)
		}
	})

	t.Run("fully booked window has no free intervals", func(t *testing.T) {
		t.Parallel()

		schedule := RoomSchedule{Occurrences: []recurrence.Occurrence{occ("event-1", 8, 10*60)}}
		if free := schedule.Free(window); len(free) != 0 {
			t.Fatalf("expected no free intervals, got %v", free)
		}
	})
}
