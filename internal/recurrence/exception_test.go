package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestException_Validate(t *testing.T) {
	t.Parallel()

	originalStart := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		exception Exception
		wantErr   bool
	}{
		{
			name:      "cancellation needs only the original start",
			exception: Exception{OriginalStart: originalStart, Kind: ExceptionCancelled},
		},
		{
			name: "reschedule needs a positive replacement duration",
			exception: Exception{
				OriginalStart: originalStart,
				Kind:          ExceptionRescheduled,
				Start:         originalStart,
				End:           originalStart,
			},
			wantErr: true,
		},
		{
			name: "valid reschedule",
			exception: Exception{
				OriginalStart: originalStart,
				Kind:          ExceptionRescheduled,
				Start:         originalStart.Add(5 * time.Hour),
				End:           originalStart.Add(6 * time.Hour),
			},
		},
		{
			name: "supersede needs a pattern",
			exception: Exception{
				OriginalStart: originalStart,
				Kind:          ExceptionSuperseded,
				Start:         originalStart,
				End:           originalStart.Add(time.Hour),
			},
			wantErr: true,
		},
		{
			name: "valid supersede",
			exception: Exception{
				OriginalStart: originalStart,
				Kind:          ExceptionSuperseded,
				Start:         originalStart,
				End:           originalStart.Add(time.Hour),
				Pattern:       &Pattern{Frequency: FrequencyDaily},
			},
		},
		{
			name:      "missing original start",
			exception: Exception{Kind: ExceptionCancelled},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.exception.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngine_Resolve(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	// Weekly Mondays at 09:00, one hour each; 2024-01-01 is a Monday.
	baseStart := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	baseEnd := baseStart.Add(time.Hour)
	weekly := &Pattern{Frequency: FrequencyWeekly, DaysOfWeek: []time.Weekday{time.Monday}}
	jan8 := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	t.Run("matches plain expansion when there are no exceptions", func(t *testing.T) {
		t.Parallel()

		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		expanded, err := engine.Expand("event-1", baseStart, baseEnd, weekly, window)
		expanded = mustOccurrences(t, expanded, err)
		resolved, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, nil, window)
		resolved = mustOccurrences(t, resolved, err)
		if len(expanded) != len(resolved) {
			t.Fatalf("expected %d occurrences, got %d", len(expanded), len(resolved))
		}
		for i := range expanded {
			if !expanded[i].Start.Equal(resolved[i].Start) || !expanded[i].End.Equal(resolved[i].End) {
				t.Fatalf("occurrence %d differs: %v vs %v", i, expanded[i], resolved[i])
			}
		}
	})

	t.Run("cancellation drops its slot only", func(t *testing.T) {
		t.Parallel()

		exceptions := []Exception{{EventID: "event-1", OriginalStart: jan8, Kind: ExceptionCancelled}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			baseStart.AddDate(0, 0, 14),
		)
	})

	t.Run("reschedule moves its slot without touching the series", func(t *testing.T) {
		t.Parallel()

		moved := time.Date(2024, time.January, 8, 14, 0, 0, 0, time.UTC)
		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionRescheduled,
			Start:         moved,
			End:           moved.Add(time.Hour),
		}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			moved,
			baseStart.AddDate(0, 0, 14),
		)
		if !got[1].End.Equal(moved.Add(time.Hour)) {
			t.Fatalf("expected moved end %v, got %v", moved.Add(time.Hour), got[1].End)
		}
	})

	t.Run("reschedule out of the window hides the occurrence", func(t *testing.T) {
		t.Parallel()

		moved := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionRescheduled,
			Start:         moved,
			End:           moved.Add(time.Hour),
		}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			baseStart.AddDate(0, 0, 14),
		)
	})

	t.Run("supersede splices in a replacement series", func(t *testing.T) {
		t.Parallel()

		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionSuperseded,
			Start:         jan8,
			End:           jan8.Add(time.Hour),
			Pattern:       &Pattern{Frequency: FrequencyDaily},
		}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 11)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			jan8,
			jan8.AddDate(0, 0, 1),
			jan8.AddDate(0, 0, 2),
			jan8.AddDate(0, 0, 3),
		)
	})

	t.Run("supersede before the window reshapes visible occurrences", func(t *testing.T) {
		t.Parallel()

		replacementStart := time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)
		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionSuperseded,
			Start:         replacementStart,
			End:           replacementStart.Add(time.Hour),
			Pattern:       &Pattern{Frequency: FrequencyDaily},
		}}
		window := Window{
			From: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
		}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 4, 10, 0, 0, 0, time.UTC),
		)
	})

	t.Run("supersede starting beyond the window still truncates the parent", func(t *testing.T) {
		t.Parallel()

		replacementStart := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionSuperseded,
			Start:         replacementStart,
			End:           replacementStart.Add(time.Hour),
			Pattern:       &Pattern{Frequency: FrequencyDaily},
		}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got, baseStart)
	})

	t.Run("exception keyed to a slot the pattern never generates is inert", func(t *testing.T) {
		t.Parallel()

		tuesday := time.Date(2024, time.January, 9, 9, 0, 0, 0, time.UTC)
		exceptions := []Exception{{EventID: "event-1", OriginalStart: tuesday, Kind: ExceptionCancelled}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			baseStart.AddDate(0, 0, 7),
			baseStart.AddDate(0, 0, 14),
		)
	})

	t.Run("exception for another event is ignored", func(t *testing.T) {
		t.Parallel()

		exceptions := []Exception{{EventID: "event-2", OriginalStart: jan8, Kind: ExceptionCancelled}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got,
			baseStart,
			baseStart.AddDate(0, 0, 7),
			baseStart.AddDate(0, 0, 14),
		)
	})

	t.Run("occurrences sharing a start are deduplicated", func(t *testing.T) {
		t.Parallel()

		jan15 := baseStart.AddDate(0, 0, 14)
		exceptions := []Exception{{
			EventID:       "event-1",
			OriginalStart: jan8,
			Kind:          ExceptionRescheduled,
			Start:         jan15,
			End:           jan15.Add(time.Hour),
		}}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 21)}
		got, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		got = mustOccurrences(t, got, err)
		assertStarts(t, got, baseStart, jan15)
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		t.Parallel()

		exceptions := []Exception{
			{EventID: "event-1", OriginalStart: jan8, Kind: ExceptionCancelled},
			{
				EventID:       "event-1",
				OriginalStart: baseStart.AddDate(0, 0, 14),
				Kind:          ExceptionRescheduled,
				Start:         baseStart.AddDate(0, 0, 15),
				End:           baseStart.AddDate(0, 0, 15).Add(time.Hour),
			},
		}
		window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 28)}
		first, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		first = mustOccurrences(t, first, err)
		second, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, exceptions, window)
		second = mustOccurrences(t, second, err)
		if len(first) != len(second) {
			t.Fatalf("expected identical output lengths, got %d and %d", len(first), len(second))
		}
		for i := range first {
			if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
				t.Fatalf("occurrence %d differs between runs: %v vs %v", i, first[i], second[i])
			}
		}
	})

	t.Run("requires a window end bound", func(t *testing.T) {
		t.Parallel()

		if _, err := engine.Resolve("event-1", baseStart, baseEnd, weekly, nil, Window{}); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("expected ErrInvalidWindow, got %v", err)
		}
	})
}

func TestEngine_Resolve_SupersedeDepthLimit(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	baseStart := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	baseEnd := baseStart.Add(time.Hour)
	daily := &Pattern{Frequency: FrequencyDaily}

	// Every day supersedes itself in place, so each replacement series
	// immediately runs into the next day's exception one level deeper.
	exceptions := make([]Exception, 0, 40)
	for i := 0; i < 40; i++ {
		slot := baseStart.AddDate(0, 0, i)
		exceptions = append(exceptions, Exception{
			EventID:       "event-1",
			OriginalStart: slot,
			Kind:          ExceptionSuperseded,
			Start:         slot,
			End:           slot.Add(time.Hour),
			Pattern:       &Pattern{Frequency: FrequencyDaily},
		})
	}

	window := Window{From: baseStart, To: baseStart.AddDate(0, 0, 60)}
	if _, err := engine.Resolve("event-1", baseStart, baseEnd, daily, exceptions, window); !errors.Is(err, ErrSupersedeDepth) {
		t.Fatalf("expected ErrSupersedeDepth, got %v", err)
	}
}
