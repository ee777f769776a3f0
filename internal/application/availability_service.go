package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/availability"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// AvailabilityService projects effective event occurrences onto rooms and
// computes the free intervals between them.
type AvailabilityService struct {
	events     persistence.EventRepository
	exceptions persistence.ExceptionRepository
	rooms      persistence.RoomRepository
	engine     *recurrence.Engine
	now        func() time.Time
	logger     *slog.Logger
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(events persistence.EventRepository, exceptions persistence.ExceptionRepository, rooms persistence.RoomRepository, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(events, exceptions, rooms, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(events persistence.EventRepository, exceptions persistence.ExceptionRepository, rooms persistence.RoomRepository, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		events:     events,
		exceptions: exceptions,
		rooms:      rooms,
		engine:     recurrence.NewEngine(time.UTC),
		now:        now,
		logger:     defaultLogger(logger),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// RoomAvailability resolves one room's schedule and free intervals within the
// window. Nil bounds fall back to the default window around the current time.
func (s *AvailabilityService) RoomAvailability(ctx context.Context, principal Principal, roomID string, window OccurrenceWindow) (result RoomAvailabilityResult, err error) {
	logger := s.loggerWith(ctx, "RoomAvailability",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve room availability", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var room persistence.Room
	room, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	bounds := s.bounds(window)
	var schedules []availability.RoomSchedule
	schedules, err = s.projectRooms(ctx, []string{roomID}, bounds)
	if err != nil {
		return
	}

	schedule := schedules[0]
	result = RoomAvailabilityResult{
		Room:     room,
		Window:   bounds,
		Schedule: schedule,
		Free:     schedule.Free(bounds),
	}
	return
}

// OrganizationAvailability resolves the schedules of every room in an
// organization within the window. Rooms with no bookings appear with an empty
// occurrence list.
func (s *AvailabilityService) OrganizationAvailability(ctx context.Context, principal Principal, organizationID string, window OccurrenceWindow) (results []RoomAvailabilityResult, err error) {
	logger := s.loggerWith(ctx, "OrganizationAvailability",
		"principal_id", principal.UserID,
		"organization_id", organizationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve organization availability", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var rooms []persistence.Room
	rooms, err = s.rooms.ListRooms(ctx, organizationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	bounds := s.bounds(window)
	roomIDs := make([]string, 0, len(rooms))
	byID := make(map[string]persistence.Room, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
		byID[room.ID] = room
	}

	var schedules []availability.RoomSchedule
	schedules, err = s.projectRooms(ctx, roomIDs, bounds)
	if err != nil {
		return
	}

	results = make([]RoomAvailabilityResult, 0, len(schedules))
	for _, schedule := range schedules {
		results = append(results, RoomAvailabilityResult{
			Room:     byID[schedule.RoomID],
			Window:   bounds,
			Schedule: schedule,
			Free:     schedule.Free(bounds),
		})
	}
	return
}

func (s *AvailabilityService) bounds(window OccurrenceWindow) recurrence.Window {
	bounds := availability.DefaultWindow(s.now(), time.UTC)
	if window.From != nil {
		bounds.From = *window.From
	}
	if window.To != nil {
		bounds.To = *window.To
	}
	return bounds
}

// projectRooms resolves every active event occupying the requested rooms and
// groups the effective occurrences per room. Cancelled and rejected events
// occupy nothing.
func (s *AvailabilityService) projectRooms(ctx context.Context, roomIDs []string, window recurrence.Window) ([]availability.RoomSchedule, error) {
	entries := make([]availability.Entry, 0)
	for _, roomID := range roomIDs {
		events, err := s.events.ListEventsForRoom(ctx, roomID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		for _, event := range events {
			if !occupiesRoom(event) {
				continue
			}
			stored, err := s.exceptions.ListExceptions(ctx, event.ID)
			if err != nil {
				return nil, mapRepoError(err)
			}
			exceptions := make([]recurrence.Exception, 0, len(stored))
			for _, exception := range stored {
				exceptions = append(exceptions, toEngineException(exception))
			}
			occurrences, err := s.engine.Resolve(event.ID, event.Start, event.End, event.Recurrence, exceptions, window)
			if err != nil {
				return nil, err
			}
			for _, occurrence := range occurrences {
				entries = append(entries, availability.Entry{RoomID: roomID, Occurrence: occurrence})
			}
		}
	}
	return availability.Project(roomIDs, entries), nil
}
