package application

import (
	"time"

	"github.com/example/room-booking/internal/availability"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// OrganizationInput captures caller provided organization fields.
type OrganizationInput struct {
	Name string
	Slug string
}

// UserInput captures caller provided user fields.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// BuildingInput captures caller provided building fields.
type BuildingInput struct {
	OrganizationID string
	Name           string
	Address        *string
	Metadata       *string
}

// FloorInput captures caller provided floor fields.
type FloorInput struct {
	BuildingID string
	Name       string
	Level      int
}

// RoomInput captures caller provided room fields. A nil Enabled defaults to
// true; empty Type and Status default to "meeting" and "active".
type RoomInput struct {
	OrganizationID string
	FloorID        string
	Name           string
	Description    string
	Amenities      []string
	Capacity       int
	Enabled        *bool
	Type           string
	Status         string
	Metadata       *string
}

// RoomRuleInput captures caller provided room rule fields.
type RoomRuleInput struct {
	RoomID      string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// RecurrenceInput captures a caller provided recurrence configuration in its
// wire form.
type RecurrenceInput struct {
	Frequency    string
	Interval     int
	DaysOfWeek   []int
	DaysOfMonth  []int
	MonthsOfYear []int
	EndDate      *time.Time
	Count        *int
}

// EventInput captures caller provided event fields.
type EventInput struct {
	OrganizationID   string
	Title            string
	Description      *string
	Start            time.Time
	End              time.Time
	Extendable       bool
	RoomIDs          []string
	ParticipantIDs   []string
	Recurrence       *RecurrenceInput
	RequiresApproval bool
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// EventResult bundles a persisted event with its associations and any
// advisory conflict warnings produced by the write.
type EventResult struct {
	Event        persistence.Event
	RoomIDs      []string
	Participants []persistence.Participant
	Warnings     []booking.Conflict
}

// ExceptionInput captures a caller provided occurrence override. Kind is one
// of "cancelled", "rescheduled" or "superseded".
type ExceptionInput struct {
	OriginalStart time.Time
	Kind          string
	NewStart      *time.Time
	NewEnd        *time.Time
	Recurrence    *RecurrenceInput
}

// PutExceptionParams wraps the data required to write an occurrence override.
type PutExceptionParams struct {
	Principal Principal
	EventID   string
	Input     ExceptionInput
}

// OccurrenceWindow bounds an occurrence listing. Nil bounds fall back to the
// default window around the current time.
type OccurrenceWindow struct {
	From *time.Time
	To   *time.Time
}

// RoomAvailabilityResult carries a room's projected schedule for a window.
type RoomAvailabilityResult struct {
	Room     persistence.Room
	Window   recurrence.Window
	Schedule availability.RoomSchedule
	Free     []availability.Interval
}
