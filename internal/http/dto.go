package http

import (
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

type userDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserDTO(user persistence.User) userDTO {
	return userDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

type organizationDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrganizationDTO(org persistence.Organization) organizationDTO {
	return organizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

type membershipDTO struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
}

func toMembershipDTO(membership persistence.Membership) membershipDTO {
	return membershipDTO{
		OrganizationID: membership.OrganizationID,
		UserID:         membership.UserID,
		Role:           string(membership.Role),
	}
}

type buildingDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Address        *string   `json:"address,omitempty"`
	Metadata       *string   `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toBuildingDTO(building persistence.Building) buildingDTO {
	return buildingDTO{
		ID:             building.ID,
		OrganizationID: building.OrganizationID,
		Name:           building.Name,
		Address:        building.Address,
		Metadata:       building.Metadata,
		CreatedAt:      building.CreatedAt,
		UpdatedAt:      building.UpdatedAt,
	}
}

type floorDTO struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"building_id"`
	Name       string    `json:"name"`
	Level      int       `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toFloorDTO(floor persistence.Floor) floorDTO {
	return floorDTO{
		ID:         floor.ID,
		BuildingID: floor.BuildingID,
		Name:       floor.Name,
		Level:      floor.Level,
		CreatedAt:  floor.CreatedAt,
		UpdatedAt:  floor.UpdatedAt,
	}
}

type roomDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	FloorID        string    `json:"floor_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Amenities      []string  `json:"amenities,omitempty"`
	Capacity       int       `json:"capacity"`
	Enabled        bool      `json:"enabled"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Metadata       *string   `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toRoomDTO(room persistence.Room) roomDTO {
	return roomDTO{
		ID:             room.ID,
		OrganizationID: room.OrganizationID,
		FloorID:        room.FloorID,
		Name:           room.Name,
		Description:    room.Description,
		Amenities:      room.Amenities,
		Capacity:       room.Capacity,
		Enabled:        room.Enabled,
		Type:           string(room.Type),
		Status:         string(room.Status),
		Metadata:       room.Metadata,
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}
}

type roomRuleDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	Weekday     int    `json:"weekday"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

func toRoomRuleDTO(rule persistence.RoomRule) roomRuleDTO {
	return roomRuleDTO{
		ID:          rule.ID,
		RoomID:      rule.RoomID,
		Weekday:     int(rule.Weekday),
		StartMinute: rule.StartMinute,
		EndMinute:   rule.EndMinute,
	}
}

type recurrenceDTO struct {
	Frequency    string     `json:"frequency"`
	Interval     int        `json:"interval,omitempty"`
	DaysOfWeek   []int      `json:"days_of_week,omitempty"`
	DaysOfMonth  []int      `json:"days_of_month,omitempty"`
	MonthsOfYear []int      `json:"months_of_year,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Count        *int       `json:"count,omitempty"`
}

func (d *recurrenceDTO) toInput() *application.RecurrenceInput {
	if d == nil {
		return nil
	}
	return &application.RecurrenceInput{
		Frequency:    d.Frequency,
		Interval:     d.Interval,
		DaysOfWeek:   d.DaysOfWeek,
		DaysOfMonth:  d.DaysOfMonth,
		MonthsOfYear: d.MonthsOfYear,
		EndDate:      d.EndDate,
		Count:        d.Count,
	}
}

func toRecurrenceDTO(pattern *recurrence.Pattern) *recurrenceDTO {
	if pattern == nil {
		return nil
	}
	dto := &recurrenceDTO{
		Frequency: pattern.Frequency.String(),
		Interval:  pattern.Interval,
		EndDate:   pattern.EndDate,
		Count:     pattern.Count,
	}
	for _, day := range pattern.DaysOfWeek {
		dto.DaysOfWeek = append(dto.DaysOfWeek, int(day))
	}
	dto.DaysOfMonth = append(dto.DaysOfMonth, pattern.DaysOfMonth...)
	for _, month := range pattern.MonthsOfYear {
		dto.MonthsOfYear = append(dto.MonthsOfYear, int(month))
	}
	return dto
}

type participantDTO struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
}

func toParticipantDTO(participant persistence.Participant) participantDTO {
	permissions := make([]string, 0, len(participant.Permissions))
	for _, permission := range participant.Permissions {
		permissions = append(permissions, string(permission))
	}
	return participantDTO{
		ID:          participant.ID,
		UserID:      participant.UserID,
		Permissions: permissions,
		Status:      string(participant.Status),
	}
}

type conflictDTO struct {
	WithEventID string    `json:"with_event_id,omitempty"`
	Type        string    `json:"type"`
	Participant string    `json:"participant,omitempty"`
	RoomID      string    `json:"room_id,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func toConflictDTOs(conflicts []booking.Conflict) []conflictDTO {
	dtos := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		dtos = append(dtos, conflictDTO{
			WithEventID: conflict.WithEventID,
			Type:        string(conflict.Type),
			Participant: conflict.Participant,
			RoomID:      conflict.RoomID,
			Start:       conflict.Start,
			End:         conflict.End,
		})
	}
	return dtos
}

type eventDTO struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id,omitempty"`
	CreatorID      string         `json:"creator_id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description,omitempty"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	Extendable     bool           `json:"extendable"`
	Status         string         `json:"status"`
	Approval       string         `json:"approval"`
	ApproverID     *string        `json:"approver_id,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
	Recurrence     *recurrenceDTO `json:"recurrence,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func toEventDTO(event persistence.Event) eventDTO {
	return eventDTO{
		ID:             event.ID,
		OrganizationID: event.OrganizationID,
		CreatorID:      event.CreatorID,
		Title:          event.Title,
		Description:    event.Description,
		Start:          event.Start,
		End:            event.End,
		Extendable:     event.Extendable,
		Status:         string(event.Status),
		Approval:       string(event.Approval),
		ApproverID:     event.ApproverID,
		ApprovedAt:     event.ApprovedAt,
		Recurrence:     toRecurrenceDTO(event.Recurrence),
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}

type eventResultDTO struct {
	Event        eventDTO         `json:"event"`
	RoomIDs      []string         `json:"room_ids"`
	Participants []participantDTO `json:"participants"`
	Warnings     []conflictDTO    `json:"warnings"`
}

func toEventResultDTO(result application.EventResult) eventResultDTO {
	participants := make([]participantDTO, 0, len(result.Participants))
	for _, participant := range result.Participants {
		participants = append(participants, toParticipantDTO(participant))
	}
	roomIDs := result.RoomIDs
	if roomIDs == nil {
		roomIDs = make([]string, 0)
	}
	return eventResultDTO{
		Event:        toEventDTO(result.Event),
		RoomIDs:      roomIDs,
		Participants: participants,
		Warnings:     toConflictDTOs(result.Warnings),
	}
}

type occurrenceDTO struct {
	EventID string    `json:"event_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

func toOccurrenceDTOs(occurrences []recurrence.Occurrence) []occurrenceDTO {
	dtos := make([]occurrenceDTO, 0, len(occurrences))
	for _, occurrence := range occurrences {
		dtos = append(dtos, occurrenceDTO{
			EventID: occurrence.EventID,
			Start:   occurrence.Start,
			End:     occurrence.End,
		})
	}
	return dtos
}

type exceptionDTO struct {
	EventID       string         `json:"event_id"`
	OriginalStart time.Time      `json:"original_start"`
	OriginalEnd   time.Time      `json:"original_end"`
	Kind          string         `json:"kind"`
	NewStart      *time.Time     `json:"new_start,omitempty"`
	NewEnd        *time.Time     `json:"new_end,omitempty"`
	Recurrence    *recurrenceDTO `json:"recurrence,omitempty"`
}

func toExceptionDTO(exception persistence.EventException) exceptionDTO {
	return exceptionDTO{
		EventID:       exception.EventID,
		OriginalStart: exception.OriginalStart,
		OriginalEnd:   exception.OriginalEnd,
		Kind:          exception.Kind.String(),
		NewStart:      exception.NewStart,
		NewEnd:        exception.NewEnd,
		Recurrence:    toRecurrenceDTO(exception.Recurrence),
	}
}

type invitationDTO struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
}

func toInvitationDTO(invitation persistence.Invitation) invitationDTO {
	return invitationDTO{
		ID:      invitation.ID,
		EventID: invitation.EventID,
		UserID:  invitation.UserID,
		Status:  string(invitation.Status),
	}
}

type intervalDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type roomAvailabilityDTO struct {
	Room        roomDTO         `json:"room"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Occurrences []occurrenceDTO `json:"occurrences"`
	Free        []intervalDTO   `json:"free"`
}

func toRoomAvailabilityDTO(result application.RoomAvailabilityResult) roomAvailabilityDTO {
	free := make([]intervalDTO, 0, len(result.Free))
	for _, interval := range result.Free {
		free = append(free, intervalDTO{Start: interval.Start, End: interval.End})
	}
	return roomAvailabilityDTO{
		Room:        toRoomDTO(result.Room),
		WindowStart: result.Window.From,
		WindowEnd:   result.Window.To,
		Occurrences: toOccurrenceDTOs(result.Schedule.Occurrences),
		Free:        free,
	}
}
