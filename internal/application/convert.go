package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// mapRepoError translates persistence sentinels into application sentinels.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}

// toPattern converts a wire recurrence input into an engine pattern,
// accumulating field errors instead of failing on the first problem.
func toPattern(input *RecurrenceInput) (*recurrence.Pattern, *ValidationError) {
	vErr := &ValidationError{}
	if input == nil {
		return nil, vErr
	}

	frequency, err := recurrence.ParseFrequency(input.Frequency)
	if err != nil || frequency == recurrence.FrequencyUnspecified {
		vErr.add("recurrence.frequency", "frequency must be one of daily, weekly, monthly, yearly")
	}
	if input.Interval < 0 {
		vErr.add("recurrence.interval", "interval must not be negative")
	}

	pattern := &recurrence.Pattern{
		Frequency: frequency,
		Interval:  input.Interval,
		EndDate:   input.EndDate,
	}
	for _, day := range input.DaysOfWeek {
		if day < 0 || day > 6 {
			vErr.add("recurrence.days_of_week", fmt.Sprintf("day of week %d out of range", day))
			continue
		}
		pattern.DaysOfWeek = append(pattern.DaysOfWeek, time.Weekday(day))
	}
	for _, day := range input.DaysOfMonth {
		if day < 1 || day > 31 {
			vErr.add("recurrence.days_of_month", fmt.Sprintf("day of month %d out of range", day))
			continue
		}
		pattern.DaysOfMonth = append(pattern.DaysOfMonth, day)
	}
	for _, month := range input.MonthsOfYear {
		if month < 1 || month > 12 {
			vErr.add("recurrence.months_of_year", fmt.Sprintf("month %d out of range", month))
			continue
		}
		pattern.MonthsOfYear = append(pattern.MonthsOfYear, time.Month(month))
	}
	if input.Count != nil {
		if *input.Count <= 0 {
			vErr.add("recurrence.count", "occurrence count must be positive")
		} else {
			count := *input.Count
			pattern.Count = &count
		}
	}

	if vErr.HasErrors() {
		return nil, vErr
	}
	return pattern, vErr
}

// toEngineException converts a stored override into the engine's exception
// form.
func toEngineException(stored persistence.EventException) recurrence.Exception {
	exception := recurrence.Exception{
		EventID:       stored.EventID,
		OriginalStart: stored.OriginalStart,
		OriginalEnd:   stored.OriginalEnd,
		Kind:          stored.Kind,
		Pattern:       stored.Recurrence,
	}
	if stored.NewStart != nil {
		exception.Start = *stored.NewStart
	}
	if stored.NewEnd != nil {
		exception.End = *stored.NewEnd
	}
	return exception
}
