package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

// Timestamps are stored as RFC3339 text in UTC.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	value := ns.String
	return &value
}

// String sets (room amenities, participant permissions) are stored as JSON
// arrays in text columns.

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string set: %w", err)
	}
	return string(data), nil
}

func decodeStrings(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(value), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string set %q: %w", value, err)
	}
	return values, nil
}

// encodeWeekdays packs a weekday selection into a bitmask with bit 0 set for
// Sunday through bit 6 for Saturday.
func encodeWeekdays(weekdays []time.Weekday) int64 {
	var mask int64
	for _, day := range weekdays {
		if day >= time.Sunday && day <= time.Saturday {
			mask |= 1 << uint(day)
		}
	}
	return mask
}

// decodeWeekdays unpacks a weekday bitmask in ascending order.
func decodeWeekdays(mask int64) []time.Weekday {
	var weekdays []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if mask&(1<<uint(day)) != 0 {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}

// encodeMonthDays packs a day-of-month selection into a bitmask with bit 1
// set for the 1st through bit 31 for the 31st.
func encodeMonthDays(days []int) int64 {
	var mask int64
	for _, day := range days {
		if day >= 1 && day <= 31 {
			mask |= 1 << uint(day)
		}
	}
	return mask
}

// decodeMonthDays unpacks a day-of-month bitmask in ascending order.
func decodeMonthDays(mask int64) []int {
	var days []int
	for day := 1; day <= 31; day++ {
		if mask&(1<<uint(day)) != 0 {
			days = append(days, day)
		}
	}
	return days
}

// encodeMonths packs a month selection into a bitmask with bit 1 set for
// January through bit 12 for December.
func encodeMonths(months []time.Month) int64 {
	var mask int64
	for _, month := range months {
		if month >= time.January && month <= time.December {
			mask |= 1 << uint(month)
		}
	}
	return mask
}

// decodeMonths unpacks a month bitmask in ascending order.
func decodeMonths(mask int64) []time.Month {
	var months []time.Month
	for month := time.January; month <= time.December; month++ {
		if mask&(1<<uint(month)) != 0 {
			months = append(months, month)
		}
	}
	return months
}

// patternColumns is the flattened storage form of a recurrence pattern. A
// null frequency means no pattern.
type patternColumns struct {
	Frequency    sql.NullString
	Interval     sql.NullInt64
	WeekdayMask  sql.NullInt64
	MonthDayMask sql.NullInt64
	MonthMask    sql.NullInt64
	EndDate      sql.NullString
	Count        sql.NullInt64
}

func encodePattern(pattern *recurrence.Pattern) patternColumns {
	if pattern == nil {
		return patternColumns{}
	}
	columns := patternColumns{
		Frequency:    sql.NullString{String: pattern.Frequency.String(), Valid: true},
		Interval:     sql.NullInt64{Int64: int64(pattern.Interval), Valid: true},
		WeekdayMask:  sql.NullInt64{Int64: encodeWeekdays(pattern.DaysOfWeek), Valid: true},
		MonthDayMask: sql.NullInt64{Int64: encodeMonthDays(pattern.DaysOfMonth), Valid: true},
		MonthMask:    sql.NullInt64{Int64: encodeMonths(pattern.MonthsOfYear), Valid: true},
	}
	if pattern.EndDate != nil {
		columns.EndDate = sql.NullString{String: formatTime(*pattern.EndDate), Valid: true}
	}
	if pattern.Count != nil {
		columns.Count = sql.NullInt64{Int64: int64(*pattern.Count), Valid: true}
	}
	return columns
}

func decodePattern(columns patternColumns) (*recurrence.Pattern, error) {
	if !columns.Frequency.Valid {
		return nil, nil
	}
	frequency, err := recurrence.ParseFrequency(columns.Frequency.String)
	if err != nil {
		return nil, err
	}
	pattern := &recurrence.Pattern{
		Frequency:    frequency,
		Interval:     int(columns.Interval.Int64),
		DaysOfWeek:   decodeWeekdays(columns.WeekdayMask.Int64),
		DaysOfMonth:  decodeMonthDays(columns.MonthDayMask.Int64),
		MonthsOfYear: decodeMonths(columns.MonthMask.Int64),
	}
	if columns.EndDate.Valid {
		endDate, err := parseTime(columns.EndDate.String)
		if err != nil {
			return nil, err
		}
		pattern.EndDate = &endDate
	}
	if columns.Count.Valid {
		count := int(columns.Count.Int64)
		pattern.Count = &count
	}
	return pattern, nil
}
