package timeutil

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid_date")

type layout struct {
	value    string
	dateOnly bool
}

// Accepted input formats, tried in order.
var layouts = []layout{
	{value: time.RFC3339Nano},
	{value: time.RFC3339},
	{value: "2006-01-02T15:04:05"},
	{value: "2006-01-02 15:04:05"},
	{value: "2006-01-02T15:04"},
	{value: "2006-01-02 15:04"},
	{value: "2006-01-02", dateOnly: true},
	{value: "2006/01/02", dateOnly: true},
	{value: "02.01.2006", dateOnly: true},
	{value: "02-01-2006", dateOnly: true},
	{value: "02/01/2006", dateOnly: true},
	{value: "Jan 2 2006", dateOnly: true},
	{value: "Jan 2, 2006", dateOnly: true},
	{value: "2 Jan 2006", dateOnly: true},
	{value: "January 2, 2006", dateOnly: true},
	{value: "January 2 2006", dateOnly: true},
	{value: "2 January 2006", dateOnly: true},
}

// ParseLoose parses a human written date or timestamp. Values without a zone are UTC.
// Date-only values resolve to the start of the day, or its last nanosecond when
// endOfDay is set.
func ParseLoose(value string, endOfDay bool) (time.Time, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, l := range layouts {
		parsed, err := time.ParseInLocation(l.value, value, time.UTC)
		if err != nil {
			continue
		}
		if l.dateOnly && endOfDay {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		return parsed.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}
