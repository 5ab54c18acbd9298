package core

import (
	"fmt"
	"time"

	"github.com/aeswibon/dora/internal/contract"
	"github.com/aeswibon/dora/schema"
)

// Bucketize splits [start, end] into an ordered sequence of non-overlapping,
// contiguous windows at the requested granularity. Window boundaries are
// aligned to the calendar unit (days at midnight, weeks on Monday, months on
// the 1st) and the final window is truncated to end. A start after end yields
// an empty sequence without error.
func Bucketize(start, end time.Time, granularity schema.Granularity) ([]schema.TimeWindow, error) {
	if !schema.ValidGranularity(granularity) {
		return nil, fmt.Errorf("%w (received %q)", schema.ErrInvalidGranularity, granularity)
	}

	start = start.UTC()
	end = end.UTC()
	if start.After(end) {
		return []schema.TimeWindow{}, nil
	}

	var windows []schema.TimeWindow
	cursor := alignStart(start, granularity)
	for !cursor.After(end) {
		next := advance(cursor, granularity)
		windowEnd := next.Add(-time.Second) // last second of the bucket
		if windowEnd.After(end) {
			windowEnd = end
		}
		windows = append(windows, schema.TimeWindow{
			Start:       cursor,
			End:         windowEnd,
			Granularity: granularity,
		})
		cursor = next
	}
	return windows, nil
}

// alignStart snaps t down to its bucket boundary.
func alignStart(t time.Time, granularity schema.Granularity) time.Time {
	day := contract.StartOfDay(t)
	switch granularity {
	case schema.WeekGranularity:
		// time.Weekday counts Sunday as 0; weeks here start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case schema.MonthGranularity:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // day
		return day
	}
}

// advance steps cursor to the start of the next bucket.
func advance(cursor time.Time, granularity schema.Granularity) time.Time {
	switch granularity {
	case schema.WeekGranularity:
		return cursor.AddDate(0, 0, 7)
	case schema.MonthGranularity:
		return cursor.AddDate(0, 1, 0)
	default: // day
		return cursor.AddDate(0, 0, 1)
	}
}
