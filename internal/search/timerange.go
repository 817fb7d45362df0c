package search

import (
	"fmt"
	"time"
)

// TimeRange is a symbolic recency window applied as a createdTs lower bound.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
	RangeAll   TimeRange = "all"
)

var rangeDurations = map[TimeRange]time.Duration{
	RangeDay:   24 * time.Hour,
	RangeWeek:  7 * 24 * time.Hour,
	RangeMonth: 30 * 24 * time.Hour,
	RangeYear:  365 * 24 * time.Hour,
}

// ParseTimeRange validates a symbolic range. The empty string maps to all.
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return RangeAll, nil
	}
	tr := TimeRange(s)
	if tr == RangeAll {
		return tr, nil
	}
	if _, ok := rangeDurations[tr]; !ok {
		return "", &ValidationError{Field: "timeRange", Message: fmt.Sprintf("unknown time range %q", s)}
	}
	return tr, nil
}

// LowerBound returns the unix-seconds lower bound for the range. The second
// return is false for RangeAll, which carries no bound at all.
func (tr TimeRange) LowerBound(now time.Time) (int64, bool) {
	d, ok := rangeDurations[tr]
	if !ok {
		return 0, false
	}
	return now.Add(-d).Unix(), true
}
