package domain

import "time"

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Float64Ptr returns a pointer to a copy of v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// EarliestTime returns the earliest non-nil time, or nil if none is set.
func EarliestTime(ts ...*time.Time) *time.Time {
	var min *time.Time
	for _, t := range ts {
		if t == nil {
			continue
		}
		if min == nil || t.Before(*min) {
			v := *t
			min = &v
		}
	}
	return min
}
