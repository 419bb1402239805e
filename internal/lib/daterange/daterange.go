// Package daterange parses the from/to query parameters used by reports.
package daterange

import (
	"strings"
	"time"

	"foodorder-api/internal/apperr"
)

const Layout = "2006-01-02"

// Range covers whole days. From is inclusive, Until is exclusive (the day after "to").
// A zero bound means the range is open on that side.
type Range struct {
	From  time.Time
	Until time.Time
}

// Parse builds a Range from "YYYY-MM-DD" strings; both are optional.
func Parse(from, to string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	var r Range

	if s := strings.TrimSpace(from); s != "" {
		t, err := time.ParseInLocation(Layout, s, loc)
		if err != nil {
			return Range{}, apperr.BadRequest("invalid 'from' date, expected YYYY-MM-DD")
		}
		r.From = t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, err := time.ParseInLocation(Layout, s, loc)
		if err != nil {
			return Range{}, apperr.BadRequest("invalid 'to' date, expected YYYY-MM-DD")
		}
		r.Until = t.AddDate(0, 0, 1)
	}

	if !r.From.IsZero() && !r.Until.IsZero() && !r.From.Before(r.Until) {
		return Range{}, apperr.BadRequest("'from' must not be after 'to'")
	}
	return r, nil
}

// LastDays returns the range covering the n days ending with now's day.
func LastDays(now time.Time, n int) Range {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return Range{From: end.AddDate(0, 0, -n), Until: end}
}

func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

func (r Range) IsOpen() bool {
	return r.From.IsZero() && r.Until.IsZero()
}
