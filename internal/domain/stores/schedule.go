package stores

import (
	"fmt"
	"strings"
	"time"
)

type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

var weekdays = [7]Day{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// DayOf maps a time.Weekday onto the schedule enum without going through
// any localized formatting.
func DayOf(wd time.Weekday) Day {
	return weekdays[wd]
}

func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range weekdays {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// OpenAt reports whether the schedule has the store open at now, evaluated in loc.
// Both bounds are inclusive at minute precision. A day without an entry is closed.
// Entries that fail to parse never open the store.
func OpenAt(hours []OpeningHour, now time.Time, loc *time.Location) bool {
	if loc != nil {
		now = now.In(loc)
	}
	today := DayOf(now.Weekday())
	current := ClockOf(now)

	for _, h := range hours {
		day, err := ParseDay(string(h.Day))
		if err != nil || day != today {
			continue
		}
		opens, err := ParseClock(h.OpensAt)
		if err != nil {
			return false
		}
		closes, err := ParseClock(h.ClosesAt)
		if err != nil {
			return false
		}
		return opens <= current && current <= closes
	}
	return false
}

// ValidateWindow checks an opening window. Overnight windows are not supported.
func ValidateWindow(opensAt, closesAt string) (Clock, Clock, error) {
	opens, err := ParseClock(opensAt)
	if err != nil {
		return 0, 0, err
	}
	closes, err := ParseClock(closesAt)
	if err != nil {
		return 0, 0, err
	}
	if opens > closes {
		return 0, 0, fmt.Errorf("opening time %s is after closing time %s", opens, closes)
	}
	return opens, closes, nil
}
