// Package kst renders calendar dates in the fixed UTC+9 offset the digest runs on.
package kst

import (
	"fmt"
	"time"
)

// DateLayout is the calendar format expected by the listing API.
const DateLayout = "2006-01-02"

// Zone is a fixed UTC+9 offset; it does not depend on tz data being installed.
var Zone = time.FixedZone("KST", 9*60*60)

var weekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// Today returns the calendar date of now in UTC+9.
func Today(now time.Time) string {
	return now.In(Zone).Format(DateLayout)
}

// Yesterday returns the calendar date one day before now in UTC+9.
func Yesterday(now time.Time) string {
	return now.In(Zone).Add(-24 * time.Hour).Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, Zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// LongDate renders a YYYY-MM-DD date as "2025년 1월 15일 수요일".
// Unparseable input is returned unchanged.
func LongDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%d년 %d월 %d일 %s", t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()])
}

// Timestamp renders t in UTC+9 as "2025. 1. 15. 오후 3:04:05".
func Timestamp(t time.Time) string {
	t = t.In(Zone)
	period := "오전"
	hour := t.Hour()
	if hour >= 12 {
		period = "오후"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d. %d. %d. %s %d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), period, hour, t.Minute(), t.Second())
}
