package kst

import (
	"testing"
	"time"
)

func TestYesterdayCrossesUTCMidnight(t *testing.T) {
	t.Parallel()

	// 16:30 UTC on Jan 15 is already Jan 16 in UTC+9.
	now := time.Date(2025, time.January, 15, 16, 30, 0, 0, time.UTC)

	if got := Today(now); got != "2025-01-16" {
		t.Fatalf("unexpected today: %s", got)
	}
	if got := Yesterday(now); got != "2025-01-15" {
		t.Fatalf("unexpected yesterday: %s", got)
	}
}

func TestLongDate(t *testing.T) {
	t.Parallel()

	if got := LongDate("2025-01-15"); got != "2025년 1월 15일 수요일" {
		t.Fatalf("unexpected long date: %s", got)
	}
	if got := LongDate("not-a-date"); got != "not-a-date" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.January, 15, 6, 4, 5, 0, time.UTC)
	if got := Timestamp(at); got != "2025. 1. 15. 오후 3:04:05" {
		t.Fatalf("unexpected timestamp: %s", got)
	}

	midnight := time.Date(2025, time.January, 15, 15, 0, 0, 0, time.UTC)
	if got := Timestamp(midnight); got != "2025. 1. 16. 오전 12:00:00" {
		t.Fatalf("unexpected midnight timestamp: %s", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseDate("2025-13-01"); err == nil {
		t.Fatalf("expected error for invalid month")
	}
}
