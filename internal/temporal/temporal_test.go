package temporal

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseTimeOfDayRoundTrip(t *testing.T) {
	for hour := 0; hour < 24; hour += 5 {
		for minute := 0; minute < 60; minute += 13 {
			s := fmt.Sprintf("%02d:%02d", hour, minute)
			h, m, err := ParseTimeOfDay(s)
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) failed: %v", s, err)
			}
			if h != hour || m != minute {
				t.Fatalf("ParseTimeOfDay(%q) = (%d, %d)", s, h, m)
			}
		}
	}
}

func TestParseTimeOfDayMalformed(t *testing.T) {
	cases := []string{"", "12", "12:", ":30", "ab:cd", "24:00", "12:60", "-1:00", "12:30:45"}
	for _, s := range cases {
		if _, _, err := ParseTimeOfDay(s); !errors.Is(err, ErrMalformedTime) {
			t.Fatalf("ParseTimeOfDay(%q) should yield ErrMalformedTime, got %v", s, err)
		}
	}
}

func TestWeekdayIndex(t *testing.T) {
	cases := map[string]int{
		"Sunday":    0,
		"sun":       0,
		"monday":    1,
		"TUE":       2,
		"Wednesday": 3,
		"thu":       4,
		"Friday":    5,
		"saturday":  6,
		"sat":       6,
	}
	for name, want := range cases {
		if got := WeekdayIndex(name); got != want {
			t.Fatalf("WeekdayIndex(%q) = %d, want %d", name, got, want)
		}
	}

	// Lenient fallback: unknown names are Sunday.
	if got := WeekdayIndex("someday"); got != 0 {
		t.Fatalf("unknown weekday should map to 0, got %d", got)
	}
	if KnownWeekday("someday") {
		t.Fatal("KnownWeekday should reject unknown names")
	}
	if !KnownWeekday("Fri") {
		t.Fatal("KnownWeekday should accept three-letter names")
	}
}

func TestDateParseAndString(t *testing.T) {
	d, err := ParseDate("2026-08-25")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Year != 2026 || d.Month != time.August || d.Day != 25 {
		t.Fatalf("unexpected date: %+v", d)
	}
	if d.String() != "2026-08-25" {
		t.Fatalf("String() = %q", d.String())
	}

	if _, err := ParseDate("25/08/2026"); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}

func TestDateAddDays(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 1}
	if got := d.AddDays(-1); got.String() != "2024-02-29" {
		t.Fatalf("leap year rollover failed: %s", got)
	}
	if got := d.AddDays(365); got.String() != "2025-03-01" {
		t.Fatalf("year add failed: %s", got)
	}
}

func TestDateOrdering(t *testing.T) {
	a := Date{Year: 2025, Month: time.December, Day: 31}
	b := Date{Year: 2026, Month: time.January, Day: 1}
	if !a.Before(b) || b.Before(a) {
		t.Fatal("ordering across year boundary broken")
	}
	if a.Compare(a) != 0 {
		t.Fatal("Compare with self should be 0")
	}
	if !b.After(a) {
		t.Fatal("After should mirror Before")
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := map[string]int{
		"2024-02-10": 29,
		"2025-02-10": 28,
		"2026-04-01": 30,
		"2026-12-25": 31,
	}
	for s, want := range cases {
		d, err := ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", s, err)
		}
		if got := LastDayOfMonth(d.Time(time.UTC)); got != want {
			t.Fatalf("LastDayOfMonth(%s) = %d, want %d", s, got, want)
		}
	}
}

func TestParseMonthDay(t *testing.T) {
	m, d, err := ParseMonthDay("12-31")
	if err != nil || m != time.December || d != 31 {
		t.Fatalf("ParseMonthDay(12-31) = (%v, %d, %v)", m, d, err)
	}

	m, d, err = ParseMonthDay("2026-06-15")
	if err != nil || m != time.June || d != 15 {
		t.Fatalf("year form should be accepted: (%v, %d, %v)", m, d, err)
	}

	for _, s := range []string{"", "13-01", "06-32", "june-1", "06"} {
		if _, _, err := ParseMonthDay(s); !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("ParseMonthDay(%q) should fail with ErrMalformedDate, got %v", s, err)
		}
	}
}
