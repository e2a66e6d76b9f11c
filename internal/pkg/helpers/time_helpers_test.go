package helpers

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:00", want: 480},
		{in: "13:30", want: 810},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "08:60", wantErr: true},
		{in: "morning", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 480, 525, 810, 1439} {
		s := FormatClock(minutes)
		got, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", s, err)
		}
		if got != minutes {
			t.Errorf("round trip %d -> %q -> %d", minutes, s, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-06-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", d, want)
	}
	if FormatDate(d) != "2026-06-15" {
		t.Errorf("FormatDate = %q", FormatDate(d))
	}

	if _, err := ParseDate("15/06/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
