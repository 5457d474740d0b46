package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	dur, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 7 * 24 * time.Hour
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "1w" {
		t.Fatalf("expected label 1w, got %s", label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	dur, label, err := ParseWindow("1w2d6h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24+2*24+6)*time.Hour + 30*time.Minute
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "1w2d6h30m" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	if _, _, err := ParseWindow("noop"); err == nil {
		t.Fatalf("expected error for invalid window")
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"90", 90},
		{" 45 ", 45},
		{"1h30m", 90},
		{"2h", 120},
	}
	for _, tc := range tests {
		got, err := ParseMinutes(tc.in)
		if err != nil {
			t.Fatalf("ParseMinutes(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if _, err := ParseMinutes("soon"); err == nil {
		t.Fatalf("expected error for invalid minutes")
	}
}

func TestFormatWindow(t *testing.T) {
	if got := FormatWindow(0); got != "0s" {
		t.Fatalf("expected 0s, got %s", got)
	}
	if got := FormatWindow(25 * time.Hour); got != "1d1h" {
		t.Fatalf("expected 1d1h, got %s", got)
	}
}
