package timeutil

import (
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	tests := map[time.Duration]string{
		0:                           "00:00",
		59 * time.Second:            "00:59",
		61 * time.Second:            "01:01",
		37 * time.Minute:            "37:00",
		75*time.Minute + time.Second: "75:01",
		-time.Second:                "00:00",
	}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Fatalf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	if got := FormatCountdown(JoinCountdownStart); got != "2h 12m 34s" {
		t.Fatalf("unexpected countdown %q", got)
	}
	if got := FormatCountdown(0); got != "Expired!" {
		t.Fatalf("expected Expired!, got %q", got)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		secs int
		want FocusBand
	}{
		{0, EaseIn},
		{299, EaseIn},
		{300, Flow},
		{899, Flow},
		{900, HighFocus},
		{1499, HighFocus},
		{1500, Ultra},
		{5000, Ultra},
	}
	for _, tc := range tests {
		if got := BandFor(time.Duration(tc.secs) * time.Second); got != tc.want {
			t.Fatalf("BandFor(%ds) = %v, want %v", tc.secs, got, tc.want)
		}
	}
	if HighFocus.String() != "High Focus" {
		t.Fatalf("unexpected label %q", HighFocus.String())
	}
}

func TestSkipToNextBlock(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 300},
		{299, 300},
		{300, 300},
		{301, 600},
	}
	for _, tc := range tests {
		got := SkipToNextBlock(time.Duration(tc.in) * time.Second)
		if got != time.Duration(tc.want)*time.Second {
			t.Fatalf("SkipToNextBlock(%d) = %v, want %ds", tc.in, got, tc.want)
		}
	}
}

func TestStopwatch(t *testing.T) {
	var s Stopwatch
	s.Tick()
	if s.Elapsed() != 0 {
		t.Fatalf("paused stopwatch advanced")
	}
	s.Start()
	s.Tick()
	s.Tick()
	if s.Elapsed() != 2*time.Second {
		t.Fatalf("expected 2s, got %v", s.Elapsed())
	}
	if got := s.Skip(); got != 5*time.Minute {
		t.Fatalf("expected skip to 5m, got %v", got)
	}
	if s.Toggle() {
		t.Fatalf("expected toggle to pause")
	}
	s.Tick()
	if s.Elapsed() != 5*time.Minute {
		t.Fatalf("paused stopwatch advanced after toggle")
	}
	s.Reset()
	if s.Elapsed() != 0 || s.Running() {
		t.Fatalf("reset did not clear stopwatch")
	}
}

func TestCountdownFloorsAtZero(t *testing.T) {
	c := NewCountdown(2 * time.Second)
	c.Tick()
	c.Tick()
	c.Tick()
	if !c.Expired() {
		t.Fatalf("expected expired countdown, remaining %v", c.Remaining())
	}
	if c.String() != "Expired!" {
		t.Fatalf("unexpected label %q", c.String())
	}
}
