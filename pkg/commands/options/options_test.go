package options

import (
	"strings"
	"testing"
	"time"
)

func TestWrap(t *testing.T) {
	got := Wrap("one  two\nthree four", 9)
	if got != "one two\nthree\nfour" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if Wrap("   ", 10) != "   " {
		t.Fatalf("blank text should be returned unchanged")
	}
	for _, line := range strings.Split(Wrap80(strings.Repeat("word ", 40)), "\n") {
		if len(line) > 80 {
			t.Fatalf("line longer than 80: %q", line)
		}
	}
}

func TestGetOn(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"":          now,
		"2025-2-28": time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		"2024-11":   time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		"3/4":       time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		o := OnOptions{OnString: in}
		got, err := o.GetOn(now)
		if err != nil {
			t.Fatalf("GetOn(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("GetOn(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := (&OnOptions{OnString: "soon"}).GetOn(now); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
