package commands

import (
	"reflect"
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := New()
	for _, path := range [][]string{
		{"ui"},
		{"sessions"},
		{"sessions", "record"},
		{"sessions", "clear"},
		{"task", "video"},
		{"task", "presets"},
		{"wallet", "onboard"},
		{"wallet", "transfer"},
		{"serve-mock"},
		{"mcp"},
		{"version"},
	} {
		cmd, rest, err := root.Find(path)
		if err != nil || len(rest) != 0 {
			t.Fatalf("Find(%v) = %v, %v, %v", path, cmd, rest, err)
		}
		if cmd.Name() != path[len(path)-1] {
			t.Fatalf("Find(%v) resolved to %q", path, cmd.Name())
		}
	}
}

func TestVibeCompletions(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"empty":  {in: "", want: []string{"Calm", "Focus", "Creative", "Energetic"}},
		"prefix": {in: "c", want: []string{"Calm", "Creative"}},
		"case":   {in: "FO", want: []string{"Focus"}},
		"none":   {in: "x", want: nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := vibeCompletions(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("vibeCompletions(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
