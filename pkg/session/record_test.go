package session

import (
	"encoding/json"
	"testing"
	"time"

	"tableflip.dev/focussync/pkg/task"
)

func TestFromDraftSnapshots(t *testing.T) {
	d := task.New()
	d.SetName("Code Review Session")
	d.SetVibe(task.Focus)
	d.ToggleTag("Code")
	d.AddCostTags("3", "")

	now := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	rec := FromDraft(d, 37*time.Minute, now)

	d.ToggleTag("Review")
	if len(rec.SelectedTags) != 1 {
		t.Fatalf("record shares tag storage with the draft: %v", rec.SelectedTags)
	}
	if rec.DurationSeconds != 2220 {
		t.Fatalf("expected 2220 seconds, got %d", rec.DurationSeconds)
	}
	if rec.Intensity != "focus" {
		t.Fatalf("expected lowercased vibe, got %q", rec.Intensity)
	}
	if rec.TokensEarned != TokensPerSession {
		t.Fatalf("unexpected tokens %v", rec.TokensEarned)
	}
}

func TestRecordJSONUsesMilliseconds(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	rec := Record{Timestamp: At(now), DurationSeconds: 60, Intensity: "calm", TaskName: "x"}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["timestamp"].(float64) != 1700000000123 {
		t.Fatalf("unexpected timestamp encoding: %v", raw["timestamp"])
	}

	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Timestamp.Equal(now) {
		t.Fatalf("timestamp mismatch: %v vs %v", back.Timestamp, now)
	}
}

func TestTimestampAcceptsRFC3339(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2025-01-02T03:04:05Z"`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ts.Year() != 2025 || ts.Month() != time.January {
		t.Fatalf("unexpected time %v", ts)
	}
}
