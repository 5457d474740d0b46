package mcp

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/store"
	"tableflip.dev/focussync/pkg/task"
)

func newTestService() (*Service, *store.Memory) {
	mem := store.NewMemory()
	svc := NewService(mem)
	svc.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestServiceRecordSessionDefaults(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	dto, err := svc.RecordSession(ctx, RecordSessionOptions{
		TaskName: "Write report",
		Minutes:  25,
		Tags:     []string{"Write", "Write"},
	})
	if err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if dto.Intensity != "calm" {
		t.Fatalf("expected calm intensity, got %s", dto.Intensity)
	}
	if dto.DurationSeconds != 1500 || dto.Duration != "25:00" {
		t.Fatalf("unexpected duration %d %s", dto.DurationSeconds, dto.Duration)
	}
	if dto.Band != "Ultra" {
		t.Fatalf("expected Ultra band, got %s", dto.Band)
	}
	if len(dto.SelectedTags) != 1 {
		t.Fatalf("expected duplicate tag to be collapsed, got %v", dto.SelectedTags)
	}
	if got := mem.LoadAll(ctx); len(got) != 1 {
		t.Fatalf("expected one stored session, got %d", len(got))
	}
}

func TestServiceRecordSessionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.RecordSession(ctx, RecordSessionOptions{Minutes: 5}); err != app.ErrNameRequired {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.RecordSession(ctx, RecordSessionOptions{TaskName: "x"}); err == nil {
		t.Fatalf("expected error for zero minutes")
	}
	if _, err := svc.RecordSession(ctx, RecordSessionOptions{TaskName: "x", Minutes: 5, Vibe: "sleepy"}); err == nil {
		t.Fatalf("expected error for unknown vibe")
	}
}

func TestServiceListSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	for _, name := range []string{"A", "B", "C", "D"} {
		if _, err := svc.RecordSession(ctx, RecordSessionOptions{TaskName: name, Minutes: 1, Vibe: string(task.Focus)}); err != nil {
			t.Fatalf("RecordSession %s: %v", name, err)
		}
	}
	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].TaskName != "D" || sessions[2].TaskName != "B" {
		t.Fatalf("unexpected order %s %s", sessions[0].TaskName, sessions[2].TaskName)
	}
}

func TestServiceSummarize(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	if _, err := svc.RecordSession(ctx, RecordSessionOptions{TaskName: "A", Minutes: 10}); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	report, err := svc.Summarize(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(report.Sessions) != 1 || report.Focused != 10*time.Minute {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestServiceClassifyVideo(t *testing.T) {
	svc, _ := newTestService()
	dto, err := svc.ClassifyVideo("https://youtu.be/AOZulahHWSk")
	if err != nil {
		t.Fatalf("ClassifyVideo: %v", err)
	}
	if dto.Platform != string(task.YouTube) {
		t.Fatalf("expected YouTube, got %s", dto.Platform)
	}
	if _, err := svc.ClassifyVideo("  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestServiceConvertAmount(t *testing.T) {
	svc, _ := newTestService()
	dto, err := svc.ConvertAmount("0.235")
	if err != nil {
		t.Fatalf("ConvertAmount: %v", err)
	}
	if dto.Cents != 24 || dto.Display != "$0.24" {
		t.Fatalf("unexpected conversion %+v", dto)
	}
	if _, err := svc.ConvertAmount("-1"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestServiceWithoutPersistence(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.ListSessions(context.Background()); err == nil {
		t.Fatalf("expected error without persistence")
	}
}
