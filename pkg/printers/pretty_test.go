package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/wallet"
)

func init() {
	color.NoColor = true
}

func TestSessionsNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	pp.Sessions(
		session.Record{TaskName: "first", DurationSeconds: 90, Intensity: "calm", TokensEarned: 4.2, Timestamp: session.At(base)},
		session.Record{TaskName: "second", DurationSeconds: 600, Intensity: "focus", TokensEarned: 4.2, Timestamp: session.At(base.Add(time.Hour))},
	)
	out := buf.String()
	if !strings.Contains(out, "2 sessions") {
		t.Fatalf("missing count in %q", out)
	}
	if strings.Index(out, "second") > strings.Index(out, "first") {
		t.Fatalf("expected newest first:\n%s", out)
	}
	if !strings.Contains(out, "01:30") || !strings.Contains(out, "10:00") {
		t.Fatalf("expected clock durations:\n%s", out)
	}
}

func TestSessionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Sessions()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none marker, got %q", buf.String())
	}
}

func TestReportEmptyWindow(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Report(app.Report{Until: time.Now()}, "1w")
	if !strings.Contains(buf.String(), "No sessions found") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestBalancesUseWholeUnits(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Balances("w1", wallet.TokenBalance{
		Token:  wallet.Token{Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		Amount: "1000000",
	})
	out := buf.String()
	if !strings.Contains(out, "USDC") || !strings.Contains(out, " 1 ") {
		t.Fatalf("unexpected balance output %q", out)
	}
}

func TestOnboardingShowsError(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Onboarding(onboarding.State{Step: onboarding.StepTransfer, Amount: "0.23", Error: "Invalid amount"})
	out := buf.String()
	if !strings.Contains(out, "transfer") || !strings.Contains(out, "Invalid amount") || !strings.Contains(out, "$0.23") {
		t.Fatalf("unexpected onboarding output %q", out)
	}
}

func TestSessionsPerDay(t *testing.T) {
	march := time.Date(2025, 3, 1, 1, 0, 0, 0, time.Local)
	counts := SessionsPerDay(march,
		session.Record{Timestamp: session.At(time.Date(2025, 3, 4, 10, 0, 0, 0, time.Local))},
		session.Record{Timestamp: session.At(time.Date(2025, 3, 4, 18, 0, 0, 0, time.Local))},
		session.Record{Timestamp: session.At(time.Date(2025, 4, 4, 10, 0, 0, 0, time.Local))},
	)
	if len(counts) != 31 {
		t.Fatalf("expected 31 days, got %d", len(counts))
	}
	if counts[3] != 2 {
		t.Fatalf("expected 2 sessions on the 4th, got %d", counts[3])
	}
}
