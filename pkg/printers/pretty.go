// Package printers renders sessions, wallets and onboarding state for the
// command line.
package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/onboarding"
	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/timeutil"
	"tableflip.dev/focussync/pkg/wallet"
)

const stamp = "2006-01-02 15:04"

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
	// Width bounds rendered markdown; zero means 80.
	Width int
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.out(), "s")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Sessions prints records newest first.
func (pp *PrettyPrint) Sessions(records ...session.Record) {
	pp.TitleWithCount("Recent sessions", len(records), "session")
	if len(records) == 0 {
		pp.none()
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("When"), bold.Sprint("Task"), bold.Sprint("Length"), bold.Sprint("Intensity"), bold.Sprint("Tokens"), bold.Sprint("Tags"))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		name := r.TaskName
		if strings.TrimSpace(name) == "" {
			name = faint.Sprint("<unnamed>")
		}
		tags := append(append([]string{}, r.SelectedTags...), r.CostTags...)
		tbl.AddRow(
			r.Timestamp.Local().Format(stamp),
			name,
			timeutil.FormatClock(r.Duration()),
			r.Intensity,
			fmt.Sprintf("%.1f", r.TokensEarned),
			strings.Join(tags, ", "),
		)
	}
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Report prints a window summary followed by its sessions.
func (pp *PrettyPrint) Report(r app.Report, label string) {
	since := "the beginning"
	if !r.Since.IsZero() {
		since = r.Since.Local().Format(stamp)
	}
	pp.Title(fmt.Sprintf("Report · last %s (%s → %s)", label, since, r.Until.Local().Format(stamp)))

	if len(r.Sessions) == 0 {
		_, _ = fmt.Fprintln(pp.out(), "  No sessions found in this window.")
		pp.NewLine()
		return
	}

	_, _ = fmt.Fprintf(pp.out(), "  Focused %s across %d sessions, %.1f tokens earned\n\n",
		timeutil.FormatWindow(r.Focused), len(r.Sessions), r.Tokens)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, it := range r.Intensities {
		band := timeutil.BandFor(it.Focused / time.Duration(it.Sessions))
		tbl.AddRow("  "+it.Intensity, it.Sessions, timeutil.FormatClock(it.Focused), color.New(color.Faint).Sprint(band.String()))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	oldestFirst := make([]session.Record, 0, len(r.Sessions))
	for i := len(r.Sessions) - 1; i >= 0; i-- {
		oldestFirst = append(oldestFirst, r.Sessions[i])
	}
	pp.Sessions(oldestFirst...)
}

// Wallets prints the user's wallets.
func (pp *PrettyPrint) Wallets(userID string, wallets ...wallet.WalletInfo) {
	pp.TitleWithCount("Wallets for "+userID, len(wallets), "wallet")
	if len(wallets) == 0 {
		pp.none()
		return
	}
	y := color.New(color.FgHiYellow, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, w := range wallets {
		tbl.AddRow(y.Sprint(w.ID), w.Address, w.Type, w.Description)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Balances prints token balances in whole units.
func (pp *PrettyPrint) Balances(walletID string, balances ...wallet.TokenBalance) {
	title := "Balance"
	if walletID != "" {
		title += " of " + walletID
	}
	pp.Title(title)
	if len(balances) == 0 {
		pp.none()
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, b := range balances {
		tbl.AddRow(b.Token.Symbol, wallet.FormatBaseUnits(b.Amount, b.Token.Decimals), b.Token.Name)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Onboarding prints a workflow snapshot.
func (pp *PrettyPrint) Onboarding(s onboarding.State) {
	pp.Title("Group payment")

	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Step"), s.Step.String())
	if s.LoginMethod != onboarding.MethodNone {
		tbl.AddRow(bold.Sprint("Login"), string(s.LoginMethod))
	}
	tbl.AddRow(bold.Sprint("Amount"), "$"+s.Amount)
	if s.UserInfo != nil {
		tbl.AddRow(bold.Sprint("User"), s.UserInfo.UserID)
	}
	if s.WalletInfo != nil {
		tbl.AddRow(bold.Sprint("Wallets"), len(s.WalletInfo.Wallets))
	}
	for _, b := range s.Balances {
		tbl.AddRow(bold.Sprint("Balance"), b.Display())
	}
	if s.TransferStatus != "" {
		tbl.AddRow(bold.Sprint("Status"), s.TransferStatus)
	}
	if s.Error != "" {
		tbl.AddRow(bold.Sprint("Error"), red.Sprint(s.Error))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Markdown renders md for the terminal.
func (pp *PrettyPrint) Markdown(md string) {
	_, _ = fmt.Fprint(pp.out(), RenderMarkdown(md, pp.Width))
}

// RenderMarkdown renders md with glamour wrapped at width (80 when unset),
// falling back to the raw text if the renderer cannot be built.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if out, err := renderer.Render(md); err == nil {
			return out
		}
	}
	return md + "\n"
}
