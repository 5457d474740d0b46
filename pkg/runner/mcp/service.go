// Package mcp provides the Model Context Protocol server integration for
// focussync.
package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"tableflip.dev/focussync/pkg/app"
	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/store"
	"tableflip.dev/focussync/pkg/task"
	"tableflip.dev/focussync/pkg/timeutil"
	"tableflip.dev/focussync/pkg/wallet"
)

// Service coordinates persistence-backed operations that are shared by the MCP server.
type Service struct {
	Persistence store.Persistence
	Now         func() time.Time
}

var errNoPersistence = errors.New("persistence is not configured")

// RecordSessionOptions captures the parameters used to record a finished
// session.
type RecordSessionOptions struct {
	TaskName string
	Vibe     string
	Minutes  int
	Tags     []string
	CostTags []string
}

// SessionDTO is a transport-friendly projection of a session record.
type SessionDTO struct {
	TaskName        string   `json:"taskName"`
	Intensity       string   `json:"intensity"`
	DurationSeconds int      `json:"duration"`
	Duration        string   `json:"durationClock"`
	Band            string   `json:"band"`
	Tokens          float64  `json:"tokens"`
	SelectedTags    []string `json:"selectedTags"`
	CostTags        []string `json:"costTags"`
	CompletedISO    string   `json:"completed"`
	CompletedUnix   int64    `json:"completedUnix"`
}

// VideoDTO describes a classified video link.
type VideoDTO struct {
	URL          string `json:"url"`
	Platform     string `json:"platform"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// AmountDTO is a USD amount converted for a transfer.
type AmountDTO struct {
	Amount  string `json:"amount"`
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

// NewService builds a service wrapper using the provided persistence layer.
func NewService(p store.Persistence) *Service {
	return &Service{Persistence: p, Now: time.Now}
}

// ListSessions returns the stored sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]SessionDTO, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	all := s.Persistence.LoadAll(ctx)
	out := make([]SessionDTO, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, toDTO(all[i]))
	}
	return out, nil
}

// Summarize reports on sessions completed within window of now. A zero window
// covers every stored session.
func (s *Service) Summarize(ctx context.Context, window time.Duration) (app.Report, error) {
	if s.Persistence == nil {
		return app.Report{}, errNoPersistence
	}
	until := s.now()
	var since time.Time
	if window > 0 {
		since = until.Add(-window)
	}
	return app.Summarize(s.Persistence.LoadAll(ctx), since, until), nil
}

// RecordSession stores a completed session and returns it.
func (s *Service) RecordSession(ctx context.Context, opts RecordSessionOptions) (*SessionDTO, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	name := strings.TrimSpace(opts.TaskName)
	if name == "" {
		return nil, app.ErrNameRequired
	}
	if opts.Minutes <= 0 {
		return nil, errors.New("minutes must be positive")
	}

	d := task.New()
	d.SetName(name)
	if strings.TrimSpace(opts.Vibe) != "" {
		v, err := task.ParseVibe(opts.Vibe)
		if err != nil {
			return nil, err
		}
		d.SetVibe(v)
	}
	for _, tag := range opts.Tags {
		if !d.HasTag(tag) {
			d.ToggleTag(tag)
		}
	}
	d.CostTags = append(d.CostTags, opts.CostTags...)

	rec := session.FromDraft(d, time.Duration(opts.Minutes)*time.Minute, s.now())
	if _, err := s.Persistence.Record(ctx, rec); err != nil {
		return nil, err
	}
	dto := toDTO(rec)
	return &dto, nil
}

// ClassifyVideo reports the platform and thumbnail for url.
func (s *Service) ClassifyVideo(url string) (*VideoDTO, error) {
	link, err := task.NewVideoLink(url, "")
	if err != nil {
		return nil, err
	}
	return &VideoDTO{URL: link.URL, Platform: string(link.Platform), ThumbnailURL: link.ThumbnailURL}, nil
}

// ConvertAmount converts a USD amount into the integer sent with a transfer.
func (s *Service) ConvertAmount(amount string) (*AmountDTO, error) {
	cents, err := wallet.ToCents(amount)
	if err != nil {
		return nil, err
	}
	return &AmountDTO{Amount: strings.TrimSpace(amount), Cents: cents, Display: wallet.FormatCents(cents)}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func toDTO(r session.Record) SessionDTO {
	return SessionDTO{
		TaskName:        r.TaskName,
		Intensity:       r.Intensity,
		DurationSeconds: r.DurationSeconds,
		Duration:        timeutil.FormatClock(r.Duration()),
		Band:            timeutil.BandFor(r.Duration()).String(),
		Tokens:          r.TokensEarned,
		SelectedTags:    append([]string{}, r.SelectedTags...),
		CostTags:        append([]string{}, r.CostTags...),
		CompletedISO:    r.Timestamp.UTC().Format(time.RFC3339),
		CompletedUnix:   r.Timestamp.Unix(),
	}
}
