// Package session defines the record kept for each completed focus session.
package session

import (
	"time"

	"tableflip.dev/focussync/pkg/task"
)

// TokensPerSession is the presence-token reward credited for a completed
// session.
const TokensPerSession = 4.2

// Record is a snapshot of a finished focus session.
type Record struct {
	Timestamp       Timestamp `json:"timestamp"`
	DurationSeconds int       `json:"duration"`
	Intensity       string    `json:"intensity"`
	TokensEarned    float64   `json:"tokens"`
	TaskName        string    `json:"taskName"`
	SelectedTags    []string  `json:"selectedTags"`
	CostTags        []string  `json:"costTags"`
}

// FromDraft snapshots the draft into a record completed at now.
func FromDraft(d task.Draft, elapsed time.Duration, now time.Time) Record {
	return Record{
		Timestamp:       At(now),
		DurationSeconds: int(elapsed / time.Second),
		Intensity:       d.Vibe.Intensity(),
		TokensEarned:    TokensPerSession,
		TaskName:        d.Name,
		SelectedTags:    append([]string{}, d.SelectedTags...),
		CostTags:        append([]string{}, d.CostTags...),
	}
}

// Duration returns the recorded focus time.
func (r Record) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// Clone returns a copy of r that shares no slices with it.
func (r Record) Clone() Record {
	out := r
	out.SelectedTags = append([]string{}, r.SelectedTags...)
	out.CostTags = append([]string{}, r.CostTags...)
	return out
}
