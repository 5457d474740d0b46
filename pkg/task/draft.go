// Package task holds the in-memory record of the task being configured
// before a focus session starts.
package task

import (
	"math/rand"
	"slices"
	"strings"
	"time"
)

const (
	MinDuration     = 15
	MaxDuration     = 240
	DefaultDuration = 60

	// DefaultEstimate is the AI estimate shown before the first sync.
	DefaultEstimate = 70
)

// Estimator supplies the randomness behind the mocked AI estimate.
// *rand.Rand satisfies it.
type Estimator interface {
	Intn(n int) int
}

// Draft describes the task being set up. The zero value is not ready for use;
// call New.
type Draft struct {
	Name                string      `json:"name"`
	Vibe                Vibe        `json:"vibe"`
	ExpectedDuration    int         `json:"expectedDurationMinutes"`
	SelectedTags        []string    `json:"selectedTags"`
	CostTags            []string    `json:"costTags"`
	VideoTags           []VideoLink `json:"videoTags"`
	AIEstimationPercent int         `json:"aiEstimationPercent"`
}

// New returns a draft with every field at its default.
func New() Draft {
	return Draft{
		Vibe:                DefaultVibe,
		ExpectedDuration:    DefaultDuration,
		SelectedTags:        []string{},
		CostTags:            []string{},
		VideoTags:           []VideoLink{},
		AIEstimationPercent: DefaultEstimate,
	}
}

// Reset puts every field back to its default.
func (d *Draft) Reset() {
	*d = New()
}

// Ready reports whether the draft can proceed past setup.
func (d Draft) Ready() bool {
	return strings.TrimSpace(d.Name) != ""
}

func (d *Draft) SetName(name string) {
	d.Name = name
}

func (d *Draft) SetVibe(v Vibe) {
	d.Vibe = v
}

// SetDuration stores minutes clamped into [MinDuration, MaxDuration].
func (d *Draft) SetDuration(minutes int) {
	d.ExpectedDuration = ClampDuration(minutes)
}

// ClampDuration bounds minutes to the supported range.
func ClampDuration(minutes int) int {
	switch {
	case minutes < MinDuration:
		return MinDuration
	case minutes > MaxDuration:
		return MaxDuration
	default:
		return minutes
	}
}

// HasTag reports whether tag is selected.
func (d Draft) HasTag(tag string) bool {
	return slices.Contains(d.SelectedTags, tag)
}

// ToggleTag removes tag when selected and appends it otherwise.
func (d *Draft) ToggleTag(tag string) {
	if d.HasTag(tag) {
		d.RemoveTag(tag)
		return
	}
	d.SelectedTags = append(d.SelectedTags, tag)
}

// RemoveTag drops tag; removing an absent tag is a no-op.
func (d *Draft) RemoveTag(tag string) {
	d.SelectedTags = slices.DeleteFunc(d.SelectedTags, func(t string) bool { return t == tag })
}

// AddCostTags appends the "$<perMinute>/min" and "$<total>" labels for the
// non-empty inputs, in that order.
func (d *Draft) AddCostTags(perMinute, total string) {
	if p := strings.TrimSpace(perMinute); p != "" {
		d.CostTags = append(d.CostTags, "$"+p+"/min")
	}
	if t := strings.TrimSpace(total); t != "" {
		d.CostTags = append(d.CostTags, "$"+t)
	}
}

// RemoveCostTag drops every cost label equal to tag.
func (d *Draft) RemoveCostTag(tag string) {
	d.CostTags = slices.DeleteFunc(d.CostTags, func(t string) bool { return t == tag })
}

// AddVideo appends link unless a link with the same URL is already present.
// It reports whether the link was added.
func (d *Draft) AddVideo(link VideoLink) bool {
	for _, v := range d.VideoTags {
		if v.URL == link.URL {
			return false
		}
	}
	d.VideoTags = append(d.VideoTags, link)
	return true
}

// RemoveVideo drops the link whose URL equals url.
func (d *Draft) RemoveVideo(url string) {
	d.VideoTags = slices.DeleteFunc(d.VideoTags, func(v VideoLink) bool { return v.URL == url })
}

// Sync assigns a fresh mocked AI estimate in [70, 99].
func (d *Draft) Sync(est Estimator) {
	if est == nil {
		est = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d.AIEstimationPercent = clampPercent(est.Intn(30) + 70)
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// ApplyPreset loads a saved task into the draft.
func (d *Draft) ApplyPreset(p Preset) {
	d.Name = p.Name
	d.SelectedTags = append([]string{}, p.Tags...)
	d.CostTags = append([]string{}, p.CostTags...)
	d.VideoTags = append([]VideoLink{}, p.VideoTags...)
	if p.Vibe != "" {
		d.Vibe = p.Vibe
	}
}

// Clone returns a deep copy so callers can hold snapshots.
func (d Draft) Clone() Draft {
	out := d
	out.SelectedTags = append([]string{}, d.SelectedTags...)
	out.CostTags = append([]string{}, d.CostTags...)
	out.VideoTags = make([]VideoLink, len(d.VideoTags))
	for i, v := range d.VideoTags {
		v.Tags = append([]string(nil), v.Tags...)
		out.VideoTags[i] = v
	}
	return out
}
