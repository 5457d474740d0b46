package app

import (
	"sort"
	"time"

	"tableflip.dev/focussync/pkg/session"
)

// IntensityTotal aggregates sessions that share an intensity.
type IntensityTotal struct {
	Intensity string
	Sessions  int
	Focused   time.Duration
}

// Report summarises the sessions completed in a time window.
type Report struct {
	Since       time.Time
	Until       time.Time
	Sessions    []session.Record
	Focused     time.Duration
	Tokens      float64
	Intensities []IntensityTotal
}

// Report summarises the loaded sessions completed between since and until.
// A zero since includes everything up to until.
func (s *State) Report(since, until time.Time) Report {
	return Summarize(s.Sessions(), since, until)
}

// Summarize builds a Report from records, newest first.
func Summarize(records []session.Record, since, until time.Time) Report {
	if !since.IsZero() && since.After(until) {
		since, until = until, since
	}
	r := Report{Since: since, Until: until}
	byIntensity := make(map[string]*IntensityTotal)
	for _, rec := range records {
		at := rec.Timestamp.Time
		if (!since.IsZero() && at.Before(since)) || at.After(until) {
			continue
		}
		r.Sessions = append(r.Sessions, rec.Clone())
		r.Focused += rec.Duration()
		r.Tokens += rec.TokensEarned

		total, ok := byIntensity[rec.Intensity]
		if !ok {
			total = &IntensityTotal{Intensity: rec.Intensity}
			byIntensity[rec.Intensity] = total
		}
		total.Sessions++
		total.Focused += rec.Duration()
	}

	sort.SliceStable(r.Sessions, func(i, j int) bool {
		return r.Sessions[i].Timestamp.After(r.Sessions[j].Timestamp.Time)
	})
	for _, t := range byIntensity {
		r.Intensities = append(r.Intensities, *t)
	}
	sort.Slice(r.Intensities, func(i, j int) bool {
		if r.Intensities[i].Focused != r.Intensities[j].Focused {
			return r.Intensities[i].Focused > r.Intensities[j].Focused
		}
		return r.Intensities[i].Intensity < r.Intensities[j].Intensity
	})
	return r
}
