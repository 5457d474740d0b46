package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// BlockLength is the size of a focus block; skipping jumps to the next
// multiple of it.
const BlockLength = 5 * time.Minute

// JoinCountdownStart is the time remaining to join a group when the wallet
// screen opens.
const JoinCountdownStart = 2*time.Hour + 12*time.Minute + 34*time.Second

// FocusBand classifies elapsed focus time.
type FocusBand int

const (
	EaseIn FocusBand = iota
	Flow
	HighFocus
	Ultra
)

// BandFor returns the band for an elapsed duration.
func BandFor(elapsed time.Duration) FocusBand {
	switch s := int(elapsed / time.Second); {
	case s < 300:
		return EaseIn
	case s < 900:
		return Flow
	case s < 1500:
		return HighFocus
	default:
		return Ultra
	}
}

func (b FocusBand) String() string {
	switch b {
	case EaseIn:
		return "Ease-In"
	case Flow:
		return "Flow"
	case HighFocus:
		return "High Focus"
	default:
		return "Ultra"
	}
}

// Color is the hex accent used when rendering the band.
func (b FocusBand) Color() string {
	switch b {
	case EaseIn:
		return "#60A5FA"
	case Flow:
		return "#34D399"
	case HighFocus:
		return "#FB923C"
	default:
		return "#EF4444"
	}
}

// FormatClock renders d as zero-padded MM:SS. Minutes are not wrapped at an
// hour.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// FormatCountdown renders d as "Xh Ym Zs", or "Expired!" once it reaches
// zero.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "Expired!"
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", s/3600, (s%3600)/60, s%60)
}

// SkipToNextBlock rounds elapsed up to the next BlockLength boundary. A value
// already on a boundary is returned unchanged.
func SkipToNextBlock(elapsed time.Duration) time.Duration {
	s := int64(elapsed / time.Second)
	block := int64(BlockLength / time.Second)
	return time.Duration((s+block-1)/block*block) * time.Second
}

// Stopwatch counts focus time up by one second per Tick while running.
type Stopwatch struct {
	mu      sync.Mutex
	elapsed time.Duration
	running bool
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func (s *Stopwatch) Pause() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Toggle flips between running and paused and reports the new state.
func (s *Stopwatch) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = !s.running
	return s.running
}

func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick advances the stopwatch by one second if it is running.
func (s *Stopwatch) Tick() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.elapsed += time.Second
	}
	return s.elapsed
}

func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Skip moves elapsed forward to the next block boundary.
func (s *Stopwatch) Skip() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = SkipToNextBlock(s.elapsed)
	return s.elapsed
}

func (s *Stopwatch) Reset() {
	s.mu.Lock()
	s.elapsed = 0
	s.running = false
	s.mu.Unlock()
}

// Countdown decrements by one second per Tick and stops at zero.
type Countdown struct {
	mu        sync.Mutex
	remaining time.Duration
}

// NewCountdown starts a countdown at d.
func NewCountdown(d time.Duration) *Countdown {
	if d < 0 {
		d = 0
	}
	return &Countdown{remaining: d}
}

func (c *Countdown) Tick() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining -= time.Second
		if c.remaining < 0 {
			c.remaining = 0
		}
	}
	return c.remaining
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() bool {
	return c.Remaining() == 0
}

func (c *Countdown) String() string {
	return FormatCountdown(c.Remaining())
}
