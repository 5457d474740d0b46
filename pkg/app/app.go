// Package app holds the shared application state: the screen navigator, the
// task draft being configured, and the recent session history. Views read
// copies and are told about changes through subscriptions.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/session"
	"tableflip.dev/focussync/pkg/store"
	"tableflip.dev/focussync/pkg/task"
)

var (
	ErrNameRequired       = errors.New("app: task name is required")
	ErrInvalidDestination = errors.New("app: task can only start on the timer or wallet screen")
	ErrNoPersistence      = errors.New("app: no persistence configured")
)

// ChangeKind says which part of the state changed.
type ChangeKind int

const (
	ChangeScreen ChangeKind = iota
	ChangeDraft
	ChangeSessions
	ChangeOffline
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind   ChangeKind
	Screen Screen
}

// State is the application state shared by every view.
type State struct {
	Persistence store.Persistence

	log zerolog.Logger
	now func() time.Time
	est task.Estimator

	mu       sync.Mutex
	nav      Navigator
	draft    task.Draft
	offline  bool
	sessions []session.Record
	last     *session.Record
	subs     map[int]func(Change)
	nextID   int
}

// Option configures a State.
type Option func(*State)

func WithLogger(log zerolog.Logger) Option {
	return func(s *State) {
		s.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// WithEstimator sets the source of the mocked AI estimate.
func WithEstimator(est task.Estimator) Option {
	return func(s *State) {
		s.est = est
	}
}

// New returns a State on the welcome screen with a default draft.
func New(p store.Persistence, opts ...Option) *State {
	s := &State{
		Persistence: p,
		log:         zerolog.Nop(),
		now:         time.Now,
		nav:         NewNavigator(),
		draft:       task.New(),
		sessions:    []session.Record{},
		subs:        make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *State) emit(c Change) {
	s.mu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(c)
	}
}

// Load reads the stored session history.
func (s *State) Load(ctx context.Context) ([]session.Record, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	all := s.Persistence.LoadAll(ctx)
	s.mu.Lock()
	s.sessions = all
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeSessions})
	return copyRecords(all), nil
}

// Watch reloads the session history whenever the store changes until ctx is
// done.
func (s *State) Watch(ctx context.Context) error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	events, err := s.Persistence.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range events {
			if _, err := s.Load(ctx); err != nil {
				s.log.Warn().Err(err).Msg("app: reload sessions")
			}
		}
	}()
	return nil
}

func (s *State) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

// Navigate switches the active screen.
func (s *State) Navigate(to Screen) {
	s.mu.Lock()
	changed := s.nav.Go(to)
	s.mu.Unlock()
	if changed {
		s.emit(Change{Kind: ChangeScreen, Screen: to})
	}
}

// Back returns to the previous screen.
func (s *State) Back() {
	s.mu.Lock()
	changed := s.nav.Back()
	cur := s.nav.Current()
	s.mu.Unlock()
	if changed {
		s.emit(Change{Kind: ChangeScreen, Screen: cur})
	}
}

// Draft returns a copy of the task draft.
func (s *State) Draft() task.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// UpdateDraft applies fn to the draft and notifies subscribers.
func (s *State) UpdateDraft(fn func(d *task.Draft)) {
	s.mu.Lock()
	fn(&s.draft)
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeDraft})
}

// SyncEstimate assigns a fresh mocked AI estimate to the draft.
func (s *State) SyncEstimate() int {
	s.mu.Lock()
	s.draft.Sync(s.est)
	pct := s.draft.AIEstimationPercent
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeDraft})
	return pct
}

func (s *State) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

func (s *State) SetOffline(offline bool) {
	s.mu.Lock()
	changed := s.offline != offline
	s.offline = offline
	s.mu.Unlock()
	if changed {
		s.emit(Change{Kind: ChangeOffline})
	}
}

// Sessions returns a copy of the loaded session history, oldest first.
func (s *State) Sessions() []session.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.sessions)
}

// LastSession returns the session recorded by the most recent
// CompleteSession.
func (s *State) LastSession() (session.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return session.Record{}, false
	}
	return *s.last, true
}

// SubmitTask leaves task setup for the timer or, when joining a group, the
// wallet screen. The draft must be named.
func (s *State) SubmitTask(dest Screen) error {
	if dest != TimerScreen && dest != WalletScreen {
		return ErrInvalidDestination
	}
	s.mu.Lock()
	ready := s.draft.Ready()
	s.mu.Unlock()
	if !ready {
		return ErrNameRequired
	}
	s.Navigate(dest)
	return nil
}

// CompleteSession records the current draft as a finished session of the
// given length, resets the draft, and shows the completion screen.
func (s *State) CompleteSession(ctx context.Context, elapsed time.Duration) (session.Record, error) {
	if s.Persistence == nil {
		return session.Record{}, ErrNoPersistence
	}
	s.mu.Lock()
	rec := session.FromDraft(s.draft, elapsed, s.now())
	s.mu.Unlock()

	all, err := s.Persistence.Record(ctx, rec)
	if err != nil {
		return session.Record{}, err
	}
	s.log.Debug().Str("task", rec.TaskName).Int("seconds", rec.DurationSeconds).Msg("session recorded")

	s.mu.Lock()
	s.sessions = all
	s.last = &rec
	s.draft.Reset()
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeSessions})
	s.emit(Change{Kind: ChangeDraft})
	s.Navigate(CompletionScreen)
	return rec, nil
}

// BeginNewTask resets the draft and returns to the welcome screen.
func (s *State) BeginNewTask() {
	s.mu.Lock()
	s.draft.Reset()
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeDraft})
	s.Navigate(WelcomeScreen)
}

// ApplyPreset loads a saved task into the draft and opens task setup.
func (s *State) ApplyPreset(p task.Preset) {
	s.UpdateDraft(func(d *task.Draft) { d.ApplyPreset(p) })
	s.Navigate(TaskSetupScreen)
}

// ClearSessions removes the stored history.
func (s *State) ClearSessions() error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	if err := s.Persistence.Clear(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions = []session.Record{}
	s.mu.Unlock()
	s.emit(Change{Kind: ChangeSessions})
	return nil
}

func copyRecords(in []session.Record) []session.Record {
	out := make([]session.Record, 0, len(in))
	for _, r := range in {
		out = append(out, r.Clone())
	}
	return out
}
