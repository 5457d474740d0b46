// Package store persists the most recent focus sessions in a local
// key-value directory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/session"
)

const (
	// SessionsKey is the fixed key holding the JSON array of sessions.
	SessionsKey = "sessions"
	// MaxSessions bounds the retained history; older sessions are evicted
	// first.
	MaxSessions = 3
)

// Persistence defines the persistence contract for completed sessions.
type Persistence interface {
	// Record appends rec, evicting the oldest records beyond MaxSessions, and
	// returns the retained history.
	Record(ctx context.Context, rec session.Record) ([]session.Record, error)
	// LoadAll returns the stored history, oldest first. Missing or malformed
	// storage yields an empty slice.
	LoadAll(ctx context.Context) []session.Record
	Clear() error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Option configures a Persistence.
type Option func(*persistence)

// WithLogger routes store warnings to log.
func WithLogger(log zerolog.Logger) Option {
	return func(p *persistence) {
		p.log = log
	}
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
		}),
		basePath: basePath,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger
}

func (p *persistence) LoadAll(_ context.Context) []session.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.read()
}

func (p *persistence) read() []session.Record {
	if !p.d.Has(SessionsKey) {
		return []session.Record{}
	}
	val, err := p.d.Read(SessionsKey)
	if err != nil {
		p.log.Warn().Err(err).Str("key", SessionsKey).Msg("store: read sessions")
		return []session.Record{}
	}
	return decode(val, p.log)
}

func (p *persistence) Record(_ context.Context, rec session.Record) ([]session.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := Append(p.read(), rec)
	data, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("store: encode sessions: %w", err)
	}
	if err := p.d.Write(SessionsKey, data); err != nil {
		return nil, fmt.Errorf("store: write sessions: %w", err)
	}
	return all, nil
}

func (p *persistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.d.Has(SessionsKey) {
		return nil
	}
	if err := p.d.Erase(SessionsKey); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: clear sessions: %w", err)
	}
	return nil
}

// Append adds rec to history and drops the oldest entries so at most
// MaxSessions remain. The input slice is not modified.
func Append(history []session.Record, rec session.Record) []session.Record {
	all := make([]session.Record, 0, len(history)+1)
	all = append(all, history...)
	all = append(all, rec)
	if over := len(all) - MaxSessions; over > 0 {
		all = all[over:]
	}
	return all
}

func decode(val []byte, log zerolog.Logger) []session.Record {
	if len(val) == 0 {
		return []session.Record{}
	}
	var list []session.Record
	if err := json.Unmarshal(val, &list); err != nil {
		log.Warn().Err(err).Msg("store: malformed sessions blob, starting empty")
		return []session.Record{}
	}
	if list == nil {
		return []session.Record{}
	}
	return list
}
