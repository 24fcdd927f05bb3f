// Package session keeps the generators that clients drive over the API.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"variate-server/pkg/source"
	"variate-server/pkg/variate"
)

// ErrSessionNotFound is returned for an unknown session uuid
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned by Create once the registry is full
var ErrTooManySessions = errors.New("too many live sessions")

// Session owns one generator
// The generator is only reachable through Do, which serializes access.
type Session struct {
	UUID    string
	Created time.Time

	mu        sync.Mutex
	generator *variate.Generator
	lastUsed  time.Time
}

// Do runs fn with exclusive access to the session's generator
func (s *Session) Do(fn func(g *variate.Generator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return fn(s.generator)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastUsed
}

// Info describes the session's generator
func (s *Session) Info() variate.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generator.Info()
}

// Options configure a new session
type Options struct {
	Source string `json:"source"`
	// Seed initializes the generator repeatably. Nil leaves it to auto-initialize.
	Seed             *int64 `json:"seed,omitempty"`
	SpareCheckpoints bool   `json:"spareCheckpoints"`
}

// Registry is responsible for tracking live sessions
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// sourceOpts apply to every source the registry creates
	sourceOpts []source.Option
	defaults   Options

	// maxSessions caps the live sessions, 0 means no cap
	maxSessions int
}

// NewRegistry returns an empty registry
func NewRegistry(opts ...source.Option) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		sourceOpts: opts,
	}
}

// SetDefaults sets the source and seed used when a request leaves them out
func (r *Registry) SetDefaults(defaults Options) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaults = defaults
}

// SetMaxSessions caps the number of live sessions
func (r *Registry) SetMaxSessions(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.maxSessions = n
}

// Create starts a session with a fresh source
func (r *Registry) Create(opts Options) (*Session, error) {
	r.mu.RLock()
	if opts.Source == "" {
		opts.Source = r.defaults.Source
		if opts.Seed == nil {
			opts.Seed = r.defaults.Seed
		}
	}
	r.mu.RUnlock()

	src, err := source.New(opts.Source, r.sourceOpts...)
	if err != nil {
		return nil, err
	}

	var genOpts []variate.Option
	if opts.SpareCheckpoints {
		genOpts = append(genOpts, variate.WithSpareCheckpoints())
	}

	g, err := variate.New(src, genOpts...)
	if err != nil {
		return nil, err
	}

	if opts.Seed != nil {
		if err := g.InitializeRepeatable(*opts.Seed); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	s := &Session{
		UUID:      uuid.New().String(),
		Created:   now,
		generator: g,
		lastUsed:  now,
	}

	r.mu.Lock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.mu.Unlock()
		return nil, ErrTooManySessions
	}
	r.sessions[s.UUID] = s
	r.mu.Unlock()

	logrus.WithField("uuid", s.UUID).WithField("source", src.Name()).Debug("session created")
	return s, nil
}

// Get returns a live session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, found := r.sessions[id]
	if !found {
		return nil, ErrSessionNotFound
	}

	return s, nil
}

// Remove drops a session
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.sessions[id]; !found {
		return ErrSessionNotFound
	}

	delete(r.sessions, id)
	logrus.WithField("uuid", id).Debug("session removed")
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Sweep removes the sessions nobody has used for longer than idle and returns how many were removed
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		logrus.WithField("removed", removed).WithField("remaining", len(r.sessions)).Debug("swept idle sessions")
	}

	return removed
}

// StartSweeper sweeps idle sessions every interval until ctx is done
func (r *Registry) StartSweeper(ctx context.Context, idle, interval time.Duration) {
	go r.sweepLoop(ctx, idle, interval)
}

func (r *Registry) sweepLoop(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}
