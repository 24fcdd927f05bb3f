// Package variate produces uniform and standard normal variates on top of a pluggable Source.
//
// A Generator is not safe for concurrent use. Callers that share one must serialize access themselves.
package variate

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Name is the name reported by Info
const Name = "variate"

// Version is the version reported by Info
const Version = "v1.2.0"

// Info describes a Generator
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

type checkpoint struct {
	snapshot Snapshot

	// only populated with WithSpareCheckpoints
	pending bool
	spare   float64
}

// Generator is a stateful facade over a Source
type Generator struct {
	source      Source
	initialized bool

	// pending is true iff spare holds the second half of a Box-Muller pair
	pending bool
	spare   float64

	checkpoints      []checkpoint
	spareCheckpoints bool
}

// Option configures a Generator
type Option func(g *Generator)

// WithSpareCheckpoints makes Save and RestoreLast capture the cached normal along with the source state.
// Without it a restore rewinds the source but leaves any cached normal in place.
func WithSpareCheckpoints() Option {
	return func(g *Generator) {
		g.spareCheckpoints = true
	}
}

// New returns a Generator that draws from src
// src is owned by the Generator from here on.
func New(src Source, opts ...Option) (*Generator, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	g := &Generator{
		source: src,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Info returns the generator's name, version and source
func (g *Generator) Info() Info {
	return Info{
		Name:    Name,
		Version: Version,
		Source:  g.source.Name(),
	}
}

// Initialized returns true once the source has been seeded
func (g *Generator) Initialized() bool {
	return g.initialized
}

// InitializeNonRepeatable seeds the source unpredictably and drops any cached normal
func (g *Generator) InitializeNonRepeatable() error {
	if err := g.source.InitializeNonRepeatable(); err != nil {
		return fmt.Errorf("initialize %s: %w", g.source.Name(), err)
	}

	g.clearSpare()
	g.initialized = true

	logrus.WithField("source", g.source.Name()).Debug("initialized non-repeatable")
	return nil
}

// InitializeRepeatable seeds the source from seed and drops any cached normal
func (g *Generator) InitializeRepeatable(seed int64) error {
	if err := g.source.InitializeRepeatable(seed); err != nil {
		return fmt.Errorf("initialize %s with seed %d: %w", g.source.Name(), seed, err)
	}

	g.clearSpare()
	g.initialized = true

	logrus.WithField("source", g.source.Name()).WithField("seed", seed).Debug("initialized repeatable")
	return nil
}

func (g *Generator) ensureInitialized() error {
	if g.initialized {
		return nil
	}

	return g.InitializeNonRepeatable()
}

// Uniform returns the next raw draw from the source
func (g *Generator) Uniform() (float64, error) {
	if err := g.ensureInitialized(); err != nil {
		return 0, err
	}

	return g.source.Next(), nil
}

// Normal returns a standard normal variate
// Draws are made in pairs: every other call returns the cached sine half and consumes no uniforms.
func (g *Generator) Normal() (float64, error) {
	if err := g.ensureInitialized(); err != nil {
		return 0, err
	}

	if g.pending {
		v := g.spare
		g.clearSpare()
		return v, nil
	}

	u1 := g.source.Next()
	u2 := g.source.Next()
	if !(u1 > 0 && u1 < 1) {
		return 0, &DomainError{Source: g.source.Name(), Value: u1}
	}

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2

	g.spare = r * math.Sin(theta)
	g.pending = true

	return r * math.Cos(theta), nil
}

// NormalBatch fills dst with normal variates, exactly as len(dst) calls to Normal would
func (g *Generator) NormalBatch(dst []float64) error {
	for i := range dst {
		v, err := g.Normal()
		if err != nil {
			return err
		}

		dst[i] = v
	}

	return nil
}

// Save pushes the current source state onto the checkpoint stack
func (g *Generator) Save() error {
	snapshot, err := g.SaveState()
	if err != nil {
		return err
	}

	cp := checkpoint{snapshot: snapshot}
	if g.spareCheckpoints {
		cp.pending = g.pending
		cp.spare = g.spare
	}

	g.checkpoints = append(g.checkpoints, cp)
	return nil
}

// RestoreLast pops the most recent checkpoint and loads it into the source
// It does nothing if there are no checkpoints.
func (g *Generator) RestoreLast() error {
	n := len(g.checkpoints)
	if n == 0 {
		return nil
	}

	cp := g.checkpoints[n-1]
	g.checkpoints[n-1] = checkpoint{}
	g.checkpoints = g.checkpoints[:n-1]

	if err := g.source.LoadState(cp.snapshot); err != nil {
		return fmt.Errorf("restore %s checkpoint: %w", g.source.Name(), err)
	}

	if g.spareCheckpoints {
		g.pending = cp.pending
		g.spare = cp.spare
	}

	logrus.WithField("source", g.source.Name()).WithField("remaining", len(g.checkpoints)).Debug("restored checkpoint")
	return nil
}

// Checkpoints returns the depth of the checkpoint stack
func (g *Generator) Checkpoints() int {
	return len(g.checkpoints)
}

// SaveState returns the current source state without touching the checkpoint stack
func (g *Generator) SaveState() (Snapshot, error) {
	if err := g.ensureInitialized(); err != nil {
		return Snapshot{}, err
	}

	snapshot, err := g.source.State()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s state: %w", g.source.Name(), err)
	}

	return snapshot.Clone(), nil
}

// RestoreState loads snapshot into the source
// The cached normal, if any, is left alone.
func (g *Generator) RestoreState(snapshot Snapshot) error {
	if err := g.source.LoadState(snapshot.Clone()); err != nil {
		return fmt.Errorf("restore %s state: %w", g.source.Name(), err)
	}

	g.initialized = true
	return nil
}

func (g *Generator) clearSpare() {
	g.pending = false
	g.spare = 0
}
