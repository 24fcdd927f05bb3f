// Package source contains the random sources a variate.Generator can draw from.
package source

import (
	"errors"
	"fmt"
	"sort"

	"variate-server/pkg/variate"
)

// Source names
const (
	MT19937Name = "mt19937"
	PCGName     = "pcg"
	ChaCha8Name = "chacha8"
	CryptoName  = "crypto"
	TapeName    = "tape"
)

// DefaultName is the source used when none is configured
const DefaultName = MT19937Name

// ErrUnknownSource is returned by New for a name it does not recognize
var ErrUnknownSource = errors.New("unknown source")

// ErrNotRepeatable is returned by sources that cannot be seeded deterministically
var ErrNotRepeatable = errors.New("source cannot be seeded repeatably")

var factories = map[string]func() variate.Source{
	MT19937Name: NewMT19937,
	PCGName:     NewPCG,
	ChaCha8Name: NewChaCha8,
	CryptoName:  NewCrypto,
}

type options struct {
	tapeFile string
}

// Option configures New
type Option func(o *options)

// WithTapeFile sets the file the tape source replays
func WithTapeFile(path string) Option {
	return func(o *options) {
		o.tapeFile = path
	}
}

// New returns a fresh source by name
func New(name string, opts ...Option) (variate.Source, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if name == "" {
		name = DefaultName
	}

	if name == TapeName {
		if o.tapeFile == "" {
			return nil, errors.New("tape source requires a tape file")
		}

		tape, err := ReadTapeFile(o.tapeFile)
		if err != nil {
			return nil, err
		}

		return NewTape(tape)
	}

	factory, found := factories[name]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	return factory(), nil
}

// Names returns the names New accepts, sorted
func Names() []string {
	names := make([]string, 0, len(factories)+1)
	for name := range factories {
		names = append(names, name)
	}
	names = append(names, TapeName)

	sort.Strings(names)
	return names
}
