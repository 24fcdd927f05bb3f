package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"variate-server/internal/rng"
	"variate-server/pkg/variate"
)

// ErrEmptyTape is returned when a tape has no values to replay
var ErrEmptyTape = errors.New("tape has no values")

// Tape is a recorded sequence of uniform draws
type Tape struct {
	// Source is the name of the source the values were recorded from
	Source string `yaml:"source,omitempty"`
	// Seed is set if the recording started from a repeatable seed
	Seed   *int64    `yaml:"seed,omitempty"`
	Values []float64 `yaml:"values"`
}

// Validate ensures every value can be replayed through a Generator
func (t *Tape) Validate() error {
	if len(t.Values) == 0 {
		return ErrEmptyTape
	}

	for i, v := range t.Values {
		if !(v > 0 && v < 1) {
			return fmt.Errorf("tape value %d is %v, outside the open interval (0,1)", i, v)
		}
	}

	return nil
}

// ReadTape decodes and validates a yaml tape
func ReadTape(r io.Reader) (*Tape, error) {
	var tape Tape
	if err := yaml.NewDecoder(r).Decode(&tape); err != nil {
		return nil, fmt.Errorf("decode tape: %w", err)
	}

	if err := tape.Validate(); err != nil {
		return nil, err
	}

	return &tape, nil
}

// ReadTapeFile reads a tape from disk
func ReadTapeFile(path string) (*Tape, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTape(file)
}

// Write encodes the tape as yaml
func (t *Tape) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return err
	}

	return enc.Close()
}

// tapeSource replays a tape, wrapping around at the end
type tapeSource struct {
	values []float64
	pos    uint64
}

// NewTape returns a source that replays tape
// The repeatable seed selects the starting position.
func NewTape(tape *Tape) (variate.Source, error) {
	if err := tape.Validate(); err != nil {
		return nil, err
	}

	values := make([]float64, len(tape.Values))
	copy(values, tape.Values)

	return &tapeSource{
		values: values,
	}, nil
}

func (t *tapeSource) Name() string {
	return TapeName
}

func (t *tapeSource) InitializeNonRepeatable() error {
	t.pos = rng.Seed() % uint64(len(t.values))
	return nil
}

func (t *tapeSource) InitializeRepeatable(seed int64) error {
	t.pos = uint64(seed) % uint64(len(t.values))
	return nil
}

func (t *tapeSource) Next() float64 {
	v := t.values[t.pos]
	t.pos = (t.pos + 1) % uint64(len(t.values))
	return v
}

func (t *tapeSource) State() (variate.Snapshot, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], t.pos)
	return variate.NewSnapshot(TapeName, buf[:]), nil
}

func (t *tapeSource) LoadState(snapshot variate.Snapshot) error {
	if err := variate.CheckSnapshot(TapeName, snapshot); err != nil {
		return err
	}

	if len(snapshot.State) != 8 {
		return &variate.StateMismatchError{
			Want:   TapeName,
			Got:    snapshot.Source,
			Reason: "unexpected state length",
		}
	}

	pos := binary.BigEndian.Uint64(snapshot.State)
	if pos >= uint64(len(t.values)) {
		return &variate.StateMismatchError{
			Want:   TapeName,
			Got:    snapshot.Source,
			Reason: fmt.Sprintf("position %d is past the end of a %d value tape", pos, len(t.values)),
		}
	}

	t.pos = pos
	return nil
}
