package source

import (
	"variate-server/pkg/variate"
)

// Recorder passes draws through from another source and keeps a copy of each one
type Recorder struct {
	variate.Source
	tape Tape
}

// NewRecorder wraps src
func NewRecorder(src variate.Source) *Recorder {
	return &Recorder{
		Source: src,
		tape: Tape{
			Source: src.Name(),
		},
	}
}

// InitializeRepeatable seeds the wrapped source and notes the seed on the tape if nothing was recorded yet
func (r *Recorder) InitializeRepeatable(seed int64) error {
	if err := r.Source.InitializeRepeatable(seed); err != nil {
		return err
	}

	if len(r.tape.Values) == 0 {
		r.tape.Seed = &seed
	}

	return nil
}

// InitializeNonRepeatable seeds the wrapped source
func (r *Recorder) InitializeNonRepeatable() error {
	if err := r.Source.InitializeNonRepeatable(); err != nil {
		return err
	}

	if len(r.tape.Values) == 0 {
		r.tape.Seed = nil
	}

	return nil
}

// Next draws from the wrapped source and records the value
func (r *Recorder) Next() float64 {
	v := r.Source.Next()
	r.tape.Values = append(r.tape.Values, v)
	return v
}

// Tape returns a copy of everything recorded so far
func (r *Recorder) Tape() *Tape {
	tape := r.tape
	tape.Values = make([]float64, len(r.tape.Values))
	copy(tape.Values, r.tape.Values)
	if r.tape.Seed != nil {
		seed := *r.tape.Seed
		tape.Seed = &seed
	}

	return &tape
}
