package variate

// Source produces raw uniform draws for a Generator
// Implementations must return values strictly inside the open interval (0,1).
type Source interface {
	// Name identifies the source kind. Snapshots are tagged with it.
	Name() string

	// InitializeNonRepeatable seeds the source from an unpredictable origin
	InitializeNonRepeatable() error

	// InitializeRepeatable seeds the source so that the sequence that follows is a function of seed
	InitializeRepeatable(seed int64) error

	// Next returns one uniform draw in (0,1)
	Next() float64

	// State captures everything needed to resume the current sequence
	State() (Snapshot, error)

	// LoadState resumes the sequence captured by State.
	// A snapshot from a different kind of source must fail with a *StateMismatchError.
	LoadState(snapshot Snapshot) error
}

// Snapshot is an opaque capture of a source's state
// Snapshots are values: neither the caller nor the source may retain a reference to State.
type Snapshot struct {
	Source string `json:"source"`
	State  []byte `json:"state"`
}

// NewSnapshot returns a snapshot holding its own copy of state
func NewSnapshot(source string, state []byte) Snapshot {
	return Snapshot{
		Source: source,
		State:  cloneBytes(state),
	}
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	return NewSnapshot(s.Source, s.State)
}

// Bytes returns a copy of the raw state
func (s Snapshot) Bytes() []byte {
	return cloneBytes(s.State)
}

// IsZero returns true if the snapshot was never populated
func (s Snapshot) IsZero() bool {
	return s.Source == "" && len(s.State) == 0
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)
	return c
}
