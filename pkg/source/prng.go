package source

import (
	"encoding/binary"
	"math/rand/v2"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext/prng"

	"variate-server/internal/rng"
	"variate-server/pkg/variate"
)

// generator is a seeded bit generator whose state can be marshalled
type generator interface {
	Uint64() uint64
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// prngSource adapts a pseudo-random generator to variate.Source
// Seeding and loading always build a new generator, so a failed load leaves the current one untouched.
type prngSource struct {
	name string

	// stateLen is the exact length of a marshalled state, or 0 if the generator validates it
	stateLen int

	seeded func(seed uint64) generator
	blank  func() generator
	gen    generator
}

func newPRNGSource(name string, stateLen int, seeded func(seed uint64) generator, blank func() generator) *prngSource {
	return &prngSource{
		name:     name,
		stateLen: stateLen,
		seeded:   seeded,
		blank:    blank,
		gen:      seeded(0),
	}
}

// NewMT19937 returns a 32-bit Mersenne Twister source
func NewMT19937() variate.Source {
	return newPRNGSource(MT19937Name, (624+1)*4, func(seed uint64) generator {
		g := prng.NewMT19937()
		// the twister only keeps 32 bits of seed
		g.Seed(seed ^ seed>>32)
		return g
	}, func() generator {
		return prng.NewMT19937()
	})
}

// NewPCG returns a 128-bit PCG source
func NewPCG() variate.Source {
	return newPRNGSource(PCGName, 16, func(seed uint64) generator {
		g := &xrand.PCGSource{}
		g.Seed(seed)
		return g
	}, func() generator {
		return &xrand.PCGSource{}
	})
}

// NewChaCha8 returns a ChaCha8 source
func NewChaCha8() variate.Source {
	return newPRNGSource(ChaCha8Name, 0, func(seed uint64) generator {
		return rand.NewChaCha8(expandSeed(seed))
	}, func() generator {
		return rand.NewChaCha8([32]byte{})
	})
}

// expandSeed stretches a 64-bit seed into a ChaCha8 key with splitmix64
func expandSeed(seed uint64) [32]byte {
	var key [32]byte
	for i := 0; i < 4; i++ {
		seed += 0x9e3779b97f4a7c15
		z := seed
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		binary.LittleEndian.PutUint64(key[i*8:], z)
	}

	return key
}

func (p *prngSource) Name() string {
	return p.name
}

func (p *prngSource) InitializeNonRepeatable() error {
	p.gen = p.seeded(rng.Seed())
	return nil
}

func (p *prngSource) InitializeRepeatable(seed int64) error {
	p.gen = p.seeded(uint64(seed))
	return nil
}

func (p *prngSource) Next() float64 {
	return rng.Float64(p.gen)
}

func (p *prngSource) State() (variate.Snapshot, error) {
	state, err := p.gen.MarshalBinary()
	if err != nil {
		return variate.Snapshot{}, err
	}

	return variate.NewSnapshot(p.name, state), nil
}

func (p *prngSource) LoadState(snapshot variate.Snapshot) error {
	if err := variate.CheckSnapshot(p.name, snapshot); err != nil {
		return err
	}

	if p.stateLen > 0 && len(snapshot.State) != p.stateLen {
		return &variate.StateMismatchError{
			Want:   p.name,
			Got:    snapshot.Source,
			Reason: "unexpected state length",
		}
	}

	gen := p.blank()
	if err := gen.UnmarshalBinary(snapshot.Bytes()); err != nil {
		return &variate.StateMismatchError{
			Want:   p.name,
			Got:    snapshot.Source,
			Reason: err.Error(),
		}
	}

	p.gen = gen
	return nil
}
