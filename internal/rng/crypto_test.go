package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrypto_Uint64(t *testing.T) {
	a := assert.New(t)

	c := Crypto{}
	found := make(map[uint64]bool)
	// it's possible this could fail, but not likely
	for i := 0; i < 1000; i++ {
		found[c.Uint64()] = true
	}

	a.Len(found, 1000)
	a.NotEqual(Seed(), Seed())
}

func TestOpenUnit(t *testing.T) {
	a := assert.New(t)

	a.Greater(OpenUnit(0), 0.0)
	a.Less(OpenUnit(^uint64(0)), 1.0)
	a.Equal(0.5/(1<<52), OpenUnit(0))
	a.Equal(1-0.5/(1<<52), OpenUnit(^uint64(0)))
	a.InDelta(0.5, OpenUnit(1<<63), 1e-15)

	for i := 0; i < 1000; i++ {
		v := Float64(Crypto{})
		a.True(v > 0 && v < 1)
	}
}
