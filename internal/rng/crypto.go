package rng

import (
	"crypto/rand"
	"encoding/binary"
)

// Crypto wraps the crypto/rand library
type Crypto struct{}

// Uint64 returns 64 bits read from the operating system
func (c Crypto) Uint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}

	return binary.LittleEndian.Uint64(b[:])
}

// Seed returns an unpredictable seed for a pseudo-random source
func Seed() uint64 {
	return Crypto{}.Uint64()
}
