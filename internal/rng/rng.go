// Package rng holds the bit-level helpers shared by the random sources.
package rng

// Generator provides raw random bits
type Generator interface {
	// Uint64 will return 64 random bits
	Uint64() uint64
}

// OpenUnit maps the top 52 bits of x onto the open interval (0,1)
// The half step offset keeps both 0 and 1 out of reach.
func OpenUnit(x uint64) float64 {
	return (float64(x>>12) + 0.5) / (1 << 52)
}

// Float64 returns a draw from g in the open interval (0,1)
func Float64(g Generator) float64 {
	return OpenUnit(g.Uint64())
}
