package source

import (
	"variate-server/internal/rng"
	"variate-server/pkg/variate"
)

type cryptoSource struct {
	rng.Crypto
}

// NewCrypto returns a source that reads the operating system's entropy pool
// It has no state and cannot be seeded repeatably.
func NewCrypto() variate.Source {
	return &cryptoSource{}
}

func (c *cryptoSource) Name() string {
	return CryptoName
}

func (c *cryptoSource) InitializeNonRepeatable() error {
	return nil
}

func (c *cryptoSource) InitializeRepeatable(int64) error {
	return ErrNotRepeatable
}

func (c *cryptoSource) Next() float64 {
	return rng.Float64(c.Crypto)
}

func (c *cryptoSource) State() (variate.Snapshot, error) {
	return variate.NewSnapshot(CryptoName, nil), nil
}

func (c *cryptoSource) LoadState(snapshot variate.Snapshot) error {
	if err := variate.CheckSnapshot(CryptoName, snapshot); err != nil {
		return err
	}

	if len(snapshot.State) > 0 {
		return &variate.StateMismatchError{
			Want:   CryptoName,
			Got:    snapshot.Source,
			Reason: "crypto source has no state",
		}
	}

	return nil
}
