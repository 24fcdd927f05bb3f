// Package checkpoint persists generator snapshots under a name so they outlive the process.
package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"variate-server/internal/config"
	"variate-server/pkg/db"
	"variate-server/pkg/variate"
)

const maxNameLength = 255

// ErrNotFound is returned when no snapshot is stored under a name
var ErrNotFound = errors.New("checkpoint not found")

// ErrInvalidName is returned for names that cannot be stored
var ErrInvalidName = errors.New("checkpoint name must be between 1 and 255 characters")

// Store saves snapshots by name
type Store interface {
	// Put stores the snapshot, replacing whatever was stored under name
	Put(ctx context.Context, name string, snapshot variate.Snapshot) error
	Get(ctx context.Context, name string) (variate.Snapshot, error)
	Delete(ctx context.Context, name string) error
	// List returns the stored names in ascending order
	List(ctx context.Context) ([]string, error)
}

// NewStore returns the store selected by the configuration
func NewStore(cfg config.Config) (Store, error) {
	switch cfg.Store {
	case "", config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StorePostgres:
		return NewPostgresStore(db.Instance()), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint store: %s", cfg.Store)
	}
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return ErrInvalidName
	}

	return nil
}
