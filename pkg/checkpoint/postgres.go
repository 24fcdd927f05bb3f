package checkpoint

import (
	"context"
	"database/sql"

	"variate-server/pkg/db"
	"variate-server/pkg/variate"
)

// PostgresStore keeps snapshots in the `checkpoints` table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by dbh
// The `checkpoints` table must already exist (see cmd/migrate).
func NewPostgresStore(dbh *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: dbh,
	}
}

// Put upserts the snapshot
func (p *PostgresStore) Put(ctx context.Context, name string, snapshot variate.Snapshot) error {
	if err := validateName(name); err != nil {
		return err
	}

	const query = `
INSERT INTO checkpoints (name, source, state)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET source = EXCLUDED.source, state = EXCLUDED.state, updated = NOW()`

	state := snapshot.Bytes()
	if state == nil {
		state = []byte{}
	}

	_, err := p.db.ExecContext(ctx, query, name, snapshot.Source, state)
	return err
}

// Get loads a snapshot
func (p *PostgresStore) Get(ctx context.Context, name string) (variate.Snapshot, error) {
	const query = `SELECT source, state FROM checkpoints WHERE name = $1`

	snapshot, err := getSnapshotByRow(p.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return variate.Snapshot{}, ErrNotFound
	}

	return snapshot, err
}

// Delete removes a snapshot
func (p *PostgresStore) Delete(ctx context.Context, name string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE name = $1`, name)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// List returns the stored names
func (p *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name FROM checkpoints ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

func getSnapshotByRow(row db.Scanner) (variate.Snapshot, error) {
	var source string
	var state []byte
	if err := row.Scan(&source, &state); err != nil {
		return variate.Snapshot{}, err
	}

	return variate.NewSnapshot(source, state), nil
}
