package checkpoint

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variate-server/internal/config"
	"variate-server/pkg/db"
	"variate-server/pkg/source"
	"variate-server/pkg/variate"
)

func testStore(t *testing.T, store Store) {
	t.Helper()

	a := assert.New(t)
	ctx := context.Background()

	g, err := variate.New(source.NewPCG())
	require.NoError(t, err)
	require.NoError(t, g.InitializeRepeatable(10))

	snapshot, err := g.SaveState()
	a.NoError(err)
	want := make([]float64, 4)
	a.NoError(g.NormalBatch(want))

	_, err = store.Get(ctx, "test-alpha")
	a.Equal(ErrNotFound, err)

	a.NoError(store.Put(ctx, "test-alpha", snapshot))
	a.Equal(ErrInvalidName, store.Put(ctx, "", snapshot))
	a.Equal(ErrInvalidName, store.Put(ctx, strings.Repeat("x", 256), snapshot))

	// changing the caller's copy after Put must not reach the store
	scribbled := snapshot.Clone()
	a.NoError(store.Put(ctx, "test-beta", scribbled))
	scribbled.State[0] ^= 0xff

	got, err := store.Get(ctx, "test-beta")
	a.NoError(err)
	a.Equal(snapshot.Source, got.Source)
	a.True(bytes.Equal(snapshot.State, got.State))

	loaded, err := store.Get(ctx, "test-alpha")
	a.NoError(err)

	restored, err := variate.New(source.NewPCG())
	require.NoError(t, err)
	a.NoError(restored.RestoreState(loaded))
	replay := make([]float64, 4)
	a.NoError(restored.NormalBatch(replay))
	a.Equal(want, replay)

	// put replaces
	crypto, err := source.NewCrypto().State()
	a.NoError(err)
	a.NoError(store.Put(ctx, "test-beta", crypto))
	got, err = store.Get(ctx, "test-beta")
	a.NoError(err)
	a.Equal(source.CryptoName, got.Source)
	a.Empty(got.State)

	names, err := store.List(ctx)
	a.NoError(err)
	a.Contains(names, "test-alpha")
	a.Contains(names, "test-beta")

	a.NoError(store.Delete(ctx, "test-alpha"))
	a.NoError(store.Delete(ctx, "test-beta"))
	a.Equal(ErrNotFound, store.Delete(ctx, "test-alpha"))

	names, err = store.List(ctx)
	a.NoError(err)
	a.NotContains(names, "test-alpha")
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())

	store := NewMemoryStore()
	ctx := context.Background()
	a := assert.New(t)
	a.NoError(store.Put(ctx, "b", variate.NewSnapshot("x", nil)))
	a.NoError(store.Put(ctx, "a", variate.NewSnapshot("x", nil)))
	names, err := store.List(ctx)
	a.NoError(err)
	a.Equal([]string{"a", "b"}, names)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("VARIATE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("VARIATE_TEST_PG_DSN not set")
	}

	dbh, err := db.Open(dsn)
	require.NoError(t, err)
	defer dbh.Close()

	schema, err := os.ReadFile("../../sql/1_create_checkpoints.up.sql")
	require.NoError(t, err)
	_, err = dbh.Exec(string(schema))
	require.NoError(t, err)

	testStore(t, NewPostgresStore(dbh))
}

func TestNewStore(t *testing.T) {
	a := assert.New(t)

	cfg := config.DefaultConfig()
	store, err := NewStore(cfg)
	a.NoError(err)
	a.IsType(&MemoryStore{}, store)

	cfg.Store = "floppy"
	_, err = NewStore(cfg)
	a.EqualError(err, "unknown checkpoint store: floppy")
}
