package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variate-server/pkg/variate"
)

func TestReadTape(t *testing.T) {
	a := assert.New(t)

	tape, err := ReadTape(strings.NewReader("source: mt19937\nseed: 42\nvalues: [0.25, 0.5, 0.75]\n"))
	a.NoError(err)
	a.Equal("mt19937", tape.Source)
	a.Equal(int64(42), *tape.Seed)
	a.Equal([]float64{0.25, 0.5, 0.75}, tape.Values)

	_, err = ReadTape(strings.NewReader("values: []\n"))
	a.Equal(ErrEmptyTape, err)

	_, err = ReadTape(strings.NewReader("values: [0.5, 1]\n"))
	a.EqualError(err, "tape value 1 is 1, outside the open interval (0,1)")

	_, err = ReadTape(strings.NewReader("values: [0]\n"))
	a.Error(err)

	_, err = ReadTape(strings.NewReader("values: {"))
	a.Error(err)
}

func TestTapeSource(t *testing.T) {
	a := assert.New(t)

	src, err := NewTape(&Tape{Values: []float64{0.1, 0.2, 0.3}})
	a.NoError(err)
	a.Equal(TapeName, src.Name())

	a.NoError(src.InitializeRepeatable(0))
	a.Equal([]float64{0.1, 0.2, 0.3, 0.1}, draw(src, 4))

	a.NoError(src.InitializeRepeatable(5))
	a.Equal([]float64{0.3, 0.1}, draw(src, 2))

	snapshot, err := src.State()
	a.NoError(err)
	want := draw(src, 5)
	a.NoError(src.LoadState(snapshot))
	a.Equal(want, draw(src, 5))

	var mismatch *variate.StateMismatchError
	a.True(errors.As(src.LoadState(variate.NewSnapshot(TapeName, []byte{0, 0, 0, 0, 0, 0, 0, 9})), &mismatch))
	a.True(errors.As(src.LoadState(variate.NewSnapshot(TapeName, []byte{0})), &mismatch))
	a.True(errors.As(src.LoadState(variate.NewSnapshot(PCGName, make([]byte, 8))), &mismatch))

	a.NoError(src.InitializeNonRepeatable())
	for _, v := range draw(src, 10) {
		a.Contains([]float64{0.1, 0.2, 0.3}, v)
	}

	_, err = NewTape(&Tape{})
	a.Equal(ErrEmptyTape, err)
}

func TestRecorder(t *testing.T) {
	a := assert.New(t)

	rec := NewRecorder(mustNew(t, PCGName))
	a.Equal(PCGName, rec.Name())

	g, err := variate.New(rec)
	a.NoError(err)
	a.NoError(g.InitializeRepeatable(77))

	want := make([]float64, 5)
	a.NoError(g.NormalBatch(want))

	tape := rec.Tape()
	a.Equal(PCGName, tape.Source)
	a.Equal(int64(77), *tape.Seed)
	a.Len(tape.Values, 6)

	// the tape is a copy
	tape.Values[0] = 0.5
	a.NotEqual(0.5, rec.Tape().Values[0])

	// replaying the tape through a generator reproduces the normals
	var buf bytes.Buffer
	a.NoError(rec.Tape().Write(&buf))

	replayed, err := ReadTape(&buf)
	a.NoError(err)
	src, err := NewTape(replayed)
	a.NoError(err)

	g2, err := variate.New(src)
	a.NoError(err)
	a.NoError(g2.InitializeRepeatable(0))

	got := make([]float64, 5)
	a.NoError(g2.NormalBatch(got))
	a.Equal(want, got)
}

func TestNew_TapeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tape.yaml")
	require.NoError(t, os.WriteFile(path, []byte("values: [0.5, 0.25]\n"), 0644))

	src, err := New(TapeName, WithTapeFile(path))
	require.NoError(t, err)
	require.NoError(t, src.InitializeRepeatable(1))
	assert.Equal(t, []float64{0.25, 0.5}, draw(src, 2))

	_, err = New(TapeName, WithTapeFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}
