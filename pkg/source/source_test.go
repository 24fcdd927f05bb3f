package source

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"variate-server/internal/rng"
	"variate-server/pkg/golden"
	"variate-server/pkg/variate"
)

var repeatable = []string{MT19937Name, PCGName, ChaCha8Name}

func draw(src variate.Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = src.Next()
	}

	return out
}

func mustNew(t *testing.T, name string) variate.Source {
	t.Helper()

	src, err := New(name)
	require.NoError(t, err)
	require.Equal(t, name, src.Name())
	return src
}

func TestNew(t *testing.T) {
	a := assert.New(t)

	src, err := New("")
	a.NoError(err)
	a.Equal(DefaultName, src.Name())

	_, err = New("lava-lamp")
	a.True(errors.Is(err, ErrUnknownSource))

	_, err = New(TapeName)
	a.Error(err)

	a.Equal([]string{"chacha8", "crypto", "mt19937", "pcg", "tape"}, Names())
}

func TestMT19937_KnownAnswer(t *testing.T) {
	src := mustNew(t, MT19937Name)
	require.NoError(t, src.InitializeRepeatable(5489))

	// reference outputs of init_genrand(5489)
	want := rng.OpenUnit(uint64(3499211612)<<32 | 581869302)
	assert.Equal(t, want, src.Next())
}

func TestRepeatable_Determinism(t *testing.T) {
	for _, name := range repeatable {
		t.Run(name, func(t *testing.T) {
			s1 := mustNew(t, name)
			s2 := mustNew(t, name)
			require.NoError(t, s1.InitializeRepeatable(42))
			require.NoError(t, s2.InitializeRepeatable(42))

			first := draw(s1, 64)
			if diff := cmp.Diff(first, draw(s2, 64)); diff != "" {
				t.Errorf("same seed, different sequences (-s1 +s2):\n%s", diff)
			}

			require.NoError(t, s2.InitializeRepeatable(43))
			assert.NotEqual(t, first, draw(s2, 64))

			require.NoError(t, s1.InitializeRepeatable(42))
			require.FileExists(t, filepath.Join("testdata", name+"-seed-42.json"))
			golden.Validate(t, fmt.Sprintf("%s-seed-42", name), draw(s1, 8))
		})
	}
}

func TestRepeatable_NonRepeatableDiffers(t *testing.T) {
	for _, name := range repeatable {
		s1 := mustNew(t, name)
		s2 := mustNew(t, name)
		require.NoError(t, s1.InitializeNonRepeatable())
		require.NoError(t, s2.InitializeNonRepeatable())
		assert.NotEqual(t, draw(s1, 4), draw(s2, 4), name)
	}
}

func TestRepeatable_StateRoundTrip(t *testing.T) {
	for _, name := range repeatable {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)

			src := mustNew(t, name)
			a.NoError(src.InitializeRepeatable(7))
			draw(src, 13)

			snapshot, err := src.State()
			a.NoError(err)
			a.Equal(name, snapshot.Source)
			want := draw(src, 32)

			kept := snapshot.Clone()
			a.NoError(src.LoadState(snapshot))

			// the source must not hold on to the snapshot's bytes
			for i := range snapshot.State {
				snapshot.State[i] ^= 0xff
			}

			a.Equal(want, draw(src, 32))

			// and loading into a fresh instance resumes the same sequence
			other := mustNew(t, name)
			a.NoError(other.LoadState(kept))
			a.Equal(want, draw(other, 32))
		})
	}
}

func TestRepeatable_StateMismatch(t *testing.T) {
	for _, name := range repeatable {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)

			src := mustNew(t, name)
			a.NoError(src.InitializeRepeatable(1))
			want := draw(src, 4)
			a.NoError(src.InitializeRepeatable(1))

			var mismatch *variate.StateMismatchError

			err := src.LoadState(variate.NewSnapshot("something-else", []byte{1}))
			a.True(errors.As(err, &mismatch))

			err = src.LoadState(variate.NewSnapshot(name, []byte{1, 2, 3}))
			a.True(errors.As(err, &mismatch))
			a.Equal(name, mismatch.Want)

			// a failed load leaves the source where it was
			a.Equal(want, draw(src, 4))
		})
	}
}

func TestSources_OpenInterval(t *testing.T) {
	for _, name := range []string{MT19937Name, PCGName, ChaCha8Name, CryptoName} {
		src := mustNew(t, name)
		require.NoError(t, src.InitializeNonRepeatable())
		for _, v := range draw(src, 10000) {
			if !(v > 0 && v < 1) {
				t.Fatalf("%s produced %v", name, v)
			}
		}
	}
}

func TestCrypto(t *testing.T) {
	a := assert.New(t)

	src := mustNew(t, CryptoName)
	a.NoError(src.InitializeNonRepeatable())
	a.Equal(ErrNotRepeatable, src.InitializeRepeatable(42))

	snapshot, err := src.State()
	a.NoError(err)
	a.Equal(CryptoName, snapshot.Source)
	a.Empty(snapshot.State)
	a.NoError(src.LoadState(snapshot))

	var mismatch *variate.StateMismatchError
	a.True(errors.As(src.LoadState(variate.NewSnapshot(CryptoName, []byte{1})), &mismatch))

	g, err := variate.New(src)
	a.NoError(err)
	a.Error(g.InitializeRepeatable(42))
	a.False(g.Initialized())
}

// normals draws through a Generator, checking moments and the Kolmogorov-Smirnov distance to N(0,1)
func TestGenerator_NormalDistribution(t *testing.T) {
	for _, name := range repeatable {
		t.Run(name, func(t *testing.T) {
			a := assert.New(t)

			g, err := variate.New(mustNew(t, name))
			a.NoError(err)
			a.NoError(g.InitializeRepeatable(2024))

			values := make([]float64, 20000)
			a.NoError(g.NormalBatch(values))

			mean, err := stats.Mean(values)
			a.NoError(err)
			a.InDelta(0, mean, 0.05)

			sd, err := stats.StandardDeviation(values)
			a.NoError(err)
			a.InDelta(1, sd, 0.05)

			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			n := float64(len(sorted))
			var d float64
			for i, x := range sorted {
				cdf := distuv.UnitNormal.CDF(x)
				d = math.Max(d, math.Max(float64(i+1)/n-cdf, cdf-float64(i)/n))
			}

			a.Less(d, 0.02)
		})
	}
}
