package golden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()
	wd, err := os.Getwd()
	a.NoError(err)
	a.NoError(os.Chdir(dir))
	defer func() {
		_ = os.Chdir(wd)
	}()

	values := []float64{0.25, 0.5}
	a.True(Validate(t, "sequence", values))

	b, err := os.ReadFile(filepath.Join(dir, "testdata", "sequence.json"))
	a.NoError(err)
	a.Equal("[\n  0.25,\n  0.5\n]\n", string(b))

	// second call compares against the file just written
	a.True(Validate(t, "sequence", values))
}
