// Package golden pins test output to files under testdata/.
package golden

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// Validate compares obj, encoded as indented JSON, with testdata/<name>.json
// If the file does not exist it is written and the check passes.
func Validate(t *testing.T, name string, obj interface{}, msgAndArgs ...interface{}) bool {
	t.Helper()

	filename := filepath.Join("testdata", name+".json")

	expects, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			create(t, filename, obj)
			return true
		}

		t.Fatal(err)
	}

	objJSON, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	if !assert.Equal(t, strings.Trim(string(expects), "\n"), strings.Trim(string(objJSON), "\n"), msgAndArgs...) {
		t.Logf("golden file %s", filename)
		return false
	}

	return true
}

func create(t *testing.T, filename string, obj interface{}) {
	t.Helper()

	logrus.WithField("filename", filename).Info("writing golden file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		t.Fatal(err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obj); err != nil {
		t.Fatal(err)
	}
}
