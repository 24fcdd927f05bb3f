package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	a := assert.New(t)

	_, found := os.LookupEnv("test_variate_file")
	a.False(found)
	a.Equal("config.yaml", Getenv("test_variate_file", "config.yaml"))

	unset := SetEnv("test_variate_file", "")
	a.Equal("config.yaml", Getenv("test_variate_file", "config.yaml"), "empty value falls back to the default")
	unset()

	unset = SetEnv("test_variate_file", "other.yaml")
	a.Equal("other.yaml", Getenv("test_variate_file", "config.yaml"))
	unset()

	a.Equal("config.yaml", Getenv("test_variate_file", "config.yaml"))
}

func TestSetEnv(t *testing.T) {
	a := assert.New(t)
	_, found := os.LookupEnv("test_foo")

	a.False(found)
	unset1 := SetEnv("test_foo", "bar")
	a.Equal("bar", os.Getenv("test_foo"))

	unset2 := SetEnv("test_foo", "bar2")
	a.Equal("bar2", os.Getenv("test_foo"))
	unset2()
	a.Equal("bar", os.Getenv("test_foo"))
	unset1()

	_, found = os.LookupEnv("test_foo")
	a.False(found)
}

func TestSetEnv_RestoresEmptyValue(t *testing.T) {
	a := assert.New(t)

	unset1 := SetEnv("test_empty", "")
	_, found := os.LookupEnv("test_empty")
	a.True(found)

	unset2 := SetEnv("test_empty", "set")
	a.Equal("set", os.Getenv("test_empty"))
	unset2()

	val, found := os.LookupEnv("test_empty")
	a.True(found)
	a.Equal("", val)

	unset1()
	_, found = os.LookupEnv("test_empty")
	a.False(found)
}
