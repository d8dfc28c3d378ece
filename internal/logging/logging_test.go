package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDebugHasNoSink(t *testing.T) {
	l, err := New(false, "")
	require.NoError(t, err)
	assert.Nil(t, l.debug)
	assert.NoError(t, l.Close())
}

func TestNewWithDebugOpensSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := New(true, path)
	require.NoError(t, err)
	defer l.Close()

	l.Debug("segment fetched", Fields{"index": 1})
	l.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "segment fetched")
}

func TestWithComponentTitleCasesForDisplay(t *testing.T) {
	l, err := New(false, "")
	require.NoError(t, err)
	tagged := l.WithComponent("space guard")
	assert.Equal(t, "Space Guard", tagged.component)
}
