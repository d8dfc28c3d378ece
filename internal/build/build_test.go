package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunein/hls-downloader/internal/fetchpool"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOutputPathAppendsExtension(t *testing.T) {
	assert.Equal(t, "out.ts", OutputPath("out"))
	assert.Equal(t, "out.mp4", OutputPath("out.mp4"))
}

func TestConcatenatePreservesOrder(t *testing.T) {
	dir := t.TempDir()
	jobs := []*fetchpool.Job{
		{Index: 1, TempPath: writeTemp(t, dir, "b.part", "B")},
		{Index: 0, TempPath: writeTemp(t, dir, "a.part", "A")},
	}

	out := filepath.Join(dir, "out.ts")
	require.NoError(t, Concatenate(jobs, out, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "AB", string(data))

	_, err = os.Stat(jobs[0].TempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestConcatenateMissingSegmentFails(t *testing.T) {
	dir := t.TempDir()
	jobs := []*fetchpool.Job{
		{Index: 0, TempPath: writeTemp(t, dir, "a.part", "A")},
		{Index: 2, TempPath: writeTemp(t, dir, "c.part", "C")},
	}

	out := filepath.Join(dir, "out.ts")
	err := Concatenate(jobs, out, nil)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenameAllProducesStableNames(t *testing.T) {
	dir := t.TempDir()
	jobs := []*fetchpool.Job{
		{Index: 0, TempPath: writeTemp(t, dir, "x.0.part", "A")},
		{Index: 1, TempPath: writeTemp(t, dir, "x.1.part", "B")},
	}

	require.NoError(t, RenameAll(jobs, dir, "x"))

	data, err := os.ReadFile(filepath.Join(dir, "x.0.ts"))
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "x.1.ts"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))
}
