package hls

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/fetcher"
)

// stubFetcher serves canned text bodies keyed by URL.
type stubFetcher struct {
	bodies map[string]string
}

func (f *stubFetcher) Get(ctx context.Context, rawURL string, headers map[string]string) (*fetcher.Response, error) {
	body, ok := f.bodies[rawURL]
	if !ok {
		return &fetcher.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	return &fetcher.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
}

const mediaPlaylist = `#EXTM3U
#EXTINF:10.0,
seg0.ts
#EXTINF:10.0,
seg1.ts
#EXT-X-ENDLIST
`

const masterPlaylistTwoVariants = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=854x480,NAME="480"
480/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720,NAME="720"
720/index.m3u8
`

const masterPlaylistOneVariant = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720,NAME="720"
720/index.m3u8
`

func newDownloaderWithStub(t *testing.T, output string, bodies map[string]string) *Downloader {
	t.Helper()
	dl, err := New("http://cdn.example.com/show/index.m3u8", output, WithSkipSpaceCheck(true))
	require.NoError(t, err)
	dl.fetcher = &stubFetcher{bodies: bodies}
	return dl
}

func TestDownloadPlaylistMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8": mediaPlaylist,
		"http://cdn.example.com/show/seg0.ts":    "AAA",
		"http://cdn.example.com/show/seg1.ts":    "BBB",
	})

	err := dl.DownloadPlaylist(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "AAABBB", string(data))
	assert.True(t, dl.IsDownloadComplete())
	assert.Equal(t, Done, dl.State())

	res := dl.LastResult()
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Segments)
}

func TestDownloadPlaylistMergeFalseKeepsPerSegmentFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8": mediaPlaylist,
		"http://cdn.example.com/show/seg0.ts":    "AAA",
		"http://cdn.example.com/show/seg1.ts":    "BBB",
	})

	err := dl.DownloadPlaylist(context.Background(), WithMerge(false))
	require.NoError(t, err)

	data0, err := os.ReadFile(filepath.Join(dir, "show.0.ts"))
	require.NoError(t, err)
	assert.Equal(t, "AAA", string(data0))
	data1, err := os.ReadFile(filepath.Join(dir, "show.1.ts"))
	require.NoError(t, err)
	assert.Equal(t, "BBB", string(data1))
}

func TestDownloadPlaylistRejectsMasterInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8": masterPlaylistTwoVariants,
	})

	err := dl.DownloadPlaylist(context.Background())
	require.Error(t, err)
	assert.True(t, hlserr.Is(err, hlserr.WrongMethodMaster))
}

func TestDownloadMasterPlaylistRejectsMediaInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8": mediaPlaylist,
	})

	err := dl.DownloadMasterPlaylist(context.Background())
	require.Error(t, err)
	assert.True(t, hlserr.Is(err, hlserr.WrongMethodMedia))
}

func TestDownloadMasterPlaylistAutoSelectsSingleVariant(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8":     masterPlaylistOneVariant,
		"http://cdn.example.com/show/720/index.m3u8":  mediaPlaylist,
		"http://cdn.example.com/show/720/seg0.ts":     "AAA",
		"http://cdn.example.com/show/720/seg1.ts":     "BBB",
	})

	err := dl.DownloadMasterPlaylist(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "AAABBB", string(data))
}

func TestDownloadMasterPlaylistAmbiguousWithoutKeys(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8": masterPlaylistTwoVariants,
	})

	err := dl.DownloadMasterPlaylist(context.Background())
	require.Error(t, err)
	assert.True(t, hlserr.Is(err, hlserr.VariantAmbiguous))
}

func TestDownloadMasterPlaylistSelectsByName(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "show.ts")

	dl := newDownloaderWithStub(t, out, map[string]string{
		"http://cdn.example.com/show/index.m3u8":     masterPlaylistTwoVariants,
		"http://cdn.example.com/show/720/index.m3u8":  mediaPlaylist,
		"http://cdn.example.com/show/720/seg0.ts":     "AAA",
		"http://cdn.example.com/show/720/seg1.ts":     "BBB",
	})

	err := dl.DownloadMasterPlaylist(context.Background(), WithName("720"))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "AAABBB", string(data))

	res := dl.LastResult()
	require.NotNil(t, res)
	assert.Equal(t, "720", res.Variant)
}

func TestNewRejectsEmptyInput(t *testing.T) {
	_, err := New("", "out.ts")
	require.Error(t, err)
	assert.True(t, hlserr.Is(err, hlserr.InvalidConfig))
}

func TestSetMaxThreadsValidates(t *testing.T) {
	dl, err := New("http://cdn.example.com/show/index.m3u8", "out.ts")
	require.NoError(t, err)
	assert.Error(t, dl.SetMaxThreads(0))
	assert.NoError(t, dl.SetMaxThreads(4))
	assert.Equal(t, 4, dl.MaxThreads())
}
