package m3u8

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/fetcher"
)

// Load retrieves an M3U8 document from a URL or local path and splits it
// into trimmed, non-empty lines plus the base URI used to resolve relative
// references.
func Load(ctx context.Context, location string, f fetcher.Fetcher) (*Document, error) {
	if isURL(location) {
		return loadURL(ctx, location, f)
	}
	return loadFile(location)
}

func loadURL(ctx context.Context, location string, f fetcher.Fetcher) (*Document, error) {
	resp, err := f.Get(ctx, location, nil)
	if err != nil {
		if fetcher.IsConnectivityError(err) {
			return nil, hlserr.New(hlserr.NoNetwork, "no network connectivity to "+location, err)
		}
		return nil, hlserr.New(hlserr.InputUnreachable, "failed to fetch playlist "+location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, hlserr.New(hlserr.InputUnreachable,
			fmt.Sprintf("playlist request to %s returned HTTP %d", location, resp.StatusCode), nil)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, hlserr.New(hlserr.InputUnreachable, "failed to read playlist body", err)
	}

	return &Document{
		Source:  location,
		BaseURI: BaseURI(location),
		Lines:   splitLines(buf.String()),
	}, nil
}

func loadFile(location string) (*Document, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, hlserr.New(hlserr.InputUnreachable, "failed to read local playlist "+location, err)
	}

	return &Document{
		Source:  location,
		BaseURI: BaseURI(location),
		Lines:   splitLines(string(data)),
	}, nil
}

func splitLines(content string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
