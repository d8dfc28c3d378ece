// Package spaceguard estimates the byte cost of a segment plan and checks
// it against free space on the output device, per spec.md §4.5. Free-space
// probing is the one piece of this pipeline the spec calls "a numeric
// oracle"; here it is backed by golang.org/x/sys/unix.Statfs, the
// dependency already present (indirectly) in the retrieval pack.
package spaceguard

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/fetcher"
	"github.com/tunein/hls-downloader/internal/m3u8"
)

// marginFactor adds the 5% safety margin spec.md §4.5 requires.
const marginFactor = 1.05

// probeSampleSize bounds how many reported segment sizes are averaged to
// estimate the segments whose probe reports no size. Probing never fully
// downloads a segment body: every probe is a one-byte Range request rather
// than a full GET.
const probeSampleSize = 5

// FreeBytes returns the bytes available on the filesystem backing path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// EstimateRequired probes each segment's total size via a single-byte
// Range request, reading the total from the Content-Range header. For
// segments whose probe fails or reports no size, the first probeSampleSize
// reported sizes are averaged and extrapolated across those segments. When
// no probe reports a size, the estimate is zero.
func EstimateRequired(ctx context.Context, segments []m3u8.Segment, f fetcher.Fetcher) (uint64, error) {
	var total uint64
	var sampled uint64
	sampledCount := 0
	unknown := 0

	for _, seg := range segments {
		resp, err := f.Get(ctx, seg.URI, map[string]string{"Range": "bytes=0-0"})
		if err != nil {
			unknown++
			continue
		}
		length := resp.Header.Get("Content-Range")
		resp.Body.Close()

		if size, ok := parseContentRangeTotal(length); ok {
			total += size
			if sampledCount < probeSampleSize {
				sampled += size
				sampledCount++
			}
			continue
		}
		unknown++
	}

	if unknown > 0 && sampledCount > 0 {
		avg := sampled / uint64(sampledCount)
		total += avg * uint64(unknown)
	}

	return uint64(float64(total) * marginFactor), nil
}

// Check compares required bytes against available bytes.
func Check(required, available uint64) error {
	if required > available {
		return hlserr.New(hlserr.InsufficientSpace,
			fmt.Sprintf("need %d bytes, only %d available", required, available), nil)
	}
	return nil
}

// parseContentRangeTotal extracts the total size from a "bytes 0-0/12345"
// Content-Range header.
func parseContentRangeTotal(headerValue string) (uint64, bool) {
	if headerValue == "" {
		return 0, false
	}
	idx := indexByte(headerValue, '/')
	if idx < 0 || idx+1 >= len(headerValue) {
		return 0, false
	}
	var total uint64
	for _, c := range headerValue[idx+1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		total = total*10 + uint64(c-'0')
	}
	return total, total > 0
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
