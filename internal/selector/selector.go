// Package selector implements variant selection over a master playlist's
// variant index, per spec.md §4.3.
package selector

import (
	"fmt"
	"strings"

	"github.com/tunein/hls-downloader/hlserr"
	"github.com/tunein/hls-downloader/internal/m3u8"
)

// Keys are the optional selection keys a caller may supply.
type Keys struct {
	Name       string
	Bandwidth  string
	Resolution string
}

func (k Keys) empty() bool {
	return k.Name == "" && k.Bandwidth == "" && k.Resolution == ""
}

func (k Keys) matches(v m3u8.Variant) bool {
	if k.Name != "" && v.Name != k.Name {
		return false
	}
	if k.Bandwidth != "" && v.Bandwidth != k.Bandwidth {
		return false
	}
	if k.Resolution != "" && v.Resolution != k.Resolution {
		return false
	}
	return true
}

// Select picks exactly one variant or returns a *hlserr.Error describing
// why it couldn't.
func Select(variants []m3u8.Variant, keys Keys) (*m3u8.Variant, error) {
	if len(variants) == 1 {
		return &variants[0], nil
	}

	var matched []m3u8.Variant
	for _, v := range variants {
		if keys.matches(v) {
			matched = append(matched, v)
		}
	}

	switch len(matched) {
	case 0:
		return nil, hlserr.New(hlserr.VariantNotFound, "no variant matches the provided selection keys", nil)
	case 1:
		return &matched[0], nil
	default:
		if keys.empty() {
			return nil, hlserr.WithFields(hlserr.VariantAmbiguous,
				"multiple variants available; provide name, bandwidth, and/or resolution to disambiguate\n"+enumerate(matched),
				nil,
				map[string]any{"variants": enumerationPayload(matched)})
		}
		return nil, hlserr.WithFields(hlserr.VariantAmbiguous,
			"multiple variants match the provided selection keys\n"+enumerate(matched),
			nil,
			map[string]any{"variants": enumerationPayload(matched)})
	}
}

func enumerate(variants []m3u8.Variant) string {
	var sb strings.Builder
	for _, v := range variants {
		sb.WriteString(fmt.Sprintf("  {name:%q, bandwidth:%q, resolution:%q}\n", v.Name, v.Bandwidth, v.Resolution))
	}
	return sb.String()
}

func enumerationPayload(variants []m3u8.Variant) []map[string]string {
	out := make([]map[string]string, 0, len(variants))
	for _, v := range variants {
		out = append(out, map[string]string{
			"name":       v.Name,
			"bandwidth":  v.Bandwidth,
			"resolution": v.Resolution,
		})
	}
	return out
}
