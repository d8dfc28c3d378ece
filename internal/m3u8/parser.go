package m3u8

import (
	"strings"
)

// Classify labels a document per spec: MASTER iff any line starts with
// #EXT-X-STREAM-INF; MEDIA iff it has #EXTINF and no #EXT-X-STREAM-INF;
// otherwise UNKNOWN.
func Classify(lines []string) Kind {
	hasStreamInf := false
	hasExtInf := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			hasStreamInf = true
		case strings.HasPrefix(line, "#EXTINF"):
			hasExtInf = true
		}
	}
	switch {
	case hasStreamInf:
		return Master
	case hasExtInf:
		return Media
	default:
		return Unknown
	}
}

// HasEncryption reports whether the document references an #EXT-X-KEY tag,
// which this spec treats as unsupported rather than silently downloaded.
func HasEncryption(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, "#EXT-X-KEY") {
			return true
		}
	}
	return false
}

// HasM3UHeader reports whether the first non-blank line is #EXTM3U.
func HasM3UHeader(lines []string) bool {
	return len(lines) > 0 && strings.TrimSpace(lines[0]) == "#EXTM3U"
}

// ParseVariants extracts the variant index from a MASTER document: one
// entry per #EXT-X-STREAM-INF + following URI line, merged with named
// video renditions declared via #EXT-X-MEDIA. Duplicates by resolved URI
// keep the first occurrence (spec's documented first-occurrence-wins
// choice for the "identical variants" open question).
func ParseVariants(doc *Document) []Variant {
	seen := make(map[string]bool)
	variants := make([]Variant, 0)

	add := func(v Variant) {
		if v.URI == "" || seen[v.URI] {
			return
		}
		seen[v.URI] = true
		variants = append(variants, v)
	}

	for i := 0; i < len(doc.Lines); i++ {
		line := doc.Lines[i]
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			attrs := parseAttributes(tagValue(line))
			v := Variant{
				Bandwidth:  unquote(attrs["BANDWIDTH"]),
				Resolution: unquote(attrs["RESOLUTION"]),
				Name:       unquote(attrs["NAME"]),
			}
			// The URI line immediately follows the tag.
			if i+1 < len(doc.Lines) && !strings.HasPrefix(doc.Lines[i+1], "#") {
				v.URI = ResolveURI(doc.Lines[i+1], doc.BaseURI)
				i++
			}
			add(v)
		case strings.HasPrefix(line, "#EXT-X-MEDIA"):
			attrs := parseAttributes(tagValue(line))
			if unquote(attrs["TYPE"]) != "VIDEO" {
				continue
			}
			name := unquote(attrs["NAME"])
			uri := unquote(attrs["URI"])
			if name == "" || uri == "" {
				continue
			}
			add(Variant{Name: name, URI: ResolveURI(uri, doc.BaseURI)})
		}
	}

	return variants
}

// ParsePlan walks a MEDIA document and returns the ordered segment list.
// #EXT-X-ENDLIST terminates planning early; its absence is not an error —
// EOF is treated as end-of-list.
func ParsePlan(doc *Document) *Plan {
	plan := &Plan{Segments: make([]Segment, 0)}
	pendingSegment := false

	for _, line := range doc.Lines {
		switch {
		case strings.HasPrefix(line, "#EXT-X-ENDLIST"):
			return plan
		case strings.HasPrefix(line, "#EXTINF"):
			pendingSegment = true
		case strings.HasPrefix(line, "#"):
			// other tags ignored
		default:
			if pendingSegment {
				plan.Segments = append(plan.Segments, Segment{
					Index: len(plan.Segments),
					URI:   ResolveURI(line, doc.BaseURI),
				})
				pendingSegment = false
			}
		}
	}

	return plan
}

func tagValue(line string) string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func unquote(s string) string {
	return strings.Trim(s, "\"")
}

// parseAttributes parses comma-separated KEY=VALUE attribute lists such as
// `BANDWIDTH=1280000,CODECS="avc1.4d401f",RESOLUTION=640x360`, respecting
// commas embedded in quoted values.
func parseAttributes(attrString string) map[string]string {
	attrs := make(map[string]string)

	var parts []string
	var current strings.Builder
	inQuotes := false

	for _, r := range attrString {
		switch r {
		case '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case ',':
			if inQuotes {
				current.WriteRune(r)
			} else {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 {
			attrs[kv[0]] = kv[1]
		}
	}

	return attrs
}
