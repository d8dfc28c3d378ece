package m3u8

import (
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveURI resolves uri against baseURI: absolute URIs (containing "://")
// are returned as-is; otherwise the join uses standard URL resolution when
// baseURI looks like a URL, or filesystem join semantics otherwise.
func ResolveURI(uri, baseURI string) string {
	if strings.Contains(uri, "://") {
		return uri
	}
	if baseURI == "" {
		return uri
	}

	if isURL(baseURI) {
		base, err := url.Parse(baseURI)
		if err != nil {
			return uri
		}
		ref, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		return base.ResolveReference(ref).String()
	}

	if filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(baseURI, uri)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// BaseURI derives the base used to resolve relative references: for a URL
// source it is the source with its final path segment stripped; for a
// local path it is the source's directory, or empty when the source itself
// has no directory component.
func BaseURI(source string) string {
	if isURL(source) {
		u, err := url.Parse(source)
		if err != nil {
			return ""
		}
		u.RawQuery = ""
		u.Fragment = ""
		idx := strings.LastIndex(u.Path, "/")
		if idx >= 0 {
			u.Path = u.Path[:idx+1]
		}
		return u.String()
	}

	dir := filepath.Dir(source)
	if dir == "." {
		return ""
	}
	return dir
}
