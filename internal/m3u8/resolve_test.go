package m3u8

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURIAbsolute(t *testing.T) {
	assert.Equal(t, "http://other.example.com/seg.ts",
		ResolveURI("http://other.example.com/seg.ts", "http://cdn.example.com/show/"))
}

func TestResolveURIRelativeToURLBase(t *testing.T) {
	assert.Equal(t, "http://cdn.example.com/show/seg0.ts",
		ResolveURI("seg0.ts", "http://cdn.example.com/show/"))
}

func TestResolveURIRelativeToLocalBase(t *testing.T) {
	assert.Equal(t, "testdata/seg0.ts", ResolveURI("seg0.ts", "testdata"))
}

func TestResolveURINoBase(t *testing.T) {
	assert.Equal(t, "seg0.ts", ResolveURI("seg0.ts", ""))
}

func TestBaseURIForURL(t *testing.T) {
	assert.Equal(t, "http://cdn.example.com/show/", BaseURI("http://cdn.example.com/show/index.m3u8"))
}

func TestBaseURIForURLWithQuery(t *testing.T) {
	assert.Equal(t, "http://cdn.example.com/show/", BaseURI("http://cdn.example.com/show/index.m3u8?token=abc"))
}

func TestBaseURIForLocalPath(t *testing.T) {
	assert.Equal(t, "testdata", BaseURI("testdata/index.m3u8"))
}

func TestBaseURIForBareFilename(t *testing.T) {
	assert.Equal(t, "", BaseURI("index.m3u8"))
}
