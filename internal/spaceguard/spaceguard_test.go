package spaceguard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tunein/hls-downloader/hlserr"
)

func TestParseContentRangeTotal(t *testing.T) {
	total, ok := parseContentRangeTotal("bytes 0-0/123456")
	assert.True(t, ok)
	assert.Equal(t, uint64(123456), total)
}

func TestParseContentRangeTotalMissingSlash(t *testing.T) {
	_, ok := parseContentRangeTotal("bytes 0-0")
	assert.False(t, ok)
}

func TestParseContentRangeTotalEmpty(t *testing.T) {
	_, ok := parseContentRangeTotal("")
	assert.False(t, ok)
}

func TestCheckSufficientSpace(t *testing.T) {
	assert.NoError(t, Check(100, 200))
}

func TestCheckInsufficientSpace(t *testing.T) {
	err := Check(300, 200)
	assert.Error(t, err)
	assert.True(t, hlserr.Is(err, hlserr.InsufficientSpace))
}
