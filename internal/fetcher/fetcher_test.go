package fetcher

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectivityErrorDNS(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}
	assert.True(t, IsConnectivityError(err))
}

func TestIsConnectivityErrorWrappedInURLError(t *testing.T) {
	inner := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	err := &url.Error{Op: "Get", URL: "http://example.com", Err: inner}
	assert.True(t, IsConnectivityError(err))
}

func TestIsConnectivityErrorFalseForOther(t *testing.T) {
	assert.False(t, IsConnectivityError(errors.New("HTTP 404")))
	assert.False(t, IsConnectivityError(nil))
}
