package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", context.DeadlineExceeded), "timeout"},
		{&net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}, "no such host"},
		{errors.New("dial tcp 10.0.0.1:80: connect: connection refused"), "connection refused"},
		{errors.New("tls: failed to verify certificate"), "tls certificate error"},
		{errors.New("something odd"), "something odd"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ShortReason(tc.err))
	}
}

func TestRetryError_Unwrap(t *testing.T) {
	inner := NewNetworkError("http://a", "request failed", errors.New("boom"))
	err := &RetryError{URL: "http://a", Attempts: 2, Err: inner}
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, 2, AttemptsOf(err))
	assert.Equal(t, 0, AttemptsOf(inner))
}
