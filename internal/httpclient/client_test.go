package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func newRequestConfig(t *testing.T, opts RequestOptions) RequestConfig {
	t.Helper()
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	rc, err := NewRequestConfig(opts)
	require.NoError(t, err)
	return rc
}

// loopServer redirects /r/N to /r/N+1 forever.
func loopServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/r/"))
		if err != nil {
			n = 0
		}
		http.Redirect(w, r, fmt.Sprintf("/r/%d", n+1), http.StatusFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClient_Execute_DefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US,en;q=0.9,tr;q=0.7,az;q=0.7", r.Header.Get("Accept-Language"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "text/html")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		_, _ = w.Write([]byte("<title>ok</title>"))
	}))
	defer server.Close()

	client := newTestClient(t)
	resp, err := client.Execute(context.Background(), server.URL+"/", newRequestConfig(t, RequestOptions{Method: "GET"}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<title>ok</title>", string(resp.Body))
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, 0, resp.Hops)
	assert.Empty(t, resp.RedirectSummary())

	flat := FlattenHeaders(resp.Header)
	assert.Equal(t, "text/html", flat["content-type"])
	assert.Equal(t, "a, b", flat["x-multi"])
}

func TestHTTPClient_Execute_CustomHeadersReplaceDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "probe", r.Header.Get("X-Test"))
		assert.Empty(t, r.Header.Get("Accept-Language"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{Headers: ParseHeaders([]string{"X-Test: probe", "malformed"})})
	resp, err := newTestClient(t).Execute(context.Background(), server.URL, rc)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHTTPClient_Execute_RandomAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, userAgents, r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{RandomAgent: true})
	_, err := newTestClient(t).Execute(context.Background(), server.URL, rc)
	require.NoError(t, err)
}

func TestHTTPClient_Execute_HeadMethod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{Method: "head"})
	resp, err := newTestClient(t).Execute(context.Background(), server.URL, rc)
	require.NoError(t, err)
	assert.Empty(t, resp.Body)
}

func TestHTTPClient_Execute_MaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), 4096))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxBodySize(100).Build()
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Execute(context.Background(), server.URL, newRequestConfig(t, RequestOptions{}))
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)

	resp, err = newTestClient(t).Execute(context.Background(), server.URL, newRequestConfig(t, RequestOptions{}))
	require.NoError(t, err)
	assert.Len(t, resp.Body, 4096)
}

func TestHTTPClient_Execute_GzipBody(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write([]byte("<html><title>zipped</title></html>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(compressed.Bytes())
	}))
	defer server.Close()

	resp, err := newTestClient(t).Execute(context.Background(), server.URL, newRequestConfig(t, RequestOptions{}))
	require.NoError(t, err)
	assert.Equal(t, "<html><title>zipped</title></html>", string(resp.Body))
}

func TestHTTPClient_Execute_NativeRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("landed"))
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.Replace(target.URL, "127.0.0.1", "localhost", 1)+"/final", http.StatusMovedPermanently)
	}))
	defer origin.Close()

	rc := newRequestConfig(t, RequestOptions{FollowRedirects: true})
	resp, err := newTestClient(t).Execute(context.Background(), origin.URL, rc)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "landed", string(resp.Body))
	assert.Equal(t, 1, resp.Hops)
	assert.Equal(t, []string{"localhost"}, resp.Chain.Hosts())
	assert.Equal(t, "→ 1 • localhost", resp.RedirectSummary())
	assert.True(t, strings.HasSuffix(resp.FinalURL, "/final"))
}

func TestHTTPClient_Execute_NoRedirect(t *testing.T) {
	var hits atomic.Int32
	server := loopServer(t, &hits)

	for _, strategy := range []RedirectStrategy{RedirectNative, RedirectManual} {
		t.Run(strategy.String(), func(t *testing.T) {
			hits.Store(0)
			rc := newRequestConfig(t, RequestOptions{FollowRedirects: false, RedirectStrategy: strategy})
			resp, err := newTestClient(t).Execute(context.Background(), server.URL+"/r/0", rc)
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, 0, resp.Hops)
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestHTTPClient_Execute_RedirectCap(t *testing.T) {
	var hits atomic.Int32
	server := loopServer(t, &hits)

	for _, strategy := range []RedirectStrategy{RedirectNative, RedirectManual} {
		t.Run(strategy.String(), func(t *testing.T) {
			hits.Store(0)
			rc := newRequestConfig(t, RequestOptions{FollowRedirects: true, RedirectStrategy: strategy})
			resp, err := newTestClient(t).Execute(context.Background(), server.URL+"/r/0", rc)
			require.NoError(t, err)

			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, MaxRedirectHops, resp.Hops)
			assert.Equal(t, int32(MaxRedirectHops+1), hits.Load())
			assert.True(t, strings.HasSuffix(resp.FinalURL, "/r/10"))
			assert.Equal(t, 1, len(resp.Chain.Hosts()))
			assert.Equal(t, "→ 10 • 127.0.0.1", resp.RedirectSummary())
		})
	}
}

func TestHTTPClient_Execute_ManualSeeOtherSwitchesToGet(t *testing.T) {
	var finalMethod atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Location", "/done")
			w.WriteHeader(http.StatusSeeOther)
			return
		}
		finalMethod.Store(r.Method)
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{Method: "HEAD", FollowRedirects: true, RedirectStrategy: RedirectManual})
	resp, err := newTestClient(t).Execute(context.Background(), server.URL+"/start", rc)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, finalMethod.Load())
	assert.Equal(t, 1, resp.Hops)
}

func TestHTTPClient_Execute_ManualStopsOnMissingLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{FollowRedirects: true, RedirectStrategy: RedirectManual})
	resp, err := newTestClient(t).Execute(context.Background(), server.URL, rc)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, 0, resp.Hops)
}

func TestHTTPClient_Execute_RetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	rc := newRequestConfig(t, RequestOptions{Retries: 3, Timeout: time.Second})
	_, err := newTestClient(t).Execute(context.Background(), deadURL, rc)
	require.Error(t, err)

	var retryErr *RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, 4, retryErr.Attempts)
	assert.Equal(t, 4, AttemptsOf(err))
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, "connection refused", ShortReason(err))
}

func TestHTTPClient_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	rc := newRequestConfig(t, RequestOptions{Timeout: 50 * time.Millisecond})
	_, err := newTestClient(t).Execute(context.Background(), server.URL, rc)
	require.Error(t, err)
	assert.Equal(t, "timeout", ShortReason(err))
}

func TestHTTPClient_Execute_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t).Execute(ctx, server.URL, newRequestConfig(t, RequestOptions{Retries: 3}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}
