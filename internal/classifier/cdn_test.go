package classifier

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	answers map[uint16][]string
	err     error
	calls   int
}

func (f *fakeQuerier) Query(_ context.Context, _ string, qtype uint16) ([]dns.RR, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []dns.RR
	for _, record := range f.answers[qtype] {
		rr, err := dns.NewRR(record)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

func newTestDetector(q DNSQuerier, canonical string) *CloudflareDetector {
	d := NewCloudflareDetector(q, zerolog.Nop())
	d.lookupCNAME = func(context.Context, string) (string, error) {
		if canonical == "" {
			return "", errors.New("lookup failed")
		}
		return canonical, nil
	}
	return d
}

func TestCloudflareDetector_DNSSignals(t *testing.T) {
	tests := []struct {
		name    string
		answers map[uint16][]string
		want    bool
	}{
		{"ns", map[uint16][]string{dns.TypeNS: {"example.com. 300 IN NS kate.ns.cloudflare.com."}}, true},
		{"cname", map[uint16][]string{dns.TypeCNAME: {"www.example.com. 300 IN CNAME www.example.com.cdn.cloudflare.net."}}, true},
		{"a answer cname", map[uint16][]string{dns.TypeA: {
			"www.example.com. 300 IN CNAME edge.cloudflare.net.",
			"edge.cloudflare.net. 300 IN A 104.16.0.1",
		}}, true},
		{"aaaa answer cname", map[uint16][]string{dns.TypeAAAA: {"www.example.com. 300 IN CNAME x.cloudflare.com."}}, true},
		{"other provider", map[uint16][]string{
			dns.TypeNS:    {"example.com. 300 IN NS ns1.example.net."},
			dns.TypeCNAME: {"www.example.com. 300 IN CNAME d1.cloudfront.net."},
		}, false},
		{"ns lookalike", map[uint16][]string{dns.TypeNS: {"example.com. 300 IN NS ns.cloudflare.com.evil.test."}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(&fakeQuerier{answers: tt.answers}, "")
			assert.Equal(t, tt.want, d.Detect(context.Background(), "www.example.com", nil))
		})
	}
}

func TestCloudflareDetector_HeaderSignals(t *testing.T) {
	d := newTestDetector(&fakeQuerier{}, "")

	server := http.Header{}
	server.Set("Server", "CloudFlare")
	assert.True(t, d.Detect(context.Background(), "example.com", server))

	ray := http.Header{}
	ray.Set("CF-RAY", "8abc-AMS")
	assert.True(t, d.Detect(context.Background(), "example.com", ray))

	plain := http.Header{}
	plain.Set("Server", "nginx")
	assert.False(t, d.Detect(context.Background(), "example.com", plain))
}

func TestCloudflareDetector_IPLiteralSkipsDNS(t *testing.T) {
	q := &fakeQuerier{answers: map[uint16][]string{dns.TypeNS: {"x. 300 IN NS a.ns.cloudflare.com."}}}
	d := newTestDetector(q, "")
	assert.False(t, d.Detect(context.Background(), "192.0.2.10", nil))
	assert.Zero(t, q.calls)
}

func TestCloudflareDetector_CanonicalFallback(t *testing.T) {
	failing := &fakeQuerier{err: errors.New("servfail")}
	assert.True(t, newTestDetector(failing, "foo.cdn.cloudflare.net.").Detect(context.Background(), "foo.example", nil))
	assert.False(t, newTestDetector(failing, "foo.example.").Detect(context.Background(), "foo.example", nil))

	assert.True(t, newTestDetector(nil, "x.cloudflare.com.").Detect(context.Background(), "x.example", nil))
}

func TestNewSystemQuerier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 192.0.2.53\nnameserver 2001:db8::53\n"), 0o600))

	q, err := NewSystemQuerier(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.53:53", "[2001:db8::53]:53"}, q.servers)

	_, err = NewSystemQuerier(filepath.Join(dir, "missing.conf"))
	assert.Error(t, err)
}
