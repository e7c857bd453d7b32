package classifier

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
)

const (
	// DefaultResolvConf is where system resolvers are read from.
	DefaultResolvConf = "/etc/resolv.conf"
	// DefaultDNSLifetime bounds all DNS queries for one detection.
	DefaultDNSLifetime = 2 * time.Second
)

var (
	cnameMarkers  = []string{"cdn.cloudflare.net", "cloudflare.net", "cloudflare.com"}
	answerMarkers = []string{"cloudflare.net", "cloudflare.com"}
)

// CDNDetector decides whether a host is fronted by Cloudflare. It never fails.
type CDNDetector interface {
	Detect(ctx context.Context, host string, header http.Header) bool
}

// DNSQuerier returns the answer section for one question.
type DNSQuerier interface {
	Query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error)
}

// SystemQuerier sends queries to the nameservers listed in resolv.conf.
type SystemQuerier struct {
	client  *dns.Client
	servers []string
}

// NewSystemQuerier reads nameservers from path.
func NewSystemQuerier(path string) (*SystemQuerier, error) {
	cfg, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, common.WrapError(err, "failed to read resolver configuration")
	}
	if len(cfg.Servers) == 0 {
		return nil, common.NewError("no nameservers in %s", path)
	}

	servers := make([]string, 0, len(cfg.Servers))
	for _, server := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(server, cfg.Port))
	}
	return &SystemQuerier{
		client:  &dns.Client{Timeout: DefaultDNSLifetime},
		servers: servers,
	}, nil
}

// Query asks each nameserver in turn until one answers.
func (q *SystemQuerier) Query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range q.servers {
		in, _, err := q.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		return in.Answer, nil
	}
	return nil, lastErr
}

// CloudflareDetector combines DNS record checks with response header checks.
type CloudflareDetector struct {
	querier     DNSQuerier
	lookupCNAME func(ctx context.Context, host string) (string, error)
	lifetime    time.Duration
	logger      zerolog.Logger
}

// NewCloudflareDetector creates a detector. A nil querier makes the DNS signal
// rely on the canonical name from the system resolver only.
func NewCloudflareDetector(querier DNSQuerier, logger zerolog.Logger) *CloudflareDetector {
	return &CloudflareDetector{
		querier:     querier,
		lookupCNAME: net.DefaultResolver.LookupCNAME,
		lifetime:    DefaultDNSLifetime,
		logger:      logger.With().Str("component", "CloudflareDetector").Logger(),
	}
}

// NewSystemCloudflareDetector wires the detector to the system nameservers,
// falling back to canonical name checks when resolv.conf is unusable.
func NewSystemCloudflareDetector(logger zerolog.Logger) *CloudflareDetector {
	querier, err := NewSystemQuerier(DefaultResolvConf)
	if err != nil {
		logger.Debug().Err(err).Msg("DNS record lookups unavailable, using canonical name fallback")
		return NewCloudflareDetector(nil, logger)
	}
	return NewCloudflareDetector(querier, logger)
}

// Detect checks DNS first, then the Server and cf-ray headers.
func (d *CloudflareDetector) Detect(ctx context.Context, host string, header http.Header) bool {
	if host != "" && net.ParseIP(host) == nil && d.dnsIndicates(ctx, host) {
		return true
	}
	return HeadersIndicateCloudflare(header)
}

// HeadersIndicateCloudflare is the HTTP half of the detection.
func HeadersIndicateCloudflare(header http.Header) bool {
	if header == nil {
		return false
	}
	if strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare") {
		return true
	}
	return header.Get("Cf-Ray") != ""
}

func (d *CloudflareDetector) dnsIndicates(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, d.lifetime)
	defer cancel()

	if d.querier == nil {
		return d.canonicalIndicates(ctx, host)
	}

	failures := 0
	checks := []struct {
		qtype uint16
		match func(dns.RR) bool
	}{
		{dns.TypeNS, matchNS},
		{dns.TypeCNAME, matchCNAME},
		{dns.TypeA, matchAnswerCNAME},
		{dns.TypeAAAA, matchAnswerCNAME},
	}
	for _, check := range checks {
		answers, err := d.querier.Query(ctx, host, check.qtype)
		if err != nil {
			failures++
			d.logger.Debug().Str("host", host).Str("qtype", dns.TypeToString[check.qtype]).Err(err).Msg("DNS query failed")
			continue
		}
		for _, rr := range answers {
			if check.match(rr) {
				return true
			}
		}
	}

	if failures == len(checks) {
		return d.canonicalIndicates(ctx, host)
	}
	return false
}

func (d *CloudflareDetector) canonicalIndicates(ctx context.Context, host string) bool {
	if d.lookupCNAME == nil {
		return false
	}
	canonical, err := d.lookupCNAME(ctx, host)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(canonical), "cloudflare")
}

func matchNS(rr dns.RR) bool {
	ns, ok := rr.(*dns.NS)
	return ok && strings.HasSuffix(normalizeName(ns.Ns), "cloudflare.com")
}

func matchCNAME(rr dns.RR) bool {
	cname, ok := rr.(*dns.CNAME)
	return ok && containsAny(normalizeName(cname.Target), cnameMarkers)
}

func matchAnswerCNAME(rr dns.RR) bool {
	cname, ok := rr.(*dns.CNAME)
	return ok && containsAny(normalizeName(cname.Target), answerMarkers)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
