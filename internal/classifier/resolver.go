package classifier

import (
	"context"
	"net"

	"github.com/aleister1102/httpeek/internal/models"
)

// IPResolver maps a hostname to the IP shown in results.
type IPResolver interface {
	Resolve(ctx context.Context, host string) string
}

// SystemResolver uses the Go resolver and prefers IPv4.
type SystemResolver struct {
	resolver *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{resolver: net.DefaultResolver}
}

// Resolve returns the first IPv4 address, any address when there is no IPv4,
// or models.DNSFailIP on failure. IP literals are returned as-is.
func (r *SystemResolver) Resolve(ctx context.Context, host string) string {
	if host == "" {
		return "N/A"
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}

	if ips, err := r.resolver.LookupIP(ctx, "ip4", host); err == nil && len(ips) > 0 {
		return ips[0].String()
	}
	ips, err := r.resolver.LookupIP(ctx, "ip", host)
	if err != nil || len(ips) == 0 {
		return models.DNSFailIP
	}
	return ips[0].String()
}
