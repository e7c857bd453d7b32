package classifier

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"net"
	"time"

	"github.com/aleister1102/httpeek/internal/models"
)

// NotAfterLayout mirrors the OpenSSL rendering of certificate expiry.
const NotAfterLayout = "Jan _2 15:04:05 2006 GMT"

// CertGrabber reads the peer certificate of a host.
type CertGrabber interface {
	Grab(ctx context.Context, host, port string) *models.TLSInfo
}

// TLSGrabber opens its own verified TLS connection to read the leaf certificate.
type TLSGrabber struct {
	Timeout time.Duration
	// RootCAs overrides the system pool when set.
	RootCAs *x509.CertPool
}

// Grab never fails; errors are reported in TLSInfo.Error.
func (g *TLSGrabber) Grab(ctx context.Context, host, port string) *models.TLSInfo {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: g.Timeout},
		Config: &tls.Config{
			ServerName: host,
			RootCAs:    g.RootCAs,
		},
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return &models.TLSInfo{Error: fmt.Sprintf("TLS grab failed: %v", err)}
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return &models.TLSInfo{Error: "TLS grab failed: no peer certificate"}
	}
	return CertificateInfo(state.PeerCertificates[0])
}

// CertificateInfo summarizes a certificate.
func CertificateInfo(cert *x509.Certificate) *models.TLSInfo {
	notAfter := cert.NotAfter.UTC()
	return &models.TLSInfo{
		Subject:    distinguishedName(cert.Subject),
		Issuer:     distinguishedName(cert.Issuer),
		NotAfter:   notAfter.Format(NotAfterLayout),
		ExpiresUTC: notAfter.Format(time.RFC3339),
	}
}

func distinguishedName(name pkix.Name) map[string]string {
	out := make(map[string]string)
	set := func(key string, values []string) {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	if name.CommonName != "" {
		out["commonName"] = name.CommonName
	}
	set("organizationName", name.Organization)
	set("organizationalUnitName", name.OrganizationalUnit)
	set("countryName", name.Country)
	set("stateOrProvinceName", name.Province)
	set("localityName", name.Locality)
	if len(out) == 0 {
		out["commonName"] = "?"
	}
	return out
}
