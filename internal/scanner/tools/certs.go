package tools

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"time"

	"phishguard/internal/logger"
)

// Certificate states reported by InspectCertificate.
const (
	CertActive       = "Active"
	CertExpiringSoon = "Expiring Soon"
	CertExpired      = "Expired"
)

// CertInfo contains the leaf certificate details of a TLS endpoint.
type CertInfo struct {
	Issuer       string
	CommonName   string
	ExpiresAt    time.Time
	Status       string
	IsSelfSigned bool
	IsTrusted    bool
}

// CertInspector performs a TLS handshake and reads the served certificate.
type CertInspector struct {
	Timeout time.Duration
	// Port defaults to 443.
	Port string
	// Roots overrides the system pool for chain verification.
	Roots *x509.CertPool
}

func NewCertInspector(timeout time.Duration) *CertInspector {
	return &CertInspector{Timeout: timeout, Port: "443"}
}

// Inspect connects to host and extracts the leaf certificate. Expired and
// untrusted certificates are still returned so they can be reported.
func (c *CertInspector) Inspect(ctx context.Context, host string) (CertInfo, error) {
	port := c.Port
	if port == "" {
		port = "443"
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, // inspect certificates that would fail verification
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return CertInfo{}, fmt.Errorf("TLS connection failed: %w", err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return CertInfo{}, fmt.Errorf("no certificates found")
	}

	cert := state.PeerCertificates[0]

	issuer := cert.Issuer.CommonName
	if issuer == "" && len(cert.Issuer.Organization) > 0 {
		issuer = cert.Issuer.Organization[0]
	}

	status := CertActive
	now := time.Now()
	if now.After(cert.NotAfter) {
		status = CertExpired
	} else if now.Add(30 * 24 * time.Hour).After(cert.NotAfter) {
		status = CertExpiringSoon
	}

	opts := x509.VerifyOptions{
		DNSName:       host,
		Roots:         c.Roots,
		Intermediates: x509.NewCertPool(),
	}
	for _, intermediate := range state.PeerCertificates[1:] {
		opts.Intermediates.AddCert(intermediate)
	}
	trusted := true
	if _, err := cert.Verify(opts); err != nil {
		trusted = false
		logger.FromContext(ctx).Debug("certificate chain verification failed",
			slog.String("host", host),
			slog.String("common_name", cert.Subject.CommonName),
			slog.String("error", err.Error()))
	}

	return CertInfo{
		Issuer:       issuer,
		CommonName:   cert.Subject.CommonName,
		ExpiresAt:    cert.NotAfter,
		Status:       status,
		IsSelfSigned: cert.Issuer.String() == cert.Subject.String(),
		IsTrusted:    trusted,
	}, nil
}
