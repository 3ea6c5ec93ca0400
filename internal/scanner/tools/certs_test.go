package tools

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestCertInspector_Inspect(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, port, _ := net.SplitHostPort(u.Host)

	inspector := NewCertInspector(5 * time.Second)
	inspector.Port = port

	info, err := inspector.Inspect(context.Background(), host)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}

	if info.Issuer != "Acme Co" {
		t.Errorf("Expected issuer Acme Co, got %q", info.Issuer)
	}
	if info.ExpiresAt.IsZero() {
		t.Error("Expected expiry to be set")
	}
	if info.Status != CertActive {
		t.Errorf("Expected active certificate, got %s", info.Status)
	}
	if info.IsTrusted {
		t.Error("Expected test certificate not to chain to system roots")
	}
}

func TestCertInspector_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	inspector := NewCertInspector(time.Second)
	inspector.Port = port

	if _, err := inspector.Inspect(context.Background(), "127.0.0.1"); err == nil {
		t.Error("Expected error for closed port")
	}
}
