package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIPAPIClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/93.184.216.34/json/" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"country_name":"United States","city":"Norwell","region":"Massachusetts","org":"EDGECAST","asn":"AS15133"}`))
	}))
	defer srv.Close()

	info, err := NewIPAPIClient(srv.URL, srv.Client()).Lookup(context.Background(), "93.184.216.34", "example.com")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	if info.Location.Country != "United States" || info.Location.City != "Norwell" {
		t.Errorf("Unexpected location: %+v", info.Location)
	}
	if info.Server.Host != "AS15133" || info.Server.ISP != "EDGECAST" {
		t.Errorf("Unexpected server: %+v", info.Server)
	}
	if info.Server.Type != "Web Server" {
		t.Errorf("Expected Web Server, got %s", info.Server.Type)
	}
}

func TestIPAPIClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer srv.Close()

	_, err := NewIPAPIClient(srv.URL, srv.Client()).Lookup(context.Background(), "1.1.1.1", "one.one")
	if err == nil || !strings.Contains(err.Error(), "RateLimited") {
		t.Errorf("Expected RateLimited error, got %v", err)
	}
}

func TestIPAPIComClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/104.16.1.1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","country":"Canada","regionName":"Ontario","isp":"Cloudflare, Inc.","org":"Cloudflare"}`))
	}))
	defer srv.Close()

	info, err := NewIPAPIComClient(srv.URL, srv.Client()).Lookup(context.Background(), "104.16.1.1", "site.example")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	if info.Location.City != "Unknown" {
		t.Errorf("Expected missing city to be Unknown, got %q", info.Location.City)
	}
	if info.Server.Host != "site.example" {
		t.Errorf("Expected host to fall back to hostname, got %q", info.Server.Host)
	}
	if info.Server.Type != "CDN/Web Server" {
		t.Errorf("Expected CDN/Web Server, got %q", info.Server.Type)
	}
}

type stubGeo struct {
	info  GeoInfo
	err   error
	calls int
}

func (s *stubGeo) Lookup(context.Context, string, string) (GeoInfo, error) {
	s.calls++
	return s.info, s.err
}

func TestGeoChain(t *testing.T) {
	first := &stubGeo{err: errors.New("primary down")}
	second := &stubGeo{info: GeoInfo{}}
	second.info.Location.Country = "Germany"

	info, err := GeoChain{first, second}.Lookup(context.Background(), "1.2.3.4", "h")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if info.Location.Country != "Germany" {
		t.Errorf("Expected fallback provider result, got %+v", info)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("Expected one call each, got %d/%d", first.calls, second.calls)
	}

	both := GeoChain{&stubGeo{err: errors.New("a")}, &stubGeo{err: errors.New("b")}}
	if _, err := both.Lookup(context.Background(), "1.2.3.4", "h"); err == nil {
		t.Error("Expected error when every provider fails")
	}
}
