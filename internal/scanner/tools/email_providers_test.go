package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestBreachClient_Lookup(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantFound   bool
		wantCount   int
		wantSources []string
		wantLast    string
	}{
		{
			name:        "Not found",
			status:      http.StatusNotFound,
			wantSources: []string{},
		},
		{
			name:        "Rate limited is treated as none",
			status:      http.StatusTooManyRequests,
			wantSources: []string{},
		},
		{
			name:        "Six breaches are capped to five sources",
			status:      http.StatusOK,
			body:        `[{"Name":"A","BreachDate":"2023-05-01"},{"Name":"B"},{"Name":"C"},{"Name":"D"},{"Name":"E"},{"Name":"F"}]`,
			wantFound:   true,
			wantCount:   6,
			wantSources: []string{"A", "B", "C", "D", "E"},
			wantLast:    "2023-05-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/breachedaccount/user@example.com" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("truncateResponse") != "false" {
					t.Error("Expected truncateResponse=false")
				}
				if r.Header.Get("hibp-api-key") != "k" {
					t.Errorf("Expected API key header, got %q", r.Header.Get("hibp-api-key"))
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewBreachClient(srv.URL, "k", srv.Client()).Lookup(context.Background(), "user@example.com")
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			if got.Found != tt.wantFound || got.Count != tt.wantCount {
				t.Errorf("Found/Count = %v/%d, want %v/%d", got.Found, got.Count, tt.wantFound, tt.wantCount)
			}
			if !reflect.DeepEqual(got.Sources, tt.wantSources) {
				t.Errorf("Sources = %v, want %v", got.Sources, tt.wantSources)
			}
			if tt.wantLast == "" && got.LastBreach != nil {
				t.Errorf("Expected nil LastBreach, got %q", *got.LastBreach)
			}
			if tt.wantLast != "" && (got.LastBreach == nil || *got.LastBreach != tt.wantLast) {
				t.Errorf("LastBreach = %v, want %q", got.LastBreach, tt.wantLast)
			}
		})
	}
}

func TestBreachClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	if _, err := NewBreachClient(srv.URL, "", srv.Client()).Lookup(context.Background(), "user@example.com"); err == nil {
		t.Error("Expected error when the service is unreachable")
	}
}

func TestAbstractAPIClient_Validate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "abs" || r.URL.Query().Get("email") != "user@example.com" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"deliverability":"DELIVERABLE","is_smtp_valid":{"value":true},"is_free_email":{"value":false}}`))
	}))
	defer srv.Close()

	got, err := NewAbstractAPIClient(srv.URL, "abs", srv.Client()).Validate(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	want := ValidationResult{Deliverable: true, SMTPValid: true, FreeEmail: false}
	if got != want {
		t.Errorf("Validate() = %+v, want %+v", got, want)
	}
}

func TestWhoisXMLClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("domainName") != "example.com" || r.URL.Query().Get("outputFormat") != "JSON" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"WhoisRecord":{"domainAvailability":"UNAVAILABLE","createdDate":"2020-01-01","registrarName":"Registrar Inc","registrant":{"country":"US"}}}`))
	}))
	defer srv.Close()

	c := NewWhoisXMLClient(srv.URL, "wx", srv.Client())
	c.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	got, err := c.Lookup(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if got.Reputation != ReputationActive || got.Age != "4 years" || got.Registrar != "Registrar Inc" || got.Country != "US" {
		t.Errorf("Unexpected domain info: %+v", got)
	}
}

func TestRegistrationAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		created time.Time
		want    string
	}{
		{now.AddDate(-1, 0, -1), "1 year"},
		{now.AddDate(-10, 0, 0), "10 years"},
		{now.AddDate(0, 0, -95), "3 months"},
		{now.AddDate(0, 0, -40), "1 month"},
		{now.AddDate(0, 0, -5), "0 month"},
	}
	for _, tt := range tests {
		if got := RegistrationAge(tt.created, now); got != tt.want {
			t.Errorf("RegistrationAge(%v) = %q, want %q", tt.created, got, tt.want)
		}
	}
}

func TestIPQSClient_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/key/user@example.com" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"fraud_score":88,"recent_abuse":true}`))
	}))
	defer srv.Close()

	got, err := NewIPQSClient(srv.URL, "key", srv.Client()).Score(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("Score() error: %v", err)
	}
	if got.Score != 88 || !got.RecentAbuse {
		t.Errorf("Unexpected fraud score: %+v", got)
	}
}

func TestDebounceClient_IsDisposable(t *testing.T) {
	for body, want := range map[string]bool{
		`{"disposable":"true"}`:  true,
		`{"disposable":"false"}`: false,
		`{}`:                     false,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("email") != "example.com" {
				t.Errorf("Unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(body))
		}))

		got, err := NewDebounceClient(srv.URL, srv.Client()).IsDisposable(context.Background(), "example.com")
		srv.Close()
		if err != nil {
			t.Fatalf("IsDisposable() error: %v", err)
		}
		if got != want {
			t.Errorf("IsDisposable() with %s = %v, want %v", body, got, want)
		}
	}
}
