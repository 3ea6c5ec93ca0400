package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"phishguard/internal/auth"
	"phishguard/internal/cache"
	"phishguard/internal/config"
	"phishguard/internal/heuristics"
	"phishguard/internal/mailer"
	"phishguard/internal/scanner"
	"phishguard/internal/store"
	"phishguard/pkg/models"
)

type mockURLScanner struct {
	report *models.URLReport
	err    error
	calls  atomic.Int32
}

func (m *mockURLScanner) Scan(ctx context.Context, raw string) (*models.URLReport, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	report := *m.report
	report.Timestamp = time.Now()
	return &report, nil
}

type mockEmailScanner struct {
	report *models.EmailReport
	calls  atomic.Int32
}

func (m *mockEmailScanner) Scan(ctx context.Context, raw string) (*models.EmailReport, error) {
	m.calls.Add(1)
	if _, _, err := scanner.NormalizeEmail(raw); err != nil {
		return nil, err
	}
	report := *m.report
	return &report, nil
}

// downStore is a store whose database is unreachable.
type downStore struct {
	*store.MemoryStore
}

func (downStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

type testEnv struct {
	handler *Handler
	urls    *mockURLScanner
	emails  *mockEmailScanner
	store   *store.MemoryStore
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.App.Name = "Test App"
	cfg.App.Host = "localhost"
	cfg.App.Port = ":8080"
	cfg.Cache = config.CacheConfig{Mode: config.CacheModeMem, TTL: time.Hour}
	cfg.RateLimit.Enabled = false
	cfg.Auth.ExposeOTP = true
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	codes := cache.NewMemoryStore[string](time.Minute)
	t.Cleanup(codes.Close)

	env := &testEnv{
		urls: &mockURLScanner{report: &models.URLReport{
			URL:       "https://example.com",
			Domain:    "example.com",
			Safety:    models.SafetySafe,
			IPAddress: "93.184.216.34",
		}},
		emails: &mockEmailScanner{report: &models.EmailReport{
			Email:       "someone@example.com",
			Domain:      "example.com",
			Safety:      models.EmailSafe,
			SafetyScore: 100,
		}},
		store: st,
	}

	svc := auth.NewService(st, codes, mailer.NewLogSender(log), auth.Options{
		AppName:    cfg.App.Name,
		OTPTTL:     time.Minute,
		BcryptCost: bcrypt.MinCost,
		Logger:     log,
	})

	env.handler = NewHandler(cfg, Deps{
		URLScanner:   env.urls,
		EmailScanner: env.emails,
		Store:        st,
		Auth:         svc,
	})
	t.Cleanup(env.handler.Close)
	return env
}

func (e *testEnv) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHandler_ScanURL_CacheHit(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w1 := env.do("GET", "/api/scan/url?url=example.com", "", nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w1.Code, w1.Body.String())
	}
	if env.urls.calls.Load() != 1 {
		t.Errorf("Expected 1 scanner call, got %d", env.urls.calls.Load())
	}

	// Same site, different spelling: the cache key is the normalized URL.
	w2 := env.do("POST", "/api/scan/url", `{"url":" example.com "}`, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w2.Code)
	}
	if env.urls.calls.Load() != 1 {
		t.Errorf("Expected still 1 scanner call (cache hit), got %d", env.urls.calls.Load())
	}

	resp := decodeEnvelope(t, w2)
	var report models.URLReport
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if !resp.Success || report.Domain != "example.com" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestHandler_ScanURL_NoCache(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Mode = config.CacheModeNone
	env := newTestEnv(t, cfg)

	for i := 0; i < 3; i++ {
		if w := env.do("GET", "/api/scan/url?url=example.com", "", nil); w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
	}
	if env.urls.calls.Load() != 3 {
		t.Errorf("Expected 3 scanner calls, got %d", env.urls.calls.Load())
	}
}

func TestHandler_ScanURL_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"missing query", "GET", "/api/scan/url", ""},
		{"empty body field", "POST", "/api/scan/url", `{"url":""}`},
		{"scheme only", "POST", "/api/scan/url", `{"url":"https://"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testConfig())
			w := env.do(tt.method, tt.target, tt.body, nil)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			resp := decodeEnvelope(t, w)
			if resp.Success || !strings.HasPrefix(resp.Error, "Invalid URL format") {
				t.Errorf("Unexpected error response: %+v", resp)
			}
			if env.urls.calls.Load() != 0 {
				t.Errorf("Expected no scan for invalid input, got %d", env.urls.calls.Load())
			}
		})
	}
}

func TestHandler_ScanURL_MalformedBody(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("POST", "/api/scan/url", `{"url":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandler_ScanURL_ScannerError(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.urls.err = errors.New("boom")

	w := env.do("GET", "/api/scan/url?url=example.com", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	// Failures are not cached.
	env.urls.err = nil
	if w := env.do("GET", "/api/scan/url?url=example.com", "", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 after recovery, got %d", w.Code)
	}
	if env.urls.calls.Load() != 2 {
		t.Errorf("Expected 2 scanner calls, got %d", env.urls.calls.Load())
	}
}

func TestHandler_ScanURL_OutputFormats(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		accept      string
		contentType string
	}{
		{"default json", "/api/scan/url?url=example.com", "", "application/json"},
		{"format text", "/api/scan/url?url=example.com&format=text", "", "text/plain"},
		{"accept text", "/api/scan/url?url=example.com", "text/plain", "text/plain"},
		{"format wins over accept", "/api/scan/url?url=example.com&format=json", "text/plain", "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testConfig())
			headers := map[string]string{}
			if tt.accept != "" {
				headers["Accept"] = tt.accept
			}

			w := env.do("GET", tt.target, "", headers)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("Expected content type %s, got %s", tt.contentType, ct)
			}
		})
	}
}

func TestHandler_ScanEmail(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("POST", "/api/scan/email", `{"email":"Someone@Example.com"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var report models.EmailReport
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.SafetyScore != 100 {
		t.Errorf("Expected safety score 100, got %d", report.SafetyScore)
	}

	// Cached under the lowercased address.
	env.do("GET", "/api/scan/email?email=someone@example.com", "", nil)
	if env.emails.calls.Load() != 1 {
		t.Errorf("Expected 1 scanner call, got %d", env.emails.calls.Load())
	}
}

func TestHandler_ScanEmail_Invalid(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("POST", "/api/scan/email", `{"email":"not-an-email"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Error != "Invalid email format" {
		t.Errorf("Expected 'Invalid email format', got %q", resp.Error)
	}
	if env.emails.calls.Load() != 0 {
		t.Errorf("Expected no scan for invalid email, got %d", env.emails.calls.Load())
	}
}

func TestHandler_Score(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("POST", "/api/score", `{"url":"http://secure-login@paypal-verify.xyz/account"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var score struct {
		URL        string   `json:"url"`
		Score      int      `json:"score"`
		Label      string   `json:"label"`
		Reasons    []string `json:"reasons"`
		Types      []string `json:"types"`
		Harm       []string `json:"harm"`
		Screenshot string   `json:"screenshot"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &score); err != nil {
		t.Fatalf("Failed to decode score: %v", err)
	}
	if score.Label != models.RiskHigh {
		t.Errorf("Expected %s, got %s (score %d)", models.RiskHigh, score.Label, score.Score)
	}
	if len(score.Types) == 0 || len(score.Harm) == 0 {
		t.Errorf("Expected types and harm to be filled: %+v", score)
	}
	if want := "https://image.thum.io/get/" + heuristics.EncodeURIComponent("http://secure-login@paypal-verify.xyz/account"); score.Screenshot != want {
		t.Errorf("Screenshot = %q, want %q", score.Screenshot, want)
	}
	if env.urls.calls.Load() != 0 {
		t.Error("Expected the score endpoint to skip the full scan")
	}
}

func TestHandler_Score_MissingURL(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("POST", "/api/score", `{}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandler_NotFound(t *testing.T) {
	env := newTestEnv(t, testConfig())

	w := env.do("GET", "/api/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Success {
		t.Error("Expected success=false")
	}
}

func TestOutputFormat_String(t *testing.T) {
	if OutputFormatJSON.String() != "json" || OutputFormatANSI.String() != "ansi" {
		t.Error("Unexpected output format names")
	}
	if OutputFormat(99).String() != "unknown" {
		t.Error("Expected unknown for out of range format")
	}
}
