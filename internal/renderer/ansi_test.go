package renderer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"phishguard/pkg/models"
)

func sampleURLReport() *models.URLReport {
	shot := "https://image.thum.io/get/https%3A%2F%2Fexample.com"
	return &models.URLReport{
		URL:        "https://example.com",
		Domain:     "example.com",
		Safety:     models.SafetySafe,
		Reputation: models.ReputationGood,
		IPAddress:  "93.184.216.34",
		DomainAge:  "29 years 4 months",
		Registrar:  "RESERVED-Internet Assigned Numbers Authority",
		ExpiryDate: "August 13, 2026",
		SSL:        models.SSLInfo{Valid: true, Issuer: models.UnknownIssuer, Expires: models.NotAvailable},
		Location:   models.Location{Country: "United States", City: "Los Angeles", Region: "California"},
		Server:     models.ServerInfo{ISP: "Edgecast", Host: "AS15133", Type: "Web Server"},
		Screenshot: models.Screenshot{Available: true, URL: &shot, Width: 1200, Height: 800},
		Performance: &models.Performance{
			Score: 92, FCP: "1.1 s", LCP: "1.9 s", TBT: "30 ms", Rating: models.RatingGood,
		},
		DNS:       models.DNSSummary{ARecords: 1, MXRecords: 1, TXTRecords: 2, HasEmail: true},
		Timestamp: time.Date(2025, 12, 25, 10, 30, 0, 0, time.UTC),
	}
}

func sampleEmailReport() *models.EmailReport {
	last := "2019-01-07"
	return &models.EmailReport{
		Email:       "someone@example.com",
		Domain:      "example.com",
		Safety:      models.EmailCaution,
		SafetyScore: 70,
		Validation:  models.EmailValidation{IsValid: true, Format: "Valid", SMTP: models.Unknown},
		Breaches: models.Breaches{
			Found: true, Count: 2, Sources: []string{"Adobe", "LinkedIn"}, LastBreach: &last,
		},
		DomainInfo: models.DomainInfo{Reputation: models.Unknown, Age: models.Unknown, Registrar: models.Unknown, Country: models.Unknown},
		MX:         models.MXInfo{Exists: true, Servers: []string{"mx.example.com."}, Valid: true},
		Spam:       models.SpamInfo{Score: 50, Risk: models.SpamMedium},
		Timestamp:  time.Date(2025, 12, 25, 10, 30, 0, 0, time.UTC),
	}
}

func TestANSIRenderer_RenderURL(t *testing.T) {
	r := &ANSIRenderer{NoColor: true}

	var buf bytes.Buffer
	if err := r.RenderURL(&buf, sampleURLReport()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	expected := []string{
		"═══ phishguard · URL Scan ═══",
		"Target: https://example.com",
		"Scanned: 2025-12-25T10:30:00Z",
		"[ VERDICT ]",
		"Safety: Safe",
		"Reputation: Good",
		"IP Address: 93.184.216.34",
		"Age: 29 years 4 months",
		"✓ Valid certificate",
		"Location: Los Angeles, California, United States",
		"MX Records: 1",
		"Accepts Email: ✓",
		"Score: 92 (Good)",
		"[ SCREENSHOT ]",
	}
	for _, s := range expected {
		if !strings.Contains(output, s) {
			t.Errorf("Expected output to contain %q", s)
		}
	}
	if strings.Contains(output, "\033[") {
		t.Error("Expected no escape sequences with NoColor")
	}
}

func TestANSIRenderer_RenderURL_Fallbacks(t *testing.T) {
	report := sampleURLReport()
	report.Performance = nil
	report.Screenshot = models.Screenshot{}
	report.SSL = models.SSLInfo{Valid: false, Issuer: models.NotAvailable, Expires: models.NotAvailable}

	var buf bytes.Buffer
	if err := NewANSIRenderer().RenderURL(&buf, report); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "No performance data available") {
		t.Error("Expected missing performance message")
	}
	if !strings.Contains(output, "No valid certificate") {
		t.Error("Expected certificate warning")
	}
	if strings.Contains(output, "[ SCREENSHOT ]") {
		t.Error("Expected screenshot section to be omitted")
	}
}

func TestANSIRenderer_RenderEmail(t *testing.T) {
	r := &ANSIRenderer{NoColor: true}

	var buf bytes.Buffer
	if err := r.RenderEmail(&buf, sampleEmailReport()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	expected := []string{
		"═══ phishguard · Email Scan ═══",
		"Target: someone@example.com",
		"Safety: Caution (70/100)",
		"Found in 2 breach(es)",
		"• Adobe",
		"Last Breach: 2019-01-07",
		"• mx.example.com.",
		"Score: 50 (Medium)",
	}
	for _, s := range expected {
		if !strings.Contains(output, s) {
			t.Errorf("Expected output to contain %q", s)
		}
	}
}

func TestANSIRenderer_RenderScore(t *testing.T) {
	r := &ANSIRenderer{NoColor: true}
	score := models.QuickScore{
		Score:      35,
		Label:      models.RiskHigh,
		Reasons:    []string{"No HTTPS: data may be intercepted", "Shortened URL hides destination"},
		Types:      []string{"Shortened link"},
		Screenshot: "https://image.thum.io/get/http%3A%2F%2Fbit.ly%2Fabcde",
	}

	var buf bytes.Buffer
	if err := r.RenderScore(&buf, "http://bit.ly/abcde", score); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	for _, s := range []string{"Score: 35 (High)", "⚠ No HTTPS", "Types: Shortened link", "Preview: https://image.thum.io/get/"} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected output to contain %q", s)
		}
	}
}

func TestANSIRenderer_Colors(t *testing.T) {
	var buf bytes.Buffer
	if err := NewANSIRenderer().RenderURL(&buf, sampleURLReport()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(buf.String(), ansiGreen+models.SafetySafe+ansiReset) {
		t.Error("Expected Safe verdict to be green")
	}
}

func TestANSIRenderer_NilReport(t *testing.T) {
	r := NewANSIRenderer()
	var buf bytes.Buffer

	if err := r.RenderURL(&buf, nil); err == nil {
		t.Error("Expected error for nil URL report")
	}
	if err := r.RenderEmail(&buf, nil); err == nil {
		t.Error("Expected error for nil email report")
	}
}
