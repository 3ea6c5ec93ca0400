package renderer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"phishguard/pkg/models"
)

type urlEnvelope struct {
	Success bool             `json:"success"`
	Data    models.URLReport `json:"data"`
}

func TestJSONRenderer_RenderURL(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer().RenderURL(&buf, sampleURLReport()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var decoded urlEnvelope
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Generated invalid JSON: %v", err)
	}
	if !decoded.Success {
		t.Error("Expected success envelope")
	}
	if decoded.Data.Domain != "example.com" || decoded.Data.IPAddress != "93.184.216.34" {
		t.Errorf("Unexpected decoded report: %+v", decoded.Data)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("Expected indented output")
	}
}

func TestJSONRenderer_RenderURL_NullPerformance(t *testing.T) {
	report := sampleURLReport()
	report.Performance = nil
	report.Screenshot = models.Screenshot{}

	var buf bytes.Buffer
	if err := NewJSONRendererCompact().RenderURL(&buf, report); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	for _, s := range []string{`"performance":null`, `"url":null`, `"available":false`} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected %s in %s", s, output)
		}
	}
	if strings.Contains(output, "\n  ") {
		t.Error("Expected compact output")
	}
}

func TestJSONRenderer_RenderEmail_FieldNames(t *testing.T) {
	report := sampleEmailReport()
	report.Breaches = models.Breaches{Sources: []string{}}

	var buf bytes.Buffer
	if err := NewJSONRendererCompact().RenderEmail(&buf, report); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	output := buf.String()

	for _, s := range []string{`"safetyScore":70`, `"freeService":false`, `"sources":[]`, `"lastBreach":null`, `"domainInfo":{`} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected %s in %s", s, output)
		}
	}
}

func TestJSONRenderer_RenderScore(t *testing.T) {
	score := models.QuickScore{Score: 100, Label: models.RiskSafe, Reasons: []string{}}

	var buf bytes.Buffer
	if err := NewJSONRendererCompact().RenderScore(&buf, "https://example.com", score); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := `{"success":true,"data":{"url":"https://example.com","score":100,"label":"Safe","reasons":[]}}` + "\n"
	if buf.String() != want {
		t.Errorf("got %s want %s", buf.String(), want)
	}
}

func TestJSONRenderer_NilReport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer().RenderURL(&buf, nil); err == nil {
		t.Error("Expected error for nil report")
	}
	if err := NewJSONRenderer().RenderEmail(&buf, nil); err == nil {
		t.Error("Expected error for nil report")
	}
}

var (
	_ Renderer = (*JSONRenderer)(nil)
	_ Renderer = (*ANSIRenderer)(nil)
)
