package json

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteData(rec, http.StatusCreated, map[string]string{"id": "abc"}); err != nil {
		t.Fatalf("WriteData() error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["success"] != true {
		t.Errorf("Expected success=true, got %v", body["success"])
	}
	if _, ok := body["error"]; ok {
		t.Error("Expected no error field on success")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Invalid email format")

	if !strings.Contains(rec.Body.String(), `"error": "Invalid email format"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success": false`) {
		t.Errorf("Expected success=false: %s", rec.Body.String())
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		URL string `json:"url"`
	}

	if err := Decode(strings.NewReader(`{"url":"example.com"}`), &v); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if v.URL != "example.com" {
		t.Errorf("Expected url example.com, got %q", v.URL)
	}

	if err := Decode(strings.NewReader(`{"url":"a"} {"url":"b"}`), &v); err == nil {
		t.Error("Expected error for trailing data")
	}
	if err := Decode(strings.NewReader(`not json`), &v); err == nil {
		t.Error("Expected error for malformed body")
	}
}
