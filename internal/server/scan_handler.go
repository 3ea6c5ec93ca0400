package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"phishguard/internal/heuristics"
	pgjson "phishguard/internal/json"
	"phishguard/internal/renderer"
	"phishguard/internal/scanner"
	"phishguard/pkg/models"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

type scanRequest struct {
	URL   string `json:"url"`
	Email string `json:"email"`
}

// readScanInput takes field from the query string, falling back to the JSON
// body on POST.
func readScanInput(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	if v := r.URL.Query().Get(field); v != "" || r.Method == http.MethodGet {
		return v, nil
	}

	var req scanRequest
	if err := decodeBody(w, r, &req); err != nil {
		return "", err
	}
	if field == "email" {
		return req.Email, nil
	}
	return req.URL, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return pgjson.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), v)
}

// ServeScanURL handles "/api/scan/url". Results are cached under the
// normalized URL.
func (h *Handler) ServeScanURL(w http.ResponseWriter, r *http.Request) {
	raw, err := readScanInput(w, r, "url")
	if err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target, _, err := scanner.NormalizeURL(raw)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}

	ctx := r.Context()
	format := h.getOutputFormat(r)

	if cached, found := h.urlCache.Get(ctx, target); found {
		h.writeURLReport(w, cached, format)
		return
	}

	report, err := h.urlScanner.Scan(ctx, raw)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}

	// A scan cut short by a disconnecting client is full of fallbacks.
	if ctx.Err() == nil {
		h.urlCache.Set(ctx, target, report)
	}
	h.writeURLReport(w, report, format)
}

// ServeScanEmail handles "/api/scan/email".
func (h *Handler) ServeScanEmail(w http.ResponseWriter, r *http.Request) {
	raw, err := readScanInput(w, r, "email")
	if err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, _, err := scanner.NormalizeEmail(raw)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}

	ctx := r.Context()
	format := h.getOutputFormat(r)

	if cached, found := h.emailCache.Get(ctx, email); found {
		h.writeEmailReport(w, cached, format)
		return
	}

	report, err := h.emailScanner.Scan(ctx, raw)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}

	if ctx.Err() == nil {
		h.emailCache.Set(ctx, email, report)
	}
	h.writeEmailReport(w, report, format)
}

// ServeScore handles "/api/score": the instant heuristic, no network.
func (h *Handler) ServeScore(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		pgjson.WriteError(w, http.StatusBadRequest, "URL is required")
		return
	}

	score := heuristics.ScoreURL(raw)
	score.Types = heuristics.DetectType(raw)
	score.Harm = heuristics.HarmReasons(raw, score)
	score.Screenshot = heuristics.ScreenshotURL(raw)

	h.render(w, h.getOutputFormat(r), func(rr renderer.Renderer, out io.Writer) error {
		return rr.RenderScore(out, raw, score)
	})
}

func (h *Handler) writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *scanner.InvalidInputError
	if errors.As(err, &invalid) {
		pgjson.WriteError(w, http.StatusBadRequest, invalid.UserMessage())
		return
	}

	GetLoggerFromContext(r.Context(), h.logger).Error("scan failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	pgjson.WriteError(w, http.StatusInternalServerError, "Scan failed")
}

func (h *Handler) writeURLReport(w http.ResponseWriter, report *models.URLReport, format OutputFormat) {
	h.render(w, format, func(rr renderer.Renderer, out io.Writer) error {
		return rr.RenderURL(out, report)
	})
}

func (h *Handler) writeEmailReport(w http.ResponseWriter, report *models.EmailReport, format OutputFormat) {
	h.render(w, format, func(rr renderer.Renderer, out io.Writer) error {
		return rr.RenderEmail(out, report)
	})
}

// render buffers the output; a rendering failure becomes a 500.
func (h *Handler) render(w http.ResponseWriter, format OutputFormat, fn func(renderer.Renderer, io.Writer) error) {
	rr, contentType := h.jsonRenderer, "application/json"
	if format == OutputFormatANSI {
		rr, contentType = h.ansiRenderer, "text/plain; charset=utf-8"
	}

	var buf bytes.Buffer
	if err := fn(rr, &buf); err != nil {
		h.logger.Error("failed to render response",
			slog.String("format", format.String()),
			slog.String("error", err.Error()))
		pgjson.WriteError(w, http.StatusInternalServerError, "Failed to render response")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
