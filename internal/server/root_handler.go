package server

import (
	"fmt"
	"net/http"
	"strings"

	"phishguard/internal/banner"
	"phishguard/internal/config"
	pgjson "phishguard/internal/json"
)

var homeFeatures = []string{
	"URL threat report: IP, geolocation, WHOIS age, SSL, DNS",
	"Instant heuristic risk score",
	"Email breach, MX, spam and disposable checks",
	"Per-user scan history",
	"Colorized terminal output",
}

// ServeHome handles the root "/" route. Terminals get the banner, JSON
// clients get the same content as a document.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.writeHomeJSON(w)
		return
	}
	h.writeHomeANSI(w)
}

func (h *Handler) writeHomeANSI(w http.ResponseWriter) {
	base := h.config.App.BaseURL()
	var b strings.Builder

	b.WriteString(banner.Generate(h.config.App.Name) + "\n\n")
	fmt.Fprintf(&b, "\033[1m\033[32m%s\033[0m - Phishing & Email Security Scanner\n\n", h.config.App.Name)

	b.WriteString("\033[1mUsage:\033[0m\n")
	fmt.Fprintf(&b, "  curl \"%s/api/scan/url?url=<url>&format=text\"\n", base)
	fmt.Fprintf(&b, "  curl \"%s/api/scan/email?email=<address>&format=text\"\n\n", base)

	b.WriteString("\033[1mExamples:\033[0m\n")
	fmt.Fprintf(&b, "  curl \"%s/api/scan/url?url=example.com&format=text\"\n", base)
	fmt.Fprintf(&b, "  curl -X POST -d '{\"url\":\"paypal-login.xyz\"}' %s/api/score\n", base)
	fmt.Fprintf(&b, "  curl \"%s/api/scan/email?email=someone@example.com\"\n\n", base)

	b.WriteString("\033[1mFeatures:\033[0m\n")
	for _, f := range homeFeatures {
		b.WriteString("  • " + f + "\n")
	}
	if h.config.Cache.Mode == config.CacheModeMem {
		fmt.Fprintf(&b, "  • In-Memory Caching (%v TTL)\n", h.config.Cache.TTL)
	} else {
		b.WriteString("  • Real-time Scanning (no caching)\n")
	}
	b.WriteString("\n")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, b.String())
}

func (h *Handler) writeHomeJSON(w http.ResponseWriter) {
	base := h.config.App.BaseURL()
	cacheOn := h.config.Cache.Mode == config.CacheModeMem

	pgjson.WriteJSON(w, http.StatusOK, map[string]any{
		"name":        h.config.App.Name,
		"description": "Phishing & Email Security Scanner",
		"endpoints": map[string]string{
			"url_scan":   base + "/api/scan/url",
			"email_scan": base + "/api/scan/email",
			"score":      base + "/api/score",
			"history":    base + "/api/scans",
			"health":     base + "/api/health",
		},
		"examples": []string{
			base + "/api/scan/url?url=example.com",
			base + "/api/scan/url?url=example.com&format=text",
			base + "/api/scan/email?email=someone@example.com",
		},
		"features": homeFeatures,
		"cache": map[string]any{
			"enabled": cacheOn,
			"ttl":     h.config.Cache.TTL.String(),
		},
	})
}
