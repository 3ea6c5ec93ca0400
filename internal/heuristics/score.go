// Package heuristics holds the network-free scorers and classification
// lists shared by the URL and email scanners.
package heuristics

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"phishguard/pkg/models"
)

var suspiciousKeywords = []string{
	"login", "verify", "account", "secure", "update",
	"confirm", "signin", "password", "bank",
}

var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "t.co", "goo.gl", "tiny.cc", "is.gd",
}

// Reason strings emitted by ScoreURL, in evaluation order.
const (
	ReasonVeryLong     = "Very long URL (common in obfuscation)"
	ReasonLong         = "Long URL"
	ReasonNoHTTPS      = "No HTTPS: data may be intercepted"
	ReasonKeywords     = "Contains suspicious keywords: "
	ReasonShortened    = "Shortened URL (destination hidden)"
	ReasonPunycode     = "Punycode / IDN (possible homograph attack)"
	ReasonAtSign       = "Contains @ (credentials/obscure redirect)"
	ReasonManyQueries  = "Many query parameters (suspicious)"
	ReasonSubdomains   = "Multiple subdomains (possible cloaking)"
	ReasonUnusualStart = "Unusual domain start"
)

// Hostname extracts the lowercased, ASCII-normalized host of raw with any
// leading "www." removed. Values that do not parse are returned lowercased.
func Hostname(raw string) string {
	candidate := raw
	if !strings.HasPrefix(candidate, "http") {
		candidate = "http://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(raw)
	}

	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

func hasHTTPS(raw string) bool {
	return len(raw) >= 8 && strings.EqualFold(raw[:8], "https://")
}

// ScoreURL rates raw from 0 to 100 using only the string itself.
// Deductions are applied in a fixed order and each one that fires adds a
// reason.
func ScoreURL(raw string) models.QuickScore {
	host := Hostname(raw)
	lower := strings.ToLower(raw)
	score := 100
	reasons := []string{}

	switch n := utf8.RuneCountInString(raw); {
	case n > 150:
		score -= 28
		reasons = append(reasons, ReasonVeryLong)
	case n > 100:
		score -= 14
		reasons = append(reasons, ReasonLong)
	}

	if !hasHTTPS(raw) {
		score -= 30
		reasons = append(reasons, ReasonNoHTTPS)
	}

	var found []string
	for _, w := range suspiciousKeywords {
		if strings.Contains(lower, w) {
			found = append(found, w)
		}
	}
	if len(found) > 0 {
		score -= min(30, len(found)*8)
		shown := found[:min(4, len(found))]
		reasons = append(reasons, ReasonKeywords+strings.Join(shown, ", "))
	}

	for _, d := range shortenerDomains {
		if strings.HasSuffix(host, d) {
			score -= 35
			reasons = append(reasons, ReasonShortened)
			break
		}
	}

	if strings.Contains(host, "xn--") {
		score -= 25
		reasons = append(reasons, ReasonPunycode)
	}

	if strings.Contains(raw, "@") {
		score -= 20
		reasons = append(reasons, ReasonAtSign)
	}

	if strings.Count(raw, "?") > 2 {
		score -= 6
		reasons = append(reasons, ReasonManyQueries)
	}

	if len(strings.Split(host, ".")) >= 4 {
		score -= 10
		reasons = append(reasons, ReasonSubdomains)
	}

	if host != "" && (host[0] == '-' || (host[0] >= '0' && host[0] <= '9')) {
		score -= 10
		reasons = append(reasons, ReasonUnusualStart)
	}

	score = max(0, min(100, score))
	return models.QuickScore{
		Score:   score,
		Label:   models.RiskLabel(score),
		Reasons: reasons,
	}
}

var typeRules = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{"Banking", regexp.MustCompile(`(bank|onlinebank|banking|securebank)`)},
	{"Login page", regexp.MustCompile(`(login|signin|sign-in)`)},
	{"Password reset", regexp.MustCompile(`(reset|forgot|password)`)},
	{"API endpoint", regexp.MustCompile(`/api/`)},
	{"File / download", regexp.MustCompile(`(share|download|file)`)},
	{"Shortened URL", regexp.MustCompile(`bit\.ly|tinyurl|t\.co|goo\.gl|is\.gd`)},
}

// DetectType guesses what kind of page raw points at.
func DetectType(raw string) []string {
	lower := strings.ToLower(raw)
	types := []string{}
	for _, r := range typeRules {
		if r.pattern.MatchString(lower) {
			types = append(types, r.label)
		}
	}
	if len(types) == 0 {
		types = append(types, "General website")
	}
	return types
}

// HarmReasons turns a score into a short list of potential harms for display.
func HarmReasons(raw string, s models.QuickScore) []string {
	out := []string{}
	switch s.Label {
	case models.RiskHigh:
		out = append(out, "Likely credential theft or malware distribution.")
	case models.RiskMedium:
		out = append(out, "May attempt to trick users into disclosing sensitive information.")
	default:
		out = append(out, "Looks mostly safe, verify certificate and origin before entering sensitive info.")
	}

	if !hasHTTPS(raw) {
		out = append(out, "No HTTPS: traffic may be intercepted.")
	}
	return append(out, s.Reasons[:min(4, len(s.Reasons))]...)
}

// EncodeURIComponent escapes s the way browsers encode a single URI
// component: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ScreenshotURL is the plain thum.io preview link used by quick scans.
func ScreenshotURL(raw string) string {
	return "https://image.thum.io/get/" + EncodeURIComponent(raw)
}
