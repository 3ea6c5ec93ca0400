package heuristics

import (
	"regexp"
	"slices"
	"strings"

	"phishguard/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmailFormat reports whether s has a local@domain.tld shape.
func ValidEmailFormat(s string) bool {
	return emailPattern.MatchString(s)
}

var freeProviders = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"icloud.com", "protonmail.com", "mail.com", "aol.com",
}

var knownGoodDomains = []string{
	"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
	"icloud.com", "protonmail.com", "mail.com",
}

var disposableDomains = []string{
	"tempmail.com", "guerrillamail.com", "10minutemail.com", "mailinator.com",
	"throwaway.email", "getnada.com", "temp-mail.org", "mohmal.com",
	"sharklasers.com", "trashmail.com", "yopmail.com", "maildrop.cc",
}

func IsFreeProvider(domain string) bool {
	return slices.Contains(freeProviders, domain)
}

func IsKnownGoodDomain(domain string) bool {
	return slices.Contains(knownGoodDomains, domain)
}

// IsDisposableDomain matches by substring so subdomains of throwaway
// services are caught too.
func IsDisposableDomain(domain string) bool {
	for _, d := range disposableDomains {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{5,}`),
	regexp.MustCompile(`(admin|support|noreply|info)@`),
	regexp.MustCompile(`[._-]{2,}`),
}

// SpamScore is the local spam estimate for an address: 50, plus 10 per
// matched pattern, plus 15 when the domain has more than two labels.
func SpamScore(email string) int {
	score := 50
	for _, p := range spamPatterns {
		if p.MatchString(email) {
			score += 10
		}
	}

	_, domain, _ := strings.Cut(email, "@")
	if len(strings.Split(domain, ".")) > 2 {
		score += 15
	}
	return min(score, 100)
}

// SpamRisk maps a spam score to its level.
func SpamRisk(score int) string {
	switch {
	case score >= 75:
		return models.SpamHigh
	case score >= 50:
		return models.SpamMedium
	default:
		return models.SpamLow
	}
}

// EmailSafety derives the safety score and verdict from the merged fields
// of an email report.
func EmailSafety(r models.EmailReport) (int, string) {
	score := 100

	if r.Breaches.Found {
		score -= min(r.Breaches.Count*5, 30)
	}
	if !r.Validation.IsValid {
		score -= 40
	}
	if r.Validation.Disposable {
		score -= 25
	}
	if r.Spam.Score > 70 {
		score -= 20
	}
	if !r.MX.Exists {
		score -= 15
	}

	score = max(0, min(100, score))
	return score, models.EmailStatus(score)
}
