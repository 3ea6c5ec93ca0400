package heuristics

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"phishguard/pkg/models"
)

// Hostname fragments that mark a URL as phishing.
var phishingPatterns = []string{
	"phishing", "scam", "fake", "malware", "virus",
	"hack", "suspicious", "dangerous", "unsafe", "fraud",
	"secure-login", "verify-account", "update-billing",
}

// Brand names of well-known sites, matched against the first label of the
// registrable domain.
var trustedBrands = map[string]bool{
	"google": true, "youtube": true, "facebook": true, "twitter": true,
	"github": true, "microsoft": true, "amazon": true, "wikipedia": true,
	"apple": true, "linkedin": true, "netflix": true, "reddit": true,
	"instagram": true, "stackoverflow": true, "medium": true,
}

// Verdict is the outcome of ClassifyURL.
type Verdict struct {
	Safety     string
	Reputation string
}

// IsTrustedDomain reports whether host belongs to an allow-listed brand.
// google.co.uk and accounts.google.com match, google.com.evil.ru does not.
func IsTrustedDomain(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	brand, _, _ := strings.Cut(registrable, ".")
	return trustedBrands[brand]
}

// HasPhishingPattern reports whether host contains a known phishing fragment.
func HasPhishingPattern(host string) bool {
	host = strings.ToLower(host)
	for _, p := range phishingPatterns {
		if strings.Contains(host, p) {
			return true
		}
	}
	return false
}

// ClassifyURL applies the safety policy to an already normalized URL.
// The first applicable rule wins: allow-list, phishing patterns, then scheme.
func ClassifyURL(rawURL string) Verdict {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Verdict{Safety: models.SafetyUnknown, Reputation: models.ReputationUnknown}
	}

	host := u.Hostname()
	https := strings.EqualFold(u.Scheme, "https")

	switch {
	case IsTrustedDomain(host):
		return Verdict{Safety: models.SafetySafe, Reputation: models.ReputationExcellent}
	case HasPhishingPattern(host):
		return Verdict{Safety: models.SafetyPhishing, Reputation: models.ReputationPoor}
	case https:
		return Verdict{Safety: models.SafetySafe, Reputation: models.ReputationGood}
	default:
		return Verdict{Safety: models.SafetyUnknown, Reputation: models.ReputationUnknown}
	}
}

// Hosting categories returned by ServerType.
const (
	ServerCDN   = "CDN/Web Server"
	ServerCloud = "Cloud Server"
	ServerVPS   = "VPS Server"
	ServerWeb   = "Web Server"
)

var serverTypeRules = []struct {
	kind    string
	needles []string
}{
	{ServerCDN, []string{"cloudflare", "cdn", "fastly", "akamai"}},
	{ServerCloud, []string{"aws", "amazon", "azure", "google cloud", "digitalocean"}},
	{ServerVPS, []string{"linode", "vultr", "ovh"}},
}

// ServerType guesses the hosting category from ISP and organisation names.
func ServerType(isp, org string) string {
	text := strings.ToLower(isp + " " + org)
	for _, rule := range serverTypeRules {
		for _, n := range rule.needles {
			if strings.Contains(text, n) {
				return rule.kind
			}
		}
	}
	return ServerWeb
}
