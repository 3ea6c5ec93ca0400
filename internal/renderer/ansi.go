package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"phishguard/pkg/models"
)

// Renderer writes scan results in one output format.
type Renderer interface {
	RenderURL(w io.Writer, report *models.URLReport) error
	RenderEmail(w io.Writer, report *models.EmailReport) error
	RenderScore(w io.Writer, target string, score models.QuickScore) error
}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// ANSIRenderer produces colourised terminal output for curl users.
type ANSIRenderer struct {
	// NoColor drops escape sequences and keeps the symbols.
	NoColor bool
}

func NewANSIRenderer() *ANSIRenderer {
	return &ANSIRenderer{}
}

func (a *ANSIRenderer) paint(color, s string) string {
	if a.NoColor {
		return s
	}
	return color + s + ansiReset
}

// verdictColor maps every verdict vocabulary onto traffic-light colours.
// ReputationGood and RatingGood share a value.
func verdictColor(v string) string {
	switch v {
	case models.SafetySafe, models.ReputationExcellent, models.ReputationGood, models.SpamLow:
		return ansiGreen
	case models.EmailCaution, models.SpamMedium, models.RatingNeedsImprovement, models.SafetyUnknown:
		return ansiYellow
	default:
		return ansiRed
	}
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func (a *ANSIRenderer) header(w io.Writer, title, target string, at time.Time) {
	fmt.Fprintf(w, "%s\n", a.paint(ansiBold, "═══ phishguard · "+title+" ═══"))
	fmt.Fprintf(w, "Target: %s\n", target)
	fmt.Fprintf(w, "Scanned: %s\n\n", at.UTC().Format(time.RFC3339))
}

func (a *ANSIRenderer) section(w io.Writer, name string) {
	fmt.Fprintf(w, "%s\n", a.paint(ansiBold, "[ "+name+" ]"))
}

func (a *ANSIRenderer) RenderURL(w io.Writer, report *models.URLReport) error {
	if report == nil {
		return errNilReport
	}

	a.header(w, "URL Scan", report.URL, report.Timestamp)

	a.section(w, "VERDICT")
	fmt.Fprintf(w, "  Safety: %s\n", a.paint(verdictColor(report.Safety), report.Safety))
	fmt.Fprintf(w, "  Reputation: %s\n\n", a.paint(verdictColor(report.Reputation), report.Reputation))

	a.section(w, "DOMAIN")
	fmt.Fprintf(w, "  Domain: %s\n", report.Domain)
	fmt.Fprintf(w, "  IP Address: %s\n", report.IPAddress)
	fmt.Fprintf(w, "  Age: %s\n", report.DomainAge)
	fmt.Fprintf(w, "  Registrar: %s\n", report.Registrar)
	fmt.Fprintf(w, "  Expires: %s\n\n", report.ExpiryDate)

	a.section(w, "SSL")
	if report.SSL.Valid {
		fmt.Fprintf(w, "  %s Valid certificate\n", a.paint(ansiGreen, "✓"))
	} else {
		fmt.Fprintf(w, "  %s No valid certificate\n", a.paint(ansiRed, "⚠"))
	}
	fmt.Fprintf(w, "  Issuer: %s\n", report.SSL.Issuer)
	fmt.Fprintf(w, "  Expires: %s\n\n", report.SSL.Expires)

	a.section(w, "HOSTING")
	loc := []string{report.Location.City, report.Location.Region, report.Location.Country}
	fmt.Fprintf(w, "  Location: %s\n", strings.Join(loc, ", "))
	fmt.Fprintf(w, "  ISP: %s\n", report.Server.ISP)
	fmt.Fprintf(w, "  Host: %s\n", report.Server.Host)
	fmt.Fprintf(w, "  Type: %s\n\n", report.Server.Type)

	a.section(w, "DNS")
	fmt.Fprintf(w, "  A Records: %d\n", report.DNS.ARecords)
	fmt.Fprintf(w, "  MX Records: %d\n", report.DNS.MXRecords)
	fmt.Fprintf(w, "  TXT Records: %d\n", report.DNS.TXTRecords)
	fmt.Fprintf(w, "  Accepts Email: %s\n\n", check(report.DNS.HasEmail))

	a.section(w, "PERFORMANCE")
	if p := report.Performance; p != nil {
		fmt.Fprintf(w, "  Score: %d (%s)\n", p.Score, a.paint(verdictColor(p.Rating), p.Rating))
		fmt.Fprintf(w, "  First Contentful Paint: %s\n", p.FCP)
		fmt.Fprintf(w, "  Largest Contentful Paint: %s\n", p.LCP)
		fmt.Fprintf(w, "  Total Blocking Time: %s\n", p.TBT)
	} else {
		fmt.Fprintf(w, "  No performance data available\n")
	}
	fmt.Fprintf(w, "\n")

	if report.Screenshot.Available && report.Screenshot.URL != nil {
		a.section(w, "SCREENSHOT")
		fmt.Fprintf(w, "  %s\n\n", *report.Screenshot.URL)
	}

	return nil
}

func (a *ANSIRenderer) RenderEmail(w io.Writer, report *models.EmailReport) error {
	if report == nil {
		return errNilReport
	}

	a.header(w, "Email Scan", report.Email, report.Timestamp)

	a.section(w, "VERDICT")
	fmt.Fprintf(w, "  Safety: %s (%d/100)\n\n", a.paint(emailColor(report.Safety), report.Safety), report.SafetyScore)

	a.section(w, "VALIDATION")
	v := report.Validation
	fmt.Fprintf(w, "  Deliverable: %s\n", check(v.IsValid))
	fmt.Fprintf(w, "  Format: %s\n", v.Format)
	fmt.Fprintf(w, "  SMTP: %s\n", v.SMTP)
	if v.Disposable {
		fmt.Fprintf(w, "  %s Disposable address\n", a.paint(ansiRed, "⚠"))
	}
	if v.FreeService {
		fmt.Fprintf(w, "  Free mail provider\n")
	}
	fmt.Fprintf(w, "\n")

	a.section(w, "BREACHES")
	b := report.Breaches
	if b.Found {
		fmt.Fprintf(w, "  %s Found in %d breach(es)\n", a.paint(ansiRed, "⚠"), b.Count)
		for _, s := range b.Sources {
			fmt.Fprintf(w, "    • %s\n", s)
		}
		if b.LastBreach != nil {
			fmt.Fprintf(w, "  Last Breach: %s\n", *b.LastBreach)
		}
	} else {
		fmt.Fprintf(w, "  %s No known breaches\n", a.paint(ansiGreen, "✓"))
	}
	fmt.Fprintf(w, "\n")

	a.section(w, "DOMAIN")
	fmt.Fprintf(w, "  Domain: %s\n", report.Domain)
	fmt.Fprintf(w, "  Reputation: %s\n", report.DomainInfo.Reputation)
	fmt.Fprintf(w, "  Age: %s\n", report.DomainInfo.Age)
	fmt.Fprintf(w, "  Registrar: %s\n", report.DomainInfo.Registrar)
	fmt.Fprintf(w, "  Country: %s\n\n", report.DomainInfo.Country)

	a.section(w, "MAIL SERVERS")
	if report.MX.Exists {
		for _, s := range report.MX.Servers {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	} else {
		fmt.Fprintf(w, "  %s No MX records\n", a.paint(ansiRed, "⚠"))
	}
	fmt.Fprintf(w, "\n")

	a.section(w, "SPAM")
	fmt.Fprintf(w, "  Score: %d (%s)\n", report.Spam.Score, a.paint(verdictColor(report.Spam.Risk), report.Spam.Risk))
	fmt.Fprintf(w, "  Blacklisted: %s\n\n", check(report.Spam.Blacklisted))

	return nil
}

func emailColor(status string) string {
	switch status {
	case models.EmailSafe:
		return ansiGreen
	case models.EmailCaution:
		return ansiYellow
	default:
		return ansiRed
	}
}

func (a *ANSIRenderer) RenderScore(w io.Writer, target string, score models.QuickScore) error {
	a.section(w, "QUICK SCORE")
	fmt.Fprintf(w, "  URL: %s\n", target)
	fmt.Fprintf(w, "  Score: %d (%s)\n", score.Score, a.paint(riskColor(score.Label), score.Label))
	if len(score.Reasons) == 0 {
		fmt.Fprintf(w, "  %s No issues detected\n", a.paint(ansiGreen, "✓"))
	}
	for _, r := range score.Reasons {
		fmt.Fprintf(w, "  ⚠ %s\n", r)
	}
	if len(score.Types) > 0 {
		fmt.Fprintf(w, "  Types: %s\n", strings.Join(score.Types, ", "))
	}
	if score.Screenshot != "" {
		fmt.Fprintf(w, "  Preview: %s\n", score.Screenshot)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func riskColor(label string) string {
	switch label {
	case models.RiskSafe:
		return ansiGreen
	case models.RiskMedium:
		return ansiYellow
	default:
		return ansiRed
	}
}
