package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"

	"phishguard/internal/heuristics"
	"phishguard/internal/logger"
	"phishguard/internal/scanner/tools"
	"phishguard/pkg/models"
)

const defaultWHOISTimeout = 10 * time.Second

const expiryLayout = "January 2, 2006"

type performanceProvider interface {
	Run(ctx context.Context, target string) (*models.Performance, error)
}

type certProvider interface {
	Inspect(ctx context.Context, host string) (tools.CertInfo, error)
}

// URLDeps are the collaborators of a URLScanner. Certs is optional; when nil
// the SSL verdict is derived from the URL scheme alone.
type URLDeps struct {
	Resolver       tools.Resolver
	Geo            tools.GeoProvider
	WHOIS          tools.WHOISProvider
	WHOISTimeout   time.Duration
	PageSpeed      performanceProvider
	ScreenshotBase string
	Certs          certProvider
	Logger         *slog.Logger
	Now            func() time.Time
}

// URLScanner builds a URLReport from independent upstream lookups.
type URLScanner struct {
	deps URLDeps
}

func NewURLScanner(deps URLDeps) *URLScanner {
	if deps.WHOISTimeout <= 0 {
		deps.WHOISTimeout = defaultWHOISTimeout
	}
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &URLScanner{deps: deps}
}

// NormalizeURL trims raw, defaults the scheme to https, lowercases an
// explicit scheme and returns the resulting URL together with its
// lowercased hostname.
func NormalizeURL(raw string) (string, string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", "", &InvalidInputError{Kind: KindURL, Input: raw, Reason: "empty input"}
	}

	switch lower := strings.ToLower(target); {
	case strings.HasPrefix(lower, "https://"):
		target = "https://" + target[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		target = "http://" + target[len("http://"):]
	default:
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", "", &InvalidInputError{Kind: KindURL, Input: raw, Reason: err.Error()}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", "", &InvalidInputError{Kind: KindURL, Input: raw, Reason: "missing hostname"}
	}
	return target, host, nil
}

type networkInfo struct {
	IP       string
	Location models.Location
	Server   models.ServerInfo
}

type whoisInfo struct {
	Age       string
	Registrar string
	Expiry    string
}

// Scan never fails once the input is valid: every lookup settles to either
// its result or its fallback.
func (s *URLScanner) Scan(ctx context.Context, raw string) (*models.URLReport, error) {
	target, host, err := NormalizeURL(raw)
	if err != nil {
		return nil, err
	}

	log := logger.GetFromContext(ctx, s.deps.Logger)
	start := time.Now()
	log.Debug("url scan started", slog.String("target", target))

	var (
		network     networkInfo
		whois       whoisInfo
		ssl         models.SSLInfo
		verdict     heuristics.Verdict
		screenshot  models.Screenshot
		performance *models.Performance
		dnsSummary  models.DNSSummary
	)

	settleAll(ctx, log, target,
		lookup[networkInfo]{
			name:     "ip",
			run:      func(ctx context.Context) (networkInfo, error) { return s.lookupNetwork(ctx, log, host) },
			fallback: unresolvedNetwork(),
			out:      &network,
		},
		lookup[whoisInfo]{
			name:     "whois",
			run:      func(ctx context.Context) (whoisInfo, error) { return s.lookupWHOIS(ctx, host) },
			fallback: whoisInfo{Age: models.NotAvailable, Registrar: models.NotAvailable, Expiry: models.NotAvailable},
			out:      &whois,
		},
		lookup[models.SSLInfo]{
			name:     "ssl",
			run:      func(ctx context.Context) (models.SSLInfo, error) { return s.lookupSSL(ctx, log, target, host) },
			fallback: models.SSLInfo{Valid: false, Issuer: models.NotAvailable, Expires: models.NotAvailable},
			out:      &ssl,
		},
		lookup[heuristics.Verdict]{
			name:     "safety",
			run:      func(context.Context) (heuristics.Verdict, error) { return heuristics.ClassifyURL(target), nil },
			fallback: heuristics.Verdict{Safety: models.SafetyUnknown, Reputation: models.ReputationUnknown},
			out:      &verdict,
		},
		lookup[models.Screenshot]{
			name: "screenshot",
			run: func(context.Context) (models.Screenshot, error) {
				return tools.Screenshot(s.deps.ScreenshotBase, target), nil
			},
			fallback: models.Screenshot{},
			out:      &screenshot,
		},
		lookup[*models.Performance]{
			name:     "performance",
			run:      func(ctx context.Context) (*models.Performance, error) { return s.deps.PageSpeed.Run(ctx, target) },
			fallback: nil,
			out:      &performance,
		},
		lookup[models.DNSSummary]{
			name:     "dns",
			run:      func(ctx context.Context) (models.DNSSummary, error) { return s.lookupDNS(ctx, log, host), nil },
			fallback: models.DNSSummary{},
			out:      &dnsSummary,
		},
	)

	report := &models.URLReport{
		URL:         target,
		Domain:      host,
		Safety:      verdict.Safety,
		Reputation:  verdict.Reputation,
		IPAddress:   network.IP,
		DomainAge:   whois.Age,
		Registrar:   whois.Registrar,
		ExpiryDate:  whois.Expiry,
		SSL:         ssl,
		Location:    network.Location,
		Server:      network.Server,
		Redirects:   models.Redirects{},
		Screenshot:  screenshot,
		Performance: performance,
		DNS:         dnsSummary,
		Timestamp:   s.deps.Now().UTC(),
	}

	log.Info("url scan completed",
		slog.String("target", target),
		slog.String("safety", report.Safety),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

func unresolvedNetwork() networkInfo {
	return networkInfo{
		IP:       models.UnableToResolve,
		Location: unknownLocation(),
		Server:   unknownServer(),
	}
}

func unknownLocation() models.Location {
	return models.Location{Country: models.Unknown, City: models.Unknown, Region: models.Unknown}
}

func unknownServer() models.ServerInfo {
	return models.ServerInfo{ISP: models.Unknown, Host: models.Unknown, Type: models.Unknown}
}

// lookupNetwork resolves host and geolocates the address. A geo failure
// keeps the resolved IP.
func (s *URLScanner) lookupNetwork(ctx context.Context, log *slog.Logger, host string) (networkInfo, error) {
	ip, err := tools.FirstA(ctx, s.deps.Resolver, host)
	if err != nil {
		return networkInfo{}, fmt.Errorf("resolve %s: %w", host, err)
	}

	info, err := s.deps.Geo.Lookup(ctx, ip, host)
	if err != nil {
		log.Warn("geo lookup failed",
			slog.String("lookup", "geo"),
			slog.String("target", host),
			slog.String("ip", ip),
			slog.String("error", err.Error()))
		return networkInfo{IP: ip, Location: unknownLocation(), Server: unknownServer()}, nil
	}

	return networkInfo{IP: ip, Location: info.Location, Server: info.Server}, nil
}

func (s *URLScanner) lookupWHOIS(ctx context.Context, host string) (whoisInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.WHOISTimeout)
	defer cancel()

	rec, err := s.deps.WHOIS.Lookup(ctx, host)
	if err != nil {
		return whoisInfo{}, err
	}

	info := whoisInfo{
		Age:       models.NotAvailable,
		Registrar: rec.Registrar,
		Expiry:    models.NotAvailable,
	}
	if info.Registrar == "" {
		info.Registrar = models.UnknownRegistrar
	}
	if !rec.Created.IsZero() {
		info.Age = DomainAge(rec.Created, s.deps.Now())
	}
	if !rec.Expires.IsZero() {
		info.Expiry = rec.Expires.Format(expiryLayout)
	}
	return info, nil
}

// DomainAge renders the time since created as "<Y> years <M> months" using
// 365-day years and 30-day months of the remainder.
func DomainAge(created, now time.Time) string {
	const day = 24 * time.Hour
	diff := now.Sub(created)
	if diff < 0 {
		diff = 0
	}
	days := int(diff / day)
	years := days / 365
	months := (days % 365) / 30
	return fmt.Sprintf("%d years %d months", years, months)
}

func (s *URLScanner) lookupSSL(ctx context.Context, log *slog.Logger, target, host string) (models.SSLInfo, error) {
	u, err := url.Parse(target)
	if err != nil {
		return models.SSLInfo{}, err
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return models.SSLInfo{Valid: false, Issuer: models.NotAvailable, Expires: models.NotAvailable}, nil
	}

	schemeOnly := models.SSLInfo{Valid: true, Issuer: models.UnknownIssuer, Expires: models.NotAvailable}
	if s.deps.Certs == nil {
		return schemeOnly, nil
	}

	cert, err := s.deps.Certs.Inspect(ctx, host)
	if err != nil {
		log.Warn("certificate inspection failed",
			slog.String("lookup", "ssl"),
			slog.String("target", host),
			slog.String("error", err.Error()))
		return schemeOnly, nil
	}

	info := models.SSLInfo{
		Valid:   cert.IsTrusted && cert.Status != tools.CertExpired,
		Issuer:  cert.Issuer,
		Expires: cert.ExpiresAt.Format(expiryLayout),
	}
	if info.Issuer == "" {
		info.Issuer = models.UnknownIssuer
	}
	return info, nil
}

// lookupDNS counts the answers to A, MX and TXT questions. Each count
// settles on its own.
func (s *URLScanner) lookupDNS(ctx context.Context, log *slog.Logger, host string) models.DNSSummary {
	count := func(qtype uint16) func(context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			answers, err := s.deps.Resolver.Query(ctx, host, qtype)
			if err != nil {
				return 0, err
			}
			return len(answers), nil
		}
	}

	var a, mx, txt int
	settleAll(ctx, log, host,
		lookup[int]{name: "dns_a", run: count(dns.TypeA), out: &a},
		lookup[int]{name: "dns_mx", run: count(dns.TypeMX), out: &mx},
		lookup[int]{name: "dns_txt", run: count(dns.TypeTXT), out: &txt},
	)

	return models.DNSSummary{
		ARecords:   a,
		MXRecords:  mx,
		TXTRecords: txt,
		HasEmail:   mx > 0,
	}
}
