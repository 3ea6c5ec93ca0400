package scanner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/miekg/dns"

	"phishguard/internal/heuristics"
	"phishguard/internal/logger"
	"phishguard/internal/scanner/tools"
	"phishguard/pkg/models"
)

const maxMXServers = 3

type breachProvider interface {
	Lookup(ctx context.Context, email string) (models.Breaches, error)
}

type emailValidator interface {
	Validate(ctx context.Context, email string) (tools.ValidationResult, error)
}

type reputationProvider interface {
	Lookup(ctx context.Context, domain string) (models.DomainInfo, error)
}

type fraudScorer interface {
	Score(ctx context.Context, email string) (tools.FraudScore, error)
}

type disposableChecker interface {
	IsDisposable(ctx context.Context, domain string) (bool, error)
}

// EmailDeps are the collaborators of an EmailScanner. Breaches and
// MXResolver are required. The other providers are optional and their
// static fallbacks apply when they are nil.
type EmailDeps struct {
	Breaches   breachProvider
	MXResolver tools.Resolver
	Validator  emailValidator
	Reputation reputationProvider
	Fraud      fraudScorer
	Disposable disposableChecker
	Logger     *slog.Logger
	Now        func() time.Time
}

// EmailScanner builds an EmailReport from independent upstream lookups.
type EmailScanner struct {
	deps EmailDeps
}

func NewEmailScanner(deps EmailDeps) *EmailScanner {
	if deps.Logger == nil {
		deps.Logger = logger.Get()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &EmailScanner{deps: deps}
}

// NormalizeEmail trims and lowercases raw and splits off its domain.
func NormalizeEmail(raw string) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !heuristics.ValidEmailFormat(email) {
		return "", "", &InvalidInputError{Kind: KindEmail, Input: raw, Reason: "address does not match local@domain.tld"}
	}
	_, domain, _ := strings.Cut(email, "@")
	return email, domain, nil
}

type validationInfo struct {
	IsValid     bool
	Format      string
	SMTP        string
	FreeService bool
}

func (s *EmailScanner) Scan(ctx context.Context, raw string) (*models.EmailReport, error) {
	email, domain, err := NormalizeEmail(raw)
	if err != nil {
		return nil, err
	}

	log := logger.GetFromContext(ctx, s.deps.Logger)
	start := time.Now()
	log.Debug("email scan started", slog.String("target", email))

	var (
		breaches   models.Breaches
		validation validationInfo
		domainInfo models.DomainInfo
		mx         models.MXInfo
		spam       models.SpamInfo
		disposable bool
	)

	settleAll(ctx, log, email,
		lookup[models.Breaches]{
			name:     "breach",
			run:      func(ctx context.Context) (models.Breaches, error) { return s.deps.Breaches.Lookup(ctx, email) },
			fallback: tools.NoBreaches(),
			out:      &breaches,
		},
		lookup[validationInfo]{
			name:     "validation",
			run:      func(ctx context.Context) (validationInfo, error) { return s.validate(ctx, log, email, domain), nil },
			fallback: validationInfo{IsValid: false, Format: "Invalid", SMTP: models.Unknown},
			out:      &validation,
		},
		lookup[models.DomainInfo]{
			name:     "reputation",
			run:      func(ctx context.Context) (models.DomainInfo, error) { return s.reputation(ctx, log, domain), nil },
			fallback: unknownDomainInfo(),
			out:      &domainInfo,
		},
		lookup[models.MXInfo]{
			name:     "mx",
			run:      func(ctx context.Context) (models.MXInfo, error) { return s.lookupMX(ctx, domain) },
			fallback: models.MXInfo{Exists: false, Servers: []string{}, Valid: false},
			out:      &mx,
		},
		lookup[models.SpamInfo]{
			name:     "spam",
			run:      func(ctx context.Context) (models.SpamInfo, error) { return s.spam(ctx, log, email), nil },
			fallback: models.SpamInfo{Score: 0, Risk: models.SpamLow, Blacklisted: false},
			out:      &spam,
		},
		lookup[bool]{
			name:     "disposable",
			run:      func(ctx context.Context) (bool, error) { return s.disposable(ctx, log, domain), nil },
			fallback: false,
			out:      &disposable,
		},
	)

	if breaches.Sources == nil {
		breaches.Sources = []string{}
	}

	report := &models.EmailReport{
		Email:  email,
		Domain: domain,
		Validation: models.EmailValidation{
			IsValid:     validation.IsValid,
			Format:      validation.Format,
			SMTP:        validation.SMTP,
			Disposable:  disposable,
			FreeService: validation.FreeService,
		},
		Breaches:   breaches,
		DomainInfo: domainInfo,
		MX:         mx,
		Spam:       spam,
		Timestamp:  s.deps.Now().UTC(),
	}
	report.SafetyScore, report.Safety = heuristics.EmailSafety(*report)

	log.Info("email scan completed",
		slog.String("target", email),
		slog.String("safety", report.Safety),
		slog.Int("safety_score", report.SafetyScore),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

func unknownDomainInfo() models.DomainInfo {
	return models.DomainInfo{
		Reputation: models.Unknown,
		Age:        models.Unknown,
		Registrar:  models.Unknown,
		Country:    models.Unknown,
	}
}

func (s *EmailScanner) validate(ctx context.Context, log *slog.Logger, email, domain string) validationInfo {
	info := validationInfo{
		IsValid:     true,
		Format:      "Valid",
		SMTP:        models.Unknown,
		FreeService: heuristics.IsFreeProvider(domain),
	}
	if s.deps.Validator == nil {
		return info
	}

	res, err := s.deps.Validator.Validate(ctx, email)
	if err != nil {
		log.Warn("email validation api failed",
			slog.String("lookup", "validation"),
			slog.String("target", email),
			slog.String("error", err.Error()))
		return info
	}

	info.IsValid = res.Deliverable
	if res.SMTPValid {
		info.SMTP = "Valid"
	}
	info.FreeService = res.FreeEmail || info.FreeService
	return info
}

func (s *EmailScanner) reputation(ctx context.Context, log *slog.Logger, domain string) models.DomainInfo {
	if s.deps.Reputation != nil {
		info, err := s.deps.Reputation.Lookup(ctx, domain)
		if err == nil {
			return info
		}
		log.Warn("domain reputation api failed",
			slog.String("lookup", "reputation"),
			slog.String("target", domain),
			slog.String("error", err.Error()))
	}

	info := unknownDomainInfo()
	if heuristics.IsKnownGoodDomain(domain) {
		info.Reputation = tools.ReputationTrusted
	}
	return info
}

func (s *EmailScanner) lookupMX(ctx context.Context, domain string) (models.MXInfo, error) {
	answers, err := s.deps.MXResolver.Query(ctx, domain, dns.TypeMX)
	if err != nil {
		return models.MXInfo{}, err
	}

	hosts := tools.MXHosts(answers)
	exists := len(hosts) > 0
	if len(hosts) > maxMXServers {
		hosts = hosts[:maxMXServers]
	}
	return models.MXInfo{Exists: exists, Servers: hosts, Valid: exists}, nil
}

func (s *EmailScanner) spam(ctx context.Context, log *slog.Logger, email string) models.SpamInfo {
	info := models.SpamInfo{Score: heuristics.SpamScore(email)}

	if s.deps.Fraud != nil {
		fs, err := s.deps.Fraud.Score(ctx, email)
		if err != nil {
			log.Warn("fraud score api failed",
				slog.String("lookup", "spam"),
				slog.String("target", email),
				slog.String("error", err.Error()))
		} else {
			if fs.Score != 0 {
				info.Score = fs.Score
			}
			info.Blacklisted = fs.RecentAbuse
		}
	}

	info.Score = max(0, min(info.Score, 100))
	info.Risk = heuristics.SpamRisk(info.Score)
	return info
}

func (s *EmailScanner) disposable(ctx context.Context, log *slog.Logger, domain string) bool {
	static := heuristics.IsDisposableDomain(domain)
	if s.deps.Disposable == nil {
		return static
	}

	found, err := s.deps.Disposable.IsDisposable(ctx, domain)
	if err != nil {
		log.Warn("disposable check api failed",
			slog.String("lookup", "disposable"),
			slog.String("target", domain),
			slog.String("error", err.Error()))
		return static
	}
	return found || static
}
