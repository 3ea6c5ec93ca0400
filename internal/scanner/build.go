package scanner

import (
	"log/slog"

	"phishguard/internal/config"
	"phishguard/internal/scanner/tools"
)

// New wires both aggregators from the scan configuration. Keyed providers
// are only attached when their key is set.
func New(cfg config.ScanConfig, log *slog.Logger) (*URLScanner, *EmailScanner) {
	client := tools.NewHTTPClient(cfg.HTTPTimeout)
	ep := cfg.Endpoints

	var resolver, mxResolver tools.Resolver
	switch cfg.Resolver {
	case config.ResolverDNS:
		r := tools.NewDNSResolver(cfg.DNSServer, cfg.HTTPTimeout)
		resolver, mxResolver = r, r
	default:
		resolver = tools.NewDoHResolver(ep.DoH, client)
		mxResolver = tools.NewDoHResolver(ep.MXDoH, client)
	}

	var whois tools.WHOISProvider
	switch cfg.WHOISProvider {
	case config.WHOISProviderNative:
		whois = tools.NewNativeWHOIS(cfg.WHOISTimeout)
	default:
		whois = tools.NewWHOISJSONClient(ep.WHOISJSON, client)
	}

	urlDeps := URLDeps{
		Resolver: resolver,
		Geo: tools.GeoChain{
			tools.NewIPAPIClient(ep.GeoPrimary, client),
			tools.NewIPAPIComClient(ep.GeoFallback, client),
		},
		WHOIS:          whois,
		WHOISTimeout:   cfg.WHOISTimeout,
		PageSpeed:      tools.NewPageSpeedClient(ep.PageSpeed, cfg.Keys.PageSpeed, client),
		ScreenshotBase: ep.Screenshot,
		Logger:         log,
	}
	if cfg.InspectTLS {
		urlDeps.Certs = tools.NewCertInspector(cfg.HTTPTimeout)
	}

	emailDeps := EmailDeps{
		Breaches:   tools.NewBreachClient(ep.HIBP, cfg.Keys.HIBP, client),
		MXResolver: mxResolver,
		Logger:     log,
	}
	if cfg.Keys.AbstractAPI != "" {
		emailDeps.Validator = tools.NewAbstractAPIClient(ep.AbstractAPI, cfg.Keys.AbstractAPI, client)
	}
	if cfg.Keys.WhoisXML != "" {
		emailDeps.Reputation = tools.NewWhoisXMLClient(ep.WhoisXML, cfg.Keys.WhoisXML, client)
	}
	if cfg.Keys.IPQS != "" {
		emailDeps.Fraud = tools.NewIPQSClient(ep.IPQS, cfg.Keys.IPQS, client)
	}
	if cfg.Debounce {
		emailDeps.Disposable = tools.NewDebounceClient(ep.Debounce, client)
	}

	return NewURLScanner(urlDeps), NewEmailScanner(emailDeps)
}
