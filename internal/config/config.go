package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"phishguard/internal/logger"
)

const envPrefix = "PHISHGUARD_"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `json:"app"`
	Log       LogConfig       `json:"log"`
	Cache     CacheConfig     `json:"cache"`
	Scan      ScanConfig      `json:"scan"`
	Store     StoreConfig     `json:"store"`
	Mail      MailConfig      `json:"mail"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name           string   `json:"name"`
	Host           string   `json:"host"`
	Port           string   `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// Address returns the full host:port address for the server
func (a *AppConfig) Address() string {
	return a.Host + a.Port
}

// BaseURL returns the base URL for the server
func (a *AppConfig) BaseURL() string {
	return "http://" + a.Host + a.Port
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// CacheMode represents the cache implementation mode
type CacheMode string

const (
	CacheModeNone CacheMode = "none"
	CacheModeMem  CacheMode = "mem"
)

// CacheConfig controls the scan result cache.
type CacheConfig struct {
	Mode CacheMode     `json:"mode"`
	TTL  time.Duration `json:"ttl"`
}

type WHOISProvider string

const (
	WHOISProviderJSON   WHOISProvider = "whoisjson"
	WHOISProviderNative WHOISProvider = "native"
)

type ResolverMode string

const (
	ResolverDoH ResolverMode = "doh"
	ResolverDNS ResolverMode = "dns"
)

// Endpoints are the base URLs of every upstream service. Tests point them at
// local servers.
type Endpoints struct {
	DoH         string `json:"doh"`
	MXDoH       string `json:"mx_doh"`
	GeoPrimary  string `json:"geo_primary"`
	GeoFallback string `json:"geo_fallback"`
	WHOISJSON   string `json:"whoisjson"`
	PageSpeed   string `json:"pagespeed"`
	Screenshot  string `json:"screenshot"`
	HIBP        string `json:"hibp"`
	AbstractAPI string `json:"abstractapi"`
	WhoisXML    string `json:"whoisxml"`
	IPQS        string `json:"ipqs"`
	Debounce    string `json:"debounce"`
}

// APIKeys enable the optional keyed providers. An empty key disables the
// provider.
type APIKeys struct {
	HIBP        string `json:"-"`
	PageSpeed   string `json:"-"`
	AbstractAPI string `json:"-"`
	WhoisXML    string `json:"-"`
	IPQS        string `json:"-"`
}

type ScanConfig struct {
	HTTPTimeout   time.Duration `json:"http_timeout"`
	WHOISTimeout  time.Duration `json:"whois_timeout"`
	WHOISProvider WHOISProvider `json:"whois_provider"`
	Resolver      ResolverMode  `json:"resolver"`
	DNSServer     string        `json:"dns_server"`
	InspectTLS    bool          `json:"inspect_tls"`
	Debounce      bool          `json:"debounce"`
	Endpoints     Endpoints     `json:"endpoints"`
	Keys          APIKeys       `json:"-"`
}

type StoreMode string

const (
	StoreModeMem      StoreMode = "mem"
	StoreModePostgres StoreMode = "postgres"
)

type StoreConfig struct {
	Mode        StoreMode `json:"mode"`
	DatabaseURL string    `json:"-"`
}

type MailMode string

const (
	MailModeLog      MailMode = "log"
	MailModeSendGrid MailMode = "sendgrid"
)

type MailConfig struct {
	Mode        MailMode `json:"mode"`
	SendGridKey string   `json:"-"`
	FromName    string   `json:"from_name"`
	FromAddress string   `json:"from_address"`
}

type AuthConfig struct {
	OTPTTL     time.Duration `json:"otp_ttl"`
	ExposeOTP  bool          `json:"expose_otp"`
	BcryptCost int           `json:"bcrypt_cost"`
}

type RateLimitConfig struct {
	Enabled bool    `json:"enabled"`
	RPS     float64 `json:"rps"`
	Burst   int     `json:"burst"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:           "phishguard",
			Host:           "0.0.0.0",
			Port:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Mode: CacheModeMem,
			TTL:  5 * time.Minute,
		},
		Scan: ScanConfig{
			HTTPTimeout:   30 * time.Second,
			WHOISTimeout:  10 * time.Second,
			WHOISProvider: WHOISProviderJSON,
			Resolver:      ResolverDoH,
			DNSServer:     "8.8.8.8:53",
			Debounce:      true,
			Endpoints: Endpoints{
				DoH:         "https://dns.google/resolve",
				MXDoH:       "https://cloudflare-dns.com/dns-query",
				GeoPrimary:  "https://ipapi.co",
				GeoFallback: "http://ip-api.com",
				WHOISJSON:   "https://whoisjson.com/api/v1/whois",
				PageSpeed:   "https://www.googleapis.com/pagespeedonline/v5/runPagespeed",
				Screenshot:  "https://image.thum.io/get/width/1200/crop/800/noanimate/",
				HIBP:        "https://haveibeenpwned.com/api/v3",
				AbstractAPI: "https://emailvalidation.abstractapi.com/v1/",
				WhoisXML:    "https://www.whoisxmlapi.com/whoisserver/WhoisService",
				IPQS:        "https://ipqualityscore.com/api/json/email",
				Debounce:    "https://disposable.debounce.io/",
			},
		},
		Store: StoreConfig{
			Mode: StoreModeMem,
		},
		Mail: MailConfig{
			Mode:        MailModeLog,
			FromName:    "PhishGuard",
			FromAddress: "no-reply@phishguard.local",
		},
		Auth: AuthConfig{
			OTPTTL:     10 * time.Minute,
			BcryptCost: bcrypt.DefaultCost,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
		},
	}
}

// Load builds the configuration from defaults, an optional .env file,
// PHISHGUARD_* environment variables and command line flags, in that order
// of increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.loadFromFlags(); err != nil {
		return nil, fmt.Errorf("failed to load from flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from PHISHGUARD_ENV_FILE
// (default .env). Variables already set are left alone; a missing file is
// not an error.
func loadDotEnv() error {
	path := os.Getenv(envPrefix + "ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type envReader struct {
	err error
}

func (r *envReader) string(name string, dst *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

func (r *envReader) duration(name string, dst *time.Duration) {
	v := os.Getenv(envPrefix + name)
	if v == "" || r.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = fmt.Errorf("invalid %s%s value '%s': %w", envPrefix, name, v, err)
		return
	}
	*dst = d
}

func (r *envReader) bool(name string, dst *bool) {
	v := os.Getenv(envPrefix + name)
	if v == "" || r.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = fmt.Errorf("invalid %s%s value '%s': %w", envPrefix, name, v, err)
		return
	}
	*dst = b
}

func (r *envReader) int(name string, dst *int) {
	v := os.Getenv(envPrefix + name)
	if v == "" || r.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("invalid %s%s value '%s': %w", envPrefix, name, v, err)
		return
	}
	*dst = n
}

func (r *envReader) float(name string, dst *float64) {
	v := os.Getenv(envPrefix + name)
	if v == "" || r.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = fmt.Errorf("invalid %s%s value '%s': %w", envPrefix, name, v, err)
		return
	}
	*dst = f
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() error {
	r := &envReader{}

	r.string("APP_NAME", &c.App.Name)
	r.string("HOST", &c.App.Host)
	if port := os.Getenv(envPrefix + "PORT"); port != "" {
		c.App.Port = normalizePort(port)
	}
	if origins := os.Getenv(envPrefix + "ALLOWED_ORIGINS"); origins != "" {
		c.App.AllowedOrigins = splitList(origins)
	}

	r.string("LOG_LEVEL", &c.Log.Level)
	r.string("LOG_FORMAT", &c.Log.Format)

	if mode := os.Getenv(envPrefix + "CACHE_MODE"); mode != "" {
		c.Cache.Mode = CacheMode(mode)
	}
	r.duration("CACHE_TTL", &c.Cache.TTL)

	r.duration("HTTP_TIMEOUT", &c.Scan.HTTPTimeout)
	r.duration("WHOIS_TIMEOUT", &c.Scan.WHOISTimeout)
	if p := os.Getenv(envPrefix + "WHOIS_PROVIDER"); p != "" {
		c.Scan.WHOISProvider = WHOISProvider(p)
	}
	if m := os.Getenv(envPrefix + "RESOLVER"); m != "" {
		c.Scan.Resolver = ResolverMode(m)
	}
	r.string("DNS_SERVER", &c.Scan.DNSServer)
	r.bool("INSPECT_TLS", &c.Scan.InspectTLS)
	r.bool("DEBOUNCE_ENABLED", &c.Scan.Debounce)

	e := &c.Scan.Endpoints
	r.string("DOH_URL", &e.DoH)
	r.string("MX_DOH_URL", &e.MXDoH)
	r.string("GEO_PRIMARY_URL", &e.GeoPrimary)
	r.string("GEO_FALLBACK_URL", &e.GeoFallback)
	r.string("WHOISJSON_URL", &e.WHOISJSON)
	r.string("PAGESPEED_URL", &e.PageSpeed)
	r.string("SCREENSHOT_URL", &e.Screenshot)
	r.string("HIBP_URL", &e.HIBP)
	r.string("ABSTRACTAPI_URL", &e.AbstractAPI)
	r.string("WHOISXML_URL", &e.WhoisXML)
	r.string("IPQS_URL", &e.IPQS)
	r.string("DEBOUNCE_URL", &e.Debounce)

	k := &c.Scan.Keys
	r.string("HIBP_API_KEY", &k.HIBP)
	r.string("PAGESPEED_API_KEY", &k.PageSpeed)
	r.string("ABSTRACTAPI_KEY", &k.AbstractAPI)
	r.string("WHOISXML_API_KEY", &k.WhoisXML)
	r.string("IPQS_API_KEY", &k.IPQS)

	if mode := os.Getenv(envPrefix + "STORE_MODE"); mode != "" {
		c.Store.Mode = StoreMode(mode)
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Store.DatabaseURL = dsn
	}
	r.string("DATABASE_URL", &c.Store.DatabaseURL)

	if mode := os.Getenv(envPrefix + "MAIL_MODE"); mode != "" {
		c.Mail.Mode = MailMode(mode)
	}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		c.Mail.SendGridKey = key
	}
	r.string("SENDGRID_API_KEY", &c.Mail.SendGridKey)
	r.string("MAIL_FROM_NAME", &c.Mail.FromName)
	r.string("MAIL_FROM_ADDRESS", &c.Mail.FromAddress)

	r.duration("OTP_TTL", &c.Auth.OTPTTL)
	r.bool("EXPOSE_OTP", &c.Auth.ExposeOTP)
	r.int("BCRYPT_COST", &c.Auth.BcryptCost)

	r.bool("RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	r.float("RATE_LIMIT_RPS", &c.RateLimit.RPS)
	r.int("RATE_LIMIT_BURST", &c.RateLimit.Burst)

	return r.err
}

// loadFromFlags loads configuration from command line flags
func (c *Config) loadFromFlags() error {
	// Only parse flags if they haven't been parsed yet and we're not in a test
	if flag.Parsed() || isTest() {
		return nil
	}

	var (
		appName       = flag.String("name", c.App.Name, "Application name")
		host          = flag.String("host", c.App.Host, "Server host address")
		port          = flag.String("port", c.App.Port, "Server port (with or without colon prefix)")
		logLevel      = flag.String("log-level", c.Log.Level, "Log level: debug, info, warn or error")
		logFormat     = flag.String("log-format", c.Log.Format, "Log format: text or json")
		cacheMode     = flag.String("cache-mode", string(c.Cache.Mode), "Cache mode: 'none' or 'mem'")
		cacheTTL      = flag.Duration("cache-ttl", c.Cache.TTL, "Cache TTL duration (e.g., 5m, 1h)")
		httpTimeout   = flag.Duration("http-timeout", c.Scan.HTTPTimeout, "Timeout for upstream HTTP calls")
		whoisProvider = flag.String("whois-provider", string(c.Scan.WHOISProvider), "WHOIS provider: 'whoisjson' or 'native'")
		resolver      = flag.String("resolver", string(c.Scan.Resolver), "DNS resolver: 'doh' or 'dns'")
		inspectTLS    = flag.Bool("inspect-tls", c.Scan.InspectTLS, "Read issuer and expiry from a real TLS handshake")
		storeMode     = flag.String("store", string(c.Store.Mode), "Persistence backend: 'mem' or 'postgres'")
		databaseURL   = flag.String("database-url", c.Store.DatabaseURL, "Postgres connection string")
		mailMode      = flag.String("mail", string(c.Mail.Mode), "Mail delivery: 'log' or 'sendgrid'")
	)

	flag.Parse()

	c.App.Name = *appName
	c.App.Host = *host
	c.App.Port = normalizePort(*port)
	c.Log.Level = *logLevel
	c.Log.Format = *logFormat
	c.Cache.Mode = CacheMode(*cacheMode)
	c.Cache.TTL = *cacheTTL
	c.Scan.HTTPTimeout = *httpTimeout
	c.Scan.WHOISProvider = WHOISProvider(*whoisProvider)
	c.Scan.Resolver = ResolverMode(*resolver)
	c.Scan.InspectTLS = *inspectTLS
	c.Store.Mode = StoreMode(*storeMode)
	c.Store.DatabaseURL = *databaseURL
	c.Mail.Mode = MailMode(*mailMode)

	return nil
}

// normalizePort ensures port starts with a colon.
func normalizePort(port string) string {
	if port == "" || port[0] == ':' {
		return port
	}
	return ":" + port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isTest checks if we're running in test mode
func isTest() bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name cannot be empty")
	}

	if c.App.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s': must be text or json", c.Log.Format)
	}

	switch c.Cache.Mode {
	case CacheModeNone, CacheModeMem:
	default:
		return fmt.Errorf("invalid cache mode '%s': must be 'none' or 'mem'", c.Cache.Mode)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}

	// If cache is disabled, TTL doesn't matter
	if c.Cache.Mode == CacheModeMem && c.Cache.TTL == 0 {
		return fmt.Errorf("cache TTL cannot be zero when cache is enabled")
	}

	if c.Scan.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	if c.Scan.WHOISTimeout <= 0 {
		return fmt.Errorf("whois timeout must be positive")
	}

	switch c.Scan.WHOISProvider {
	case WHOISProviderJSON, WHOISProviderNative:
	default:
		return fmt.Errorf("invalid whois provider '%s': must be 'whoisjson' or 'native'", c.Scan.WHOISProvider)
	}

	switch c.Scan.Resolver {
	case ResolverDoH:
	case ResolverDNS:
		if c.Scan.DNSServer == "" {
			return fmt.Errorf("dns server is required when resolver is 'dns'")
		}
	default:
		return fmt.Errorf("invalid resolver '%s': must be 'doh' or 'dns'", c.Scan.Resolver)
	}

	switch c.Store.Mode {
	case StoreModeMem:
	case StoreModePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("database URL is required when store is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid store mode '%s': must be 'mem' or 'postgres'", c.Store.Mode)
	}

	switch c.Mail.Mode {
	case MailModeLog:
	case MailModeSendGrid:
		if c.Mail.SendGridKey == "" {
			return fmt.Errorf("sendgrid API key is required when mail is 'sendgrid'")
		}
		if c.Mail.FromAddress == "" {
			return fmt.Errorf("mail from address cannot be empty")
		}
	default:
		return fmt.Errorf("invalid mail mode '%s': must be 'log' or 'sendgrid'", c.Mail.Mode)
	}

	if c.Auth.OTPTTL <= 0 {
		return fmt.Errorf("OTP TTL must be positive")
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	return nil
}

// String returns a string representation of the config for debugging.
// Secrets are never included.
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: {Name: %s, Port: %s}, Cache: {Mode: %v, TTL: %s}, Scan: {WHOIS: %s, Resolver: %s}, Store: %s, Mail: %s}",
		c.App.Name, c.App.Port, c.Cache.Mode, c.Cache.TTL,
		c.Scan.WHOISProvider, c.Scan.Resolver, c.Store.Mode, c.Mail.Mode)
}
