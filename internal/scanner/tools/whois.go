package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WHOISRecord is the registration data the scanners care about. Zero times
// mean the field was absent.
type WHOISRecord struct {
	Registrar string
	Created   time.Time
	Expires   time.Time
}

type WHOISProvider interface {
	Lookup(ctx context.Context, domain string) (WHOISRecord, error)
}

// WHOISJSONClient queries the whoisjson.com HTTP API.
type WHOISJSONClient struct {
	BaseURL string
	Client  *http.Client
}

func NewWHOISJSONClient(baseURL string, client *http.Client) *WHOISJSONClient {
	return &WHOISJSONClient{BaseURL: baseURL, Client: client}
}

type whoisJSONResponse struct {
	CreatedDate string          `json:"created_date"`
	Created     string          `json:"created"`
	ExpiryDate  string          `json:"expiry_date"`
	Expires     string          `json:"expires"`
	Registrar   json.RawMessage `json:"registrar"`
}

func (c *WHOISJSONClient) Lookup(ctx context.Context, domain string) (WHOISRecord, error) {
	var body whoisJSONResponse
	endpoint := c.BaseURL + "?domain=" + url.QueryEscape(domain)
	if _, err := getJSON(ctx, c.Client, "whoisjson", endpoint, nil, &body); err != nil {
		return WHOISRecord{}, err
	}

	rec := WHOISRecord{Registrar: registrarName(body.Registrar)}
	if t, err := parseDate(orDefault(body.CreatedDate, body.Created)); err == nil {
		rec.Created = t
	}
	if t, err := parseDate(orDefault(body.ExpiryDate, body.Expires)); err == nil {
		rec.Expires = t
	}
	return rec, nil
}

// registrarName accepts either a plain string or an object with a name.
func registrarName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// NativeWHOIS talks to registry WHOIS servers directly.
type NativeWHOIS struct {
	Timeout time.Duration
}

func NewNativeWHOIS(timeout time.Duration) *NativeWHOIS {
	return &NativeWHOIS{Timeout: timeout}
}

func (n *NativeWHOIS) Lookup(ctx context.Context, domain string) (WHOISRecord, error) {
	domain = normalizeDomain(domain)

	type result struct {
		rec WHOISRecord
		err error
	}
	done := make(chan result, 1)

	go func() {
		client := whois.NewClient().SetTimeout(n.Timeout)
		raw, err := client.Whois(domain)
		if err != nil {
			done <- result{err: fmt.Errorf("WHOIS fetch failed: %w", err)}
			return
		}

		parsed, err := whoisparser.Parse(raw)
		if err != nil {
			done <- result{err: fmt.Errorf("WHOIS parse failed: %w", err)}
			return
		}

		var rec WHOISRecord
		if parsed.Registrar != nil {
			rec.Registrar = parsed.Registrar.Name
		}
		if parsed.Domain != nil {
			if t, err := parseDate(parsed.Domain.CreatedDate); err == nil {
				rec.Created = t
			}
			if t, err := parseDate(parsed.Domain.ExpirationDate); err == nil {
				rec.Expires = t
			}
		}
		done <- result{rec: rec}
	}()

	timer := time.NewTimer(n.Timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return WHOISRecord{}, fmt.Errorf("WHOIS query cancelled: %w", ctx.Err())
	case res := <-done:
		return res.rec, res.err
	case <-timer.C:
		return WHOISRecord{}, fmt.Errorf("WHOIS query timeout after %s", n.Timeout)
	}
}

// parseDate attempts to parse various date formats commonly found in WHOIS data
func parseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// normalizeDomain strips scheme, port and trailing dot from domain.
func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	if idx := strings.IndexAny(domain, ":/"); idx != -1 {
		domain = domain[:idx]
	}
	return strings.TrimSuffix(domain, ".")
}
