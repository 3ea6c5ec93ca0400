package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Answer is one resource record in the shape DNS-over-HTTPS JSON returns it.
type Answer struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

// Resolver answers single-type DNS questions. A name that exists but has no
// records of the requested type yields an empty slice and no error.
type Resolver interface {
	Query(ctx context.Context, name string, qtype uint16) ([]Answer, error)
}

// DoHResolver queries a JSON DNS-over-HTTPS endpoint such as
// https://dns.google/resolve or https://cloudflare-dns.com/dns-query.
type DoHResolver struct {
	BaseURL string
	Client  *http.Client
}

func NewDoHResolver(baseURL string, client *http.Client) *DoHResolver {
	return &DoHResolver{BaseURL: baseURL, Client: client}
}

type dohResponse struct {
	Status int      `json:"Status"`
	Answer []Answer `json:"Answer"`
}

func (d *DoHResolver) Query(ctx context.Context, name string, qtype uint16) ([]Answer, error) {
	typeName, ok := dns.TypeToString[qtype]
	if !ok {
		return nil, fmt.Errorf("unsupported record type %d", qtype)
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("type", typeName)

	var body dohResponse
	headers := map[string]string{"Accept": "application/dns-json"}
	if _, err := getJSON(ctx, d.Client, "doh", d.BaseURL+"?"+q.Encode(), headers, &body); err != nil {
		return nil, err
	}

	if body.Answer == nil {
		return []Answer{}, nil
	}
	return body.Answer, nil
}

// DNSResolver sends plain DNS queries to a single upstream server.
type DNSResolver struct {
	Server string
	client *dns.Client
}

func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	return &DNSResolver{
		Server: server,
		client: &dns.Client{Timeout: timeout},
	}
}

func (r *DNSResolver) Query(ctx context.Context, name string, qtype uint16) ([]Answer, error) {
	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.Server)
	if err != nil {
		return nil, fmt.Errorf("dns query failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response received")
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("dns query failed: %s", dns.RcodeToString[resp.Rcode])
	}

	answers := make([]Answer, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		hdr := rr.Header()
		answers = append(answers, Answer{
			Name: hdr.Name,
			Type: hdr.Rrtype,
			TTL:  hdr.Ttl,
			Data: rrData(rr),
		})
	}
	return answers, nil
}

// rrData renders the record data the way DoH JSON responses do.
func rrData(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, v.Mx)
	case *dns.TXT:
		return strings.Join(v.Txt, "")
	case *dns.CNAME:
		return v.Target
	default:
		return strings.TrimPrefix(rr.String(), rr.Header().String())
	}
}

// FirstA returns the first A record for host.
func FirstA(ctx context.Context, r Resolver, host string) (string, error) {
	answers, err := r.Query(ctx, host, dns.TypeA)
	if err != nil {
		return "", err
	}
	for _, a := range answers {
		if a.Type == dns.TypeA && a.Data != "" {
			return a.Data, nil
		}
	}
	return "", fmt.Errorf("no A record for %s", host)
}

// MXHosts returns the exchange host of every MX record in answers.
func MXHosts(answers []Answer) []string {
	hosts := []string{}
	for _, a := range answers {
		if a.Type != dns.TypeMX {
			continue
		}
		host := "Unknown"
		if fields := strings.Fields(a.Data); len(fields) >= 2 {
			host = fields[1]
		}
		hosts = append(hosts, host)
	}
	return hosts
}
