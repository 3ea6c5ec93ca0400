package tools

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"phishguard/pkg/models"
)

// Reputation values reported for an email domain.
const (
	ReputationTrusted    = "Trusted"
	ReputationActive     = "Active"
	ReputationSuspicious = "Suspicious"
)

// WhoisXMLClient queries the WhoisXML API for email domain reputation.
type WhoisXMLClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

func NewWhoisXMLClient(baseURL, apiKey string, client *http.Client) *WhoisXMLClient {
	return &WhoisXMLClient{BaseURL: baseURL, APIKey: apiKey, Client: client, Now: time.Now}
}

type whoisXMLResponse struct {
	WhoisRecord struct {
		DomainAvailability string `json:"domainAvailability"`
		CreatedDate        string `json:"createdDate"`
		RegistrarName      string `json:"registrarName"`
		Registrant         struct {
			Country string `json:"country"`
		} `json:"registrant"`
	} `json:"WhoisRecord"`
}

func (c *WhoisXMLClient) Lookup(ctx context.Context, domain string) (models.DomainInfo, error) {
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("domainName", domain)
	q.Set("outputFormat", "JSON")

	var body whoisXMLResponse
	if _, err := getJSON(ctx, c.Client, "whoisxml", c.BaseURL+"?"+q.Encode(), nil, &body); err != nil {
		return models.DomainInfo{}, err
	}

	rec := body.WhoisRecord
	info := models.DomainInfo{
		Reputation: ReputationActive,
		Age:        models.Unknown,
		Registrar:  orDefault(rec.RegistrarName, models.Unknown),
		Country:    orDefault(rec.Registrant.Country, models.Unknown),
	}
	if rec.DomainAvailability == "AVAILABLE" {
		info.Reputation = ReputationSuspicious
	}
	if created, err := parseDate(rec.CreatedDate); err == nil {
		info.Age = RegistrationAge(created, c.Now())
	}
	return info, nil
}

// RegistrationAge renders the age of a registration in whole years, or in
// 30-day months when it is younger than a year.
func RegistrationAge(created, now time.Time) string {
	elapsed := now.Sub(created)
	years := int(math.Floor(elapsed.Hours() / (365.25 * 24)))
	if years > 0 {
		return plural(years, "year")
	}
	months := int(math.Floor(elapsed.Hours() / (30 * 24)))
	return plural(months, "month")
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
