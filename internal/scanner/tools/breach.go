package tools

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"phishguard/pkg/models"
)

const maxBreachSources = 5

// BreachClient queries the Have I Been Pwned v3 API.
type BreachClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewBreachClient(baseURL, apiKey string, client *http.Client) *BreachClient {
	return &BreachClient{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

type breachRecord struct {
	Name       string `json:"Name"`
	BreachDate string `json:"BreachDate"`
}

// NoBreaches is the value reported when an address has no known breaches.
func NoBreaches() models.Breaches {
	return models.Breaches{Sources: []string{}}
}

// Lookup returns the breaches email appears in. A 404 means none; any other
// non-200 status is also reported as none.
func (c *BreachClient) Lookup(ctx context.Context, email string) (models.Breaches, error) {
	endpoint := c.BaseURL + "/breachedaccount/" + url.PathEscape(email) + "?truncateResponse=false"

	var headers map[string]string
	if c.APIKey != "" {
		headers = map[string]string{"hibp-api-key": c.APIKey}
	}

	var records []breachRecord
	_, err := getJSON(ctx, c.Client, "hibp", endpoint, headers, &records)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return NoBreaches(), nil
		}
		return models.Breaches{}, err
	}

	if len(records) == 0 {
		return NoBreaches(), nil
	}

	sources := make([]string, 0, min(len(records), maxBreachSources))
	for _, r := range records[:min(len(records), maxBreachSources)] {
		sources = append(sources, r.Name)
	}

	out := models.Breaches{
		Found:   true,
		Count:   len(records),
		Sources: sources,
	}
	if d := records[0].BreachDate; d != "" {
		out.LastBreach = &d
	}
	return out, nil
}
