package tools

import (
	"context"
	"net/http"
	"net/url"
)

// FraudScore is the IPQualityScore verdict for an address.
type FraudScore struct {
	Score       int
	RecentAbuse bool
}

// IPQSClient queries the IPQualityScore email reputation API.
type IPQSClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewIPQSClient(baseURL, apiKey string, client *http.Client) *IPQSClient {
	return &IPQSClient{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

type ipqsResponse struct {
	FraudScore  int  `json:"fraud_score"`
	RecentAbuse bool `json:"recent_abuse"`
}

func (c *IPQSClient) Score(ctx context.Context, email string) (FraudScore, error) {
	endpoint := c.BaseURL + "/" + url.PathEscape(c.APIKey) + "/" + url.PathEscape(email)

	var body ipqsResponse
	if _, err := getJSON(ctx, c.Client, "ipqs", endpoint, nil, &body); err != nil {
		return FraudScore{}, err
	}
	return FraudScore{Score: body.FraudScore, RecentAbuse: body.RecentAbuse}, nil
}
