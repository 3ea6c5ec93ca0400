package tools

import (
	"context"
	"math"
	"net/http"
	"net/url"

	"phishguard/pkg/models"
)

// PageSpeedClient queries the PageSpeed Insights v5 API with the mobile
// strategy.
type PageSpeedClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewPageSpeedClient(baseURL, apiKey string, client *http.Client) *PageSpeedClient {
	return &PageSpeedClient{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

type lighthouseAudit struct {
	DisplayValue string `json:"displayValue"`
}

type pageSpeedResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]lighthouseAudit `json:"audits"`
	} `json:"lighthouseResult"`
}

func (c *PageSpeedClient) Run(ctx context.Context, target string) (*models.Performance, error) {
	q := url.Values{}
	q.Set("url", target)
	q.Set("strategy", "mobile")
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}

	var body pageSpeedResponse
	if _, err := getJSON(ctx, c.Client, "pagespeed", c.BaseURL+"?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}

	lr := body.LighthouseResult
	score := 0.0
	if lr.Categories.Performance.Score != nil {
		score = *lr.Categories.Performance.Score
	}

	return &models.Performance{
		Score:  int(math.Round(score * 100)),
		FCP:    auditValue(lr.Audits, "first-contentful-paint"),
		LCP:    auditValue(lr.Audits, "largest-contentful-paint"),
		TBT:    auditValue(lr.Audits, "total-blocking-time"),
		Rating: performanceRating(score),
	}, nil
}

func auditValue(audits map[string]lighthouseAudit, name string) string {
	return orDefault(audits[name].DisplayValue, models.NotAvailable)
}

func performanceRating(score float64) string {
	switch {
	case score >= 0.9:
		return models.RatingGood
	case score >= 0.5:
		return models.RatingNeedsImprovement
	default:
		return models.RatingPoor
	}
}
