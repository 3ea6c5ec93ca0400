package tools

import (
	"context"
	"net/http"
	"net/url"
)

// DebounceClient queries the keyless debounce.io disposable-domain check.
type DebounceClient struct {
	BaseURL string
	Client  *http.Client
}

func NewDebounceClient(baseURL string, client *http.Client) *DebounceClient {
	return &DebounceClient{BaseURL: baseURL, Client: client}
}

type debounceResponse struct {
	Disposable string `json:"disposable"`
}

// IsDisposable reports whether the service flags domain as a throwaway
// mail provider.
func (c *DebounceClient) IsDisposable(ctx context.Context, domain string) (bool, error) {
	var body debounceResponse
	endpoint := c.BaseURL + "?email=" + url.QueryEscape(domain)
	if _, err := getJSON(ctx, c.Client, "debounce", endpoint, nil, &body); err != nil {
		return false, err
	}
	return body.Disposable == "true", nil
}
