package tools

import (
	"context"
	"net/http"
	"net/url"
)

// ValidationResult is the deliverability verdict of the validation API.
type ValidationResult struct {
	Deliverable bool
	SMTPValid   bool
	FreeEmail   bool
}

// AbstractAPIClient queries the AbstractAPI email validation service.
type AbstractAPIClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewAbstractAPIClient(baseURL, apiKey string, client *http.Client) *AbstractAPIClient {
	return &AbstractAPIClient{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

type abstractFlag struct {
	Value bool `json:"value"`
}

type abstractResponse struct {
	Deliverability string       `json:"deliverability"`
	IsSMTPValid    abstractFlag `json:"is_smtp_valid"`
	IsFreeEmail    abstractFlag `json:"is_free_email"`
}

func (c *AbstractAPIClient) Validate(ctx context.Context, email string) (ValidationResult, error) {
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("email", email)

	var body abstractResponse
	if _, err := getJSON(ctx, c.Client, "abstractapi", c.BaseURL+"?"+q.Encode(), nil, &body); err != nil {
		return ValidationResult{}, err
	}

	return ValidationResult{
		Deliverable: body.Deliverability == "DELIVERABLE",
		SMTPValid:   body.IsSMTPValid.Value,
		FreeEmail:   body.IsFreeEmail.Value,
	}, nil
}
