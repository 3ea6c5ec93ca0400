package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"phishguard/internal/heuristics"
	"phishguard/pkg/models"
)

// GeoInfo is the geolocation and hosting data for one IP address.
type GeoInfo struct {
	Location models.Location
	Server   models.ServerInfo
}

// GeoProvider looks up where an IP address is hosted. host is the name the
// IP was resolved from and is used when the provider has no better label.
type GeoProvider interface {
	Lookup(ctx context.Context, ip, host string) (GeoInfo, error)
}

// IPAPIClient queries ipapi.co.
type IPAPIClient struct {
	BaseURL string
	Client  *http.Client
}

func NewIPAPIClient(baseURL string, client *http.Client) *IPAPIClient {
	return &IPAPIClient{BaseURL: baseURL, Client: client}
}

type ipapiResponse struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Org         string `json:"org"`
	ASN         string `json:"asn"`
}

func (c *IPAPIClient) Lookup(ctx context.Context, ip, host string) (GeoInfo, error) {
	var body ipapiResponse
	endpoint := fmt.Sprintf("%s/%s/json/", c.BaseURL, url.PathEscape(ip))
	if _, err := getJSON(ctx, c.Client, "ipapi.co", endpoint, nil, &body); err != nil {
		return GeoInfo{}, err
	}
	if body.Error {
		return GeoInfo{}, fmt.Errorf("ipapi.co: %s", body.Reason)
	}

	return GeoInfo{
		Location: models.Location{
			Country: orDefault(body.CountryName, models.Unknown),
			City:    orDefault(body.City, models.Unknown),
			Region:  orDefault(body.Region, models.Unknown),
		},
		Server: models.ServerInfo{
			ISP:  orDefault(body.Org, "Unknown ISP"),
			Host: orDefault(body.ASN, host),
			Type: heuristics.ServerType(body.Org, body.Org),
		},
	}, nil
}

// IPAPIComClient queries ip-api.com.
type IPAPIComClient struct {
	BaseURL string
	Client  *http.Client
}

func NewIPAPIComClient(baseURL string, client *http.Client) *IPAPIComClient {
	return &IPAPIComClient{BaseURL: baseURL, Client: client}
}

type ipapiComResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	City       string `json:"city"`
	RegionName string `json:"regionName"`
	ISP        string `json:"isp"`
	Org        string `json:"org"`
	AS         string `json:"as"`
}

func (c *IPAPIComClient) Lookup(ctx context.Context, ip, host string) (GeoInfo, error) {
	var body ipapiComResponse
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,country,city,regionName,isp,org,as", c.BaseURL, url.PathEscape(ip))
	if _, err := getJSON(ctx, c.Client, "ip-api.com", endpoint, nil, &body); err != nil {
		return GeoInfo{}, err
	}
	if body.Status != "success" {
		return GeoInfo{}, fmt.Errorf("ip-api.com: status %q: %s", body.Status, body.Message)
	}

	return GeoInfo{
		Location: models.Location{
			Country: orDefault(body.Country, models.Unknown),
			City:    orDefault(body.City, models.Unknown),
			Region:  orDefault(body.RegionName, models.Unknown),
		},
		Server: models.ServerInfo{
			ISP:  orDefault(body.ISP, orDefault(body.Org, "Unknown ISP")),
			Host: orDefault(body.AS, host),
			Type: heuristics.ServerType(body.ISP, body.Org),
		},
	}, nil
}

// GeoChain tries each provider in order and returns the first success.
type GeoChain []GeoProvider

func (c GeoChain) Lookup(ctx context.Context, ip, host string) (GeoInfo, error) {
	var errs []error
	for _, p := range c {
		info, err := p.Lookup(ctx, ip, host)
		if err == nil {
			return info, nil
		}
		errs = append(errs, err)
	}
	return GeoInfo{}, fmt.Errorf("all geo providers failed: %w", errors.Join(errs...))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
