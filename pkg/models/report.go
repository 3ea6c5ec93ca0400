package models

import "time"

type URLReport struct {
	URL         string       `json:"url"`
	Domain      string       `json:"domain"`
	Safety      string       `json:"safety"`
	Reputation  string       `json:"reputation"`
	IPAddress   string       `json:"ipAddress"`
	DomainAge   string       `json:"domainAge"`
	Registrar   string       `json:"registrar"`
	ExpiryDate  string       `json:"expiryDate"`
	SSL         SSLInfo      `json:"ssl"`
	Location    Location     `json:"location"`
	Server      ServerInfo   `json:"server"`
	Redirects   Redirects    `json:"redirects"`
	Screenshot  Screenshot   `json:"screenshot"`
	Performance *Performance `json:"performance"`
	DNS         DNSSummary   `json:"dns"`
	Timestamp   time.Time    `json:"timestamp"`
}

type SSLInfo struct {
	Valid   bool   `json:"valid"`
	Issuer  string `json:"issuer"`
	Expires string `json:"expires"`
}

type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

type ServerInfo struct {
	ISP  string `json:"isp"`
	Host string `json:"host"`
	Type string `json:"type"`
}

// Redirects is never computed from a real redirect chain.
type Redirects struct {
	HasRedirects bool `json:"hasRedirects"`
	Count        int  `json:"count"`
}

type Screenshot struct {
	Available bool    `json:"available"`
	URL       *string `json:"url"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

type Performance struct {
	Score  int    `json:"score"`
	FCP    string `json:"fcp"`
	LCP    string `json:"lcp"`
	TBT    string `json:"tbt"`
	Rating string `json:"rating"`
}

type DNSSummary struct {
	ARecords   int  `json:"aRecords"`
	MXRecords  int  `json:"mxRecords"`
	TXTRecords int  `json:"txtRecords"`
	HasEmail   bool `json:"hasEmail"`
}

type EmailReport struct {
	Email       string          `json:"email"`
	Domain      string          `json:"domain"`
	Safety      string          `json:"safety"`
	SafetyScore int             `json:"safetyScore"`
	Validation  EmailValidation `json:"validation"`
	Breaches    Breaches        `json:"breaches"`
	DomainInfo  DomainInfo      `json:"domainInfo"`
	MX          MXInfo          `json:"mx"`
	Spam        SpamInfo        `json:"spam"`
	Timestamp   time.Time       `json:"timestamp"`
}

type EmailValidation struct {
	IsValid     bool   `json:"isValid"`
	Format      string `json:"format"`
	SMTP        string `json:"smtp"`
	Disposable  bool   `json:"disposable"`
	FreeService bool   `json:"freeService"`
}

type Breaches struct {
	Found      bool     `json:"found"`
	Count      int      `json:"count"`
	Sources    []string `json:"sources"`
	LastBreach *string  `json:"lastBreach"`
}

type DomainInfo struct {
	Reputation string `json:"reputation"`
	Age        string `json:"age"`
	Registrar  string `json:"registrar"`
	Country    string `json:"country"`
}

type MXInfo struct {
	Exists  bool     `json:"exists"`
	Servers []string `json:"servers"`
	Valid   bool     `json:"valid"`
}

type SpamInfo struct {
	Score       int    `json:"score"`
	Risk        string `json:"risk"`
	Blacklisted bool   `json:"blacklisted"`
}

// QuickScore is the result of the network-free URL heuristic.
type QuickScore struct {
	Score   int      `json:"score"`
	Label   string   `json:"label"`
	Reasons []string `json:"reasons"`
	Types   []string `json:"types,omitempty"`
	Harm    []string `json:"harm,omitempty"`
	// Screenshot is a preview link; it is not fetched.
	Screenshot string `json:"screenshot,omitempty"`
}
