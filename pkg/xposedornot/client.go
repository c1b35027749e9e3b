// Package xposedornot wraps the XposedOrNot breach lookup API.
package xposedornot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.xposedornot.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Breach is one breach record for an email address.
type Breach struct {
	Name        string `json:"breach"`
	Domain      string `json:"domain"`
	BreachDate  string `json:"breachdate"`
	ExposedData string `json:"xposed_data"`
}

// checkEmailResponse is the body of GET /v1/check-email/{email}.
type checkEmailResponse struct {
	BreachesDetails []Breach `json:"breaches_details"`
}

// Client defines the breach lookup operation.
type Client interface {
	CheckEmail(ctx context.Context, email string) ([]Breach, error)
}

// APIError is returned on a non-2xx response. The API answers 404 for
// addresses with no recorded breach; callers treat that as empty.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xposedornot: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new breach index client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckEmail returns the breaches recorded for the address.
func (c *httpClient) CheckEmail(ctx context.Context, email string) ([]Breach, error) {
	u := fmt.Sprintf("%s/v1/check-email/%s", c.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "xposedornot: create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "xposedornot: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "xposedornot: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out checkEmailResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "xposedornot: decode response")
	}
	return out.BreachesDetails, nil
}
