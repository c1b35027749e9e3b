// Package profilecheck probes public profile pages on social platforms
// and decides whether an account exists. Several platforms serve a 200
// page for missing users, so each platform pairs the status code with a
// negative marker in the page body.
package profilecheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Supported platform names.
const (
	PlatformGitHub    = "GitHub"
	PlatformInstagram = "Instagram"
	PlatformTwitter   = "Twitter/X"
	PlatformFacebook  = "Facebook"
	PlatformLinkedIn  = "LinkedIn"
)

// Client probes one profile URL and reports whether it exists. A nil
// result with an error means the probe itself failed and nothing can be
// concluded.
type Client interface {
	Check(ctx context.Context, platform, profileURL string) (bool, error)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	http *http.Client
}

// NewClient creates a new profile prober.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		http: &http.Client{
			Timeout: 8 * time.Second,
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

// Check fetches the profile page and applies the platform's existence
// rule. Redirects are followed; missing-profile pages often redirect to
// a login or error page first.
func (c *httpClient) Check(ctx context.Context, platform, profileURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false, eris.Wrapf(err, "profilecheck: create request for %s", platform)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, eris.Wrapf(err, "profilecheck: fetch %s profile", platform)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, eris.Wrapf(err, "profilecheck: read %s profile", platform)
	}

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	return exists(platform, string(body)), nil
}

// exists applies the per-platform negative markers to a 200 response.
func exists(platform, body string) bool {
	lower := strings.ToLower(body)
	switch platform {
	case PlatformInstagram:
		return !strings.Contains(body, `"HttpErrorPage"`) && !strings.Contains(lower, "page isn")
	case PlatformTwitter:
		return !strings.Contains(body, "This account doesn") && !strings.Contains(lower, "hmm...this page")
	case PlatformGitHub:
		head := body
		if len(head) > 500 {
			head = head[:500]
		}
		return !strings.Contains(head, "Not Found")
	case PlatformFacebook:
		return !strings.Contains(lower, "page_not_found")
	case PlatformLinkedIn:
		return !strings.Contains(lower, "page-not-found")
	default:
		return true
	}
}

// ProfileURL builds the canonical public profile URL for a username.
func ProfileURL(platform, username string) string {
	switch platform {
	case PlatformGitHub:
		return fmt.Sprintf("https://github.com/%s", username)
	case PlatformInstagram:
		return fmt.Sprintf("https://www.instagram.com/%s/", username)
	case PlatformTwitter:
		return fmt.Sprintf("https://x.com/%s", username)
	case PlatformFacebook:
		return fmt.Sprintf("https://www.facebook.com/%s", username)
	case PlatformLinkedIn:
		return fmt.Sprintf("https://www.linkedin.com/in/%s", username)
	default:
		return ""
	}
}
