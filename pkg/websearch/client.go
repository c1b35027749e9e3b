// Package websearch scrapes public search engine result pages. There is
// no API key; requests look like a regular French-locale browser and are
// rate limited to stay polite.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.google.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Client defines the search operation.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// APIError is returned when the search page responds with a non-2xx
// status (usually a captcha interstitial).
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("websearch: HTTP %d", e.StatusCode)
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

// WithRateLimit bounds outgoing request frequency.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new search client.
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
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one result page and extracts up to limit organic hits.
func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "websearch: rate limit wait")
	}

	u := fmt.Sprintf("%s/search?q=%s&num=%d&hl=fr", c.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "websearch: parse page")
	}

	results := parseResults(doc)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// parseResults walks the document and extracts organic result blocks.
// Selector set matches what the result page currently serves to the
// desktop user agent above.
func parseResults(doc *html.Node) []Result {
	var results []Result
	for _, block := range findAll(doc, isResultBlock) {
		link := findFirst(block, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" && attr(n, "href") != ""
		})
		title := findFirst(block, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "h3"
		})
		if link == nil || title == nil {
			continue
		}

		href := cleanHref(attr(link, "href"))
		if !strings.HasPrefix(href, "http") {
			continue
		}

		snippet := ""
		if sn := findFirst(block, isSnippetNode); sn != nil {
			snippet = text(sn)
		}
		results = append(results, Result{
			Title:   text(title),
			URL:     href,
			Snippet: snippet,
		})
	}
	return results
}

func isResultBlock(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "div" {
		return false
	}
	return hasClass(n, "g") || hasAttr(n, "data-sokoban-container")
}

func isSnippetNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "div":
		return hasAttr(n, "data-sncf") || hasClass(n, "VwiC3b")
	case "span":
		return hasClass(n, "st")
	}
	return false
}

// cleanHref unwraps /url?q= redirect links.
func cleanHref(href string) string {
	if strings.HasPrefix(href, "/url?q=") {
		href = strings.SplitN(strings.TrimPrefix(href, "/url?q="), "&", 2)[0]
		if unescaped, err := url.QueryUnescape(href); err == nil {
			href = unescaped
		}
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, tok := range strings.Fields(attr(n, "class")) {
		if tok == class {
			return true
		}
	}
	return false
}

// findAll collects matching nodes without descending into a match, so
// nested result containers do not produce duplicates.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if match(node) {
			out = append(out, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// text concatenates and trims all text content under a node.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
