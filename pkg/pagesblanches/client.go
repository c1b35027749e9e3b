// Package pagesblanches queries the French white pages directory and
// scrapes listing blocks from the result page.
package pagesblanches

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
)

const defaultBaseURL = "https://www.pagesjaunes.fr"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBlocks bounds how many listing blocks are read from one page.
const maxBlocks = 5

// Entry is one directory listing.
type Entry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Client defines the directory lookup operation.
type Client interface {
	Search(ctx context.Context, name, city string) ([]Entry, error)
}

// APIError is returned on a non-2xx response.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pagesblanches: HTTP %d", e.StatusCode)
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

// NewClient creates a new directory client.
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

// Search looks the person up by name, optionally narrowed by city, and
// returns at most five listings.
func (c *httpClient) Search(ctx context.Context, name, city string) ([]Entry, error) {
	query := name
	if city != "" {
		query += " " + city
	}
	u := fmt.Sprintf("%s/pagesblanches/recherche?quoiqui=%s&ou=", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagesblanches: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pagesblanches: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "pagesblanches: parse page")
	}
	return parseEntries(doc), nil
}

// parseEntries extracts listing blocks from the result page.
func parseEntries(doc *html.Node) []Entry {
	blocks := findAll(doc, isListingBlock)
	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}

	var entries []Entry
	for _, block := range blocks {
		nameNode := findFirst(block, hasAnyClass("bi-denomination", "denomination"))
		if nameNode == nil {
			// A bare denomination node can itself be the block.
			if hasClass(block, "bi-denomination") {
				nameNode = block
			} else {
				continue
			}
		}

		entry := Entry{Name: text(nameNode)}
		if addr := findFirst(block, hasAnyClass("bi-address", "address")); addr != nil {
			entry.Address = text(addr)
		}
		if phone := findFirst(block, hasAnyClass("bi-phone", "phone")); phone != nil {
			entry.Phone = text(phone)
		}
		entries = append(entries, entry)
	}
	return entries
}

func isListingBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return hasClass(n, "bi-content") || hasClass(n, "bi-denomination")
}

func hasAnyClass(classes ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range classes {
			if hasClass(n, c) {
				return true
			}
		}
		return false
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, tok := range strings.Fields(attr(n, "class")) {
		if tok == class {
			return true
		}
	}
	return false
}

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
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

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
