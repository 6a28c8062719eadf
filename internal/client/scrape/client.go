// Package scrape turns a URL into markdown: fetch, extract the readable
// article, convert to markdown. It also exposes a raw DuckDuckGo HTML
// search used for review source-URL discovery.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/trailwise-ai/trailwise/internal/client/resilience"
)

const (
	// DefaultDuckDuckGoURL serves plain-HTML results without JavaScript.
	DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

	userAgent = "Mozilla/5.0 (compatible; TrailWiseBot/1.0)"

	maxBodyBytes = 4 << 20
)

// ClientConfig holds configuration for the scrape client.
type ClientConfig struct {
	DuckDuckGoURL string
	HTTPClient    *resilience.Client
	Logger        *slog.Logger
}

// Client fetches pages and renders them as markdown.
type Client struct {
	ddgURL     string
	httpClient *resilience.Client
	converter  *md.Converter
	logger     *slog.Logger
}

// NewClient creates a scrape client.
func NewClient(cfg ClientConfig) *Client {
	ddgURL := cfg.DuckDuckGoURL
	if ddgURL == "" {
		ddgURL = DefaultDuckDuckGoURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("scrape"))
	}
	return &Client{
		ddgURL:     ddgURL,
		httpClient: httpClient,
		converter:  md.NewConverter("", true, nil),
		logger:     cfg.Logger,
	}
}

// Markdown fetches the page and returns its readable content as markdown.
func (c *Client) Markdown(ctx context.Context, pageURL string) (string, error) {
	html, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		// Fall back to converting the whole document when extraction fails.
		return c.converter.ConvertString(html)
	}

	markdown, err := c.converter.ConvertString(article.Content)
	if err != nil {
		return "", fmt.Errorf("converting article to markdown: %w", err)
	}
	if title := strings.TrimSpace(article.Title); title != "" {
		markdown = "# " + title + "\n\n" + markdown
	}
	return markdown, nil
}

// SearchLinks runs a DuckDuckGo HTML search and returns result hrefs in
// page order, decoded from the redirect wrapper.
func (c *Client) SearchLinks(ctx context.Context, query string) ([]string, error) {
	searchURL := c.ddgURL + "?q=" + url.QueryEscape(query)
	html, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	var links []string
	doc.Find("a.result__a, a.result__url").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		links = append(links, decodeResultHref(href))
	})
	return links, nil
}

// decodeResultHref unwraps DuckDuckGo's /l/?uddg=<encoded> redirect links.
func decodeResultHref(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return href
}

func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page %s returned %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pageURL, err)
	}
	return string(body), nil
}
