package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"cart-extractor/adapters"
	"cart-extractor/internal/types"
)

// CartExtractor loads a cart page from a page source and runs the registry
// over it
type CartExtractor struct {
	registry *Registry
	source   types.PageSource
	logger   types.Logger
}

// NewCartExtractor creates a new cart extractor. source may be nil when
// only ExtractHTML is used.
func NewCartExtractor(registry *Registry, source types.PageSource, logger types.Logger) *CartExtractor {
	return &CartExtractor{
		registry: registry,
		source:   source,
		logger:   logger,
	}
}

// Extract fetches pageURL and extracts its cart. hostname overrides the
// host taken from pageURL when non-empty.
func (c *CartExtractor) Extract(ctx context.Context, pageURL, hostname string) (*types.ExtractionResult, error) {
	if c.source == nil {
		return nil, fmt.Errorf("no page source configured")
	}

	if hostname == "" {
		host, err := HostnameFromURL(pageURL)
		if err != nil {
			return nil, err
		}
		hostname = host
	}

	c.logger.Infof("Fetching cart page %s", pageURL)
	html, err := c.source.GetPageContent(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	result, err := c.ExtractHTML(hostname, html)
	if err != nil {
		return nil, err
	}
	result.URL = pageURL
	return result, nil
}

// ExtractHTML extracts the cart from already loaded HTML
func (c *CartExtractor) ExtractHTML(hostname, html string) (*types.ExtractionResult, error) {
	startTime := time.Now()

	doc, err := adapters.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items, strategy := c.registry.extract(hostname, doc)

	result := &types.ExtractionResult{
		Hostname:   hostname,
		Items:      items,
		DurationMs: time.Since(startTime).Milliseconds(),
	}
	if strategy != nil {
		result.SiteID = strategy.SiteID()
		result.Strategy = strategy.DisplayName()
	}
	return result, nil
}

// ExtractToJSON extracts the cart at pageURL and saves the result to a JSON file
func (c *CartExtractor) ExtractToJSON(ctx context.Context, pageURL, hostname, filename string) error {
	result, err := c.Extract(ctx, pageURL, hostname)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write result to file: %w", err)
	}

	c.logger.Infof("Result saved to %s", filename)
	return nil
}

// HostnameFromURL returns the lowercased host of rawURL. A bare hostname
// without a scheme is accepted.
func HostnameFromURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no hostname in URL %q", rawURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
