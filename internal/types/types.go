package types

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CartItem represents a single normalized line of a shopping cart
type CartItem struct {
	Name     string `json:"name"`
	Price    string `json:"price,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// ExtractionResult represents the outcome of one cart extraction
type ExtractionResult struct {
	URL        string     `json:"url,omitempty"`
	Hostname   string     `json:"hostname"`
	SiteID     string     `json:"site_id"`
	Strategy   string     `json:"strategy"`
	Items      []CartItem `json:"items"`
	DurationMs int64      `json:"duration_ms"`
}

// Config holds the configuration for the extractor
type Config struct {
	RequestDelay       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string

	// PollAttempts and PollInterval bound how long the browser source
	// waits for ReadySelector before capturing the page.
	PollAttempts  int
	PollInterval  time.Duration
	ReadySelector string

	MaxGenericItems int
	SitesFile       string
	ExtraNoiseWords []string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       1 * time.Second,
		MaxRetries:         3,
		Timeout:            30 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PollAttempts:       5,
		PollInterval:       200 * time.Millisecond,
		ReadySelector:      "body",
		MaxGenericItems:    20,
	}
}

// SiteStrategy defines the interface for site-specific cart extraction logic
type SiteStrategy interface {
	// SiteID returns the unique, stable key of the strategy
	SiteID() string

	// DisplayName returns a human readable name used in logs
	DisplayName() string

	// URLPatterns returns hostname substrings the strategy claims
	URLPatterns() []string

	// CanHandle reports whether the strategy should be selected for hostname
	CanHandle(hostname string) bool

	// Extract reads cart items from the document. An empty cart yields an
	// empty slice and a nil error.
	Extract(doc *goquery.Document) ([]CartItem, error)
}

// PageSource loads the HTML of a cart page
type PageSource interface {
	GetPageContent(ctx context.Context, url string) (string, error)
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
