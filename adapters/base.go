package adapters

import (
	"fmt"
	"strings"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides common functionality for site strategies.
// Concrete strategies embed it and supply only Extract; identity,
// hostname matching, validation and per-item fault isolation live here.
type BaseAdapter struct {
	siteID      string
	displayName string
	urlPatterns []string

	config    *types.Config
	logger    types.Logger
	validator *Validator
}

// NewBaseAdapter creates a new base adapter for one site
func NewBaseAdapter(siteID, displayName string, urlPatterns []string, config *types.Config, logger types.Logger) *BaseAdapter {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &BaseAdapter{
		siteID:      siteID,
		displayName: displayName,
		urlPatterns: urlPatterns,
		config:      config,
		logger:      logger,
		validator:   NewValidator(config.ExtraNoiseWords),
	}
}

// SiteID returns the unique key of the strategy
func (b *BaseAdapter) SiteID() string {
	return b.siteID
}

// DisplayName returns the name used in logs
func (b *BaseAdapter) DisplayName() string {
	return b.displayName
}

// URLPatterns returns the hostname substrings this strategy claims
func (b *BaseAdapter) URLPatterns() []string {
	return b.urlPatterns
}

// CanHandle reports whether any URL pattern is a case-insensitive substring
// of hostname
func (b *BaseAdapter) CanHandle(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return false
	}
	for _, pattern := range b.urlPatterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p != "" && strings.Contains(host, p) {
			return true
		}
	}
	return false
}

// ParseHTML parses HTML content into a goquery document
func ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// IsValidItem checks an item against the shared validity rules
func (b *BaseAdapter) IsValidItem(item types.CartItem) bool {
	return b.validator.IsValidItem(item)
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// findItems tries the primary selector and then each fallback in order.
// It returns nil when none of them matches anything.
func (b *BaseAdapter) findItems(doc *goquery.Document, selectors []string) *goquery.Selection {
	for i, selector := range selectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if i == 0 {
			b.logger.Debugf("%s: found %d cart rows with primary selector %s", b.displayName, found.Length(), selector)
		} else {
			b.logger.Infof("%s: primary selector empty, found %d cart rows with fallback %s", b.displayName, found.Length(), selector)
		}
		return found
	}

	b.logger.Warnf("%s: no cart rows matched any of %d selectors, treating cart as empty", b.displayName, len(selectors))
	return nil
}

// itemBuilder turns one cart row into an item
type itemBuilder func(i int, row *goquery.Selection) (types.CartItem, error)

// collectItems runs build over every row. A row that errors or panics is
// logged and skipped without aborting the rest. Invalid names are dropped
// and the result is deduplicated.
func (b *BaseAdapter) collectItems(rows *goquery.Selection, build itemBuilder) []types.CartItem {
	items := []types.CartItem{}
	if rows == nil {
		return items
	}

	rows.Each(func(i int, row *goquery.Selection) {
		item, err := b.buildItem(i, row, build)
		if err != nil {
			b.logger.Warnf("%s: skipping cart row %d: %v", b.displayName, i, err)
			return
		}
		if !b.IsValidItem(item) {
			b.logger.Debugf("%s: dropping cart row %d with name %q", b.displayName, i, item.Name)
			return
		}
		items = append(items, item)
	})

	return DeduplicateItems(items)
}

func (b *BaseAdapter) buildItem(i int, row *goquery.Selection, build itemBuilder) (item types.CartItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading row: %v", r)
		}
	}()
	return build(i, row)
}
