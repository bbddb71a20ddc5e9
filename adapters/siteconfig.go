package adapters

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSiteConfig is returned when a site configuration cannot be used
var ErrInvalidSiteConfig = errors.New("invalid site config")

//go:embed sites.yaml
var defaultSitesYAML string

// SiteConfig describes a site whose cart can be read with selectors alone.
// The func fields are optional Go hooks that replace the matching selector;
// they cannot be set from YAML.
type SiteConfig struct {
	SiteID           string   `yaml:"site_id"`
	DisplayName      string   `yaml:"display_name"`
	URLPatterns      []string `yaml:"url_patterns"`
	ItemSelector     string   `yaml:"item_selector"`
	NameSelector     string   `yaml:"name_selector"`
	BrandSelector    string   `yaml:"brand_selector,omitempty"`
	PriceSelector    string   `yaml:"price_selector,omitempty"`
	QuantitySelector string   `yaml:"quantity_selector,omitempty"`
	// CombineBrandName defaults to true when unset
	CombineBrandName *bool `yaml:"combine_brand_name,omitempty"`

	NameFunc     func(row *goquery.Selection) string `yaml:"-"`
	PriceFunc    func(row *goquery.Selection) string `yaml:"-"`
	QuantityFunc func(row *goquery.Selection) int    `yaml:"-"`
}

type siteConfigFile struct {
	Sites []SiteConfig `yaml:"sites"`
}

// ShouldCombineBrandName reports whether brand and name are joined
func (c *SiteConfig) ShouldCombineBrandName() bool {
	return c.CombineBrandName == nil || *c.CombineBrandName
}

// Validate checks required fields and that every selector compiles
func (c *SiteConfig) Validate() error {
	if strings.TrimSpace(c.SiteID) == "" {
		return fmt.Errorf("%w: site_id is required", ErrInvalidSiteConfig)
	}
	if len(c.URLPatterns) == 0 {
		return fmt.Errorf("%w: %s: url_patterns is required", ErrInvalidSiteConfig, c.SiteID)
	}
	if strings.TrimSpace(c.ItemSelector) == "" {
		return fmt.Errorf("%w: %s: item_selector is required", ErrInvalidSiteConfig, c.SiteID)
	}
	if c.NameSelector == "" && c.NameFunc == nil {
		return fmt.Errorf("%w: %s: name_selector is required", ErrInvalidSiteConfig, c.SiteID)
	}

	selectors := map[string]string{
		"item_selector":     c.ItemSelector,
		"name_selector":     c.NameSelector,
		"brand_selector":    c.BrandSelector,
		"price_selector":    c.PriceSelector,
		"quantity_selector": c.QuantitySelector,
	}
	for field, selector := range selectors {
		if selector == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(selector); err != nil {
			return fmt.Errorf("%w: %s: %s %q: %v", ErrInvalidSiteConfig, c.SiteID, field, selector, err)
		}
	}
	return nil
}

// LoadSiteConfigs decodes and validates a YAML list of site configs
func LoadSiteConfigs(r io.Reader) ([]SiteConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file siteConfigFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode site configs: %w", err)
	}

	seen := make(map[string]bool, len(file.Sites))
	for i := range file.Sites {
		if err := file.Sites[i].Validate(); err != nil {
			return nil, err
		}
		id := file.Sites[i].SiteID
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate site_id %s", ErrInvalidSiteConfig, id)
		}
		seen[id] = true
	}

	return file.Sites, nil
}

// LoadSiteConfigFile reads site configs from a YAML file on disk
func LoadSiteConfigFile(path string) ([]SiteConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open site config file: %w", err)
	}
	defer f.Close()

	configs, err := LoadSiteConfigs(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configs, nil
}

// DefaultSiteConfigs returns the site configs shipped with the binary
func DefaultSiteConfigs() ([]SiteConfig, error) {
	return LoadSiteConfigs(strings.NewReader(defaultSitesYAML))
}
