package adapters

import (
	"fmt"
	"strings"
	"time"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// DeclarativeAdapter extracts a cart using only the selectors of a SiteConfig
type DeclarativeAdapter struct {
	*BaseAdapter
	site SiteConfig
}

// NewDeclarativeAdapter creates a strategy from a validated site config
func NewDeclarativeAdapter(site SiteConfig, config *types.Config, logger types.Logger) (*DeclarativeAdapter, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	displayName := site.DisplayName
	if displayName == "" {
		displayName = site.SiteID
	}

	return &DeclarativeAdapter{
		BaseAdapter: NewBaseAdapter(site.SiteID, displayName, site.URLPatterns, config, logger),
		site:        site,
	}, nil
}

// Extract reads every row matching the item selector
func (d *DeclarativeAdapter) Extract(doc *goquery.Document) ([]types.CartItem, error) {
	startTime := time.Now()

	rows := d.findItems(doc, []string{d.site.ItemSelector})
	items := d.collectItems(rows, d.readRow)

	d.logger.Debugf("%s: declarative extraction found %d items in %v", d.displayName, len(items), time.Since(startTime))
	return items, nil
}

func (d *DeclarativeAdapter) readRow(i int, row *goquery.Selection) (types.CartItem, error) {
	name := d.resolveName(row)
	if name == "" {
		return types.CartItem{}, fmt.Errorf("no product name found")
	}

	return types.CartItem{
		Name:     name,
		Price:    d.resolvePrice(row),
		Quantity: d.resolveQuantity(row),
	}, nil
}

func (d *DeclarativeAdapter) resolveName(row *goquery.Selection) string {
	if d.site.NameFunc != nil {
		return normalizeSpace(d.site.NameFunc(row))
	}

	name := textOf(row, d.site.NameSelector)
	brand := textOf(row, d.site.BrandSelector)

	switch {
	case name != "" && brand != "" && d.site.ShouldCombineBrandName():
		return strings.TrimSpace(brand + " " + name)
	case name != "":
		return name
	default:
		return brand
	}
}

func (d *DeclarativeAdapter) resolvePrice(row *goquery.Selection) string {
	if d.site.PriceFunc != nil {
		return normalizeSpace(d.site.PriceFunc(row))
	}
	return textOf(row, d.site.PriceSelector)
}

// resolveQuantity returns 0 when the row has no quantity source at all
func (d *DeclarativeAdapter) resolveQuantity(row *goquery.Selection) int {
	if d.site.QuantityFunc != nil {
		if qty := d.site.QuantityFunc(row); qty > 0 {
			return qty
		}
		return 0
	}
	if d.site.QuantitySelector == "" {
		return 0
	}

	el := row.Find(d.site.QuantitySelector).First()
	if el.Length() == 0 {
		return 0
	}
	return ExtractQuantityFromInput(el)
}

// textOf is ExtractText that treats an empty selector as "no source"
func textOf(row *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return ExtractText(row, selector)
}
