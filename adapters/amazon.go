package adapters

import (
	"fmt"
	"strings"
	"time"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// AmazonAdapter handles extraction for Amazon carts. Cart rows carry their
// identity and state in data-* attributes (data-asin, data-price,
// data-quantity).
type AmazonAdapter struct {
	*BaseAdapter
}

var amazonRowSelectors = []string{
	"[data-name='Active Items'] [data-asin]",
	".sc-list-item[data-asin]",
	"[data-itemtype='active']",
}

var amazonTitleSelectors = []string{
	".sc-product-title .a-truncate-full",
	".sc-product-title",
	".sc-item-product-title-cont",
	"[data-feature-id*='title']",
}

var amazonPriceSelectors = []string{
	".sc-product-price",
	".sc-item-price-block .a-offscreen",
	".sc-price",
}

var amazonQuantitySelectors = []string{
	".sc-quantity-textfield input",
	"select[name='quantity']",
	".sc-action-quantity .a-dropdown-prompt",
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(config *types.Config, logger types.Logger) *AmazonAdapter {
	return &AmazonAdapter{
		BaseAdapter: NewBaseAdapter("amazon", "Amazon", []string{"amazon."}, config, logger),
	}
}

// Extract reads the active (not saved-for-later) cart rows
func (a *AmazonAdapter) Extract(doc *goquery.Document) ([]types.CartItem, error) {
	startTime := time.Now()

	rows := a.findItems(doc, amazonRowSelectors)
	if rows != nil {
		rows = rows.FilterFunction(func(_ int, s *goquery.Selection) bool {
			removed, _ := s.Attr("data-removed")
			return removed != "true"
		})
	}

	items := a.collectItems(rows, a.readRow)
	a.logger.Debugf("Amazon extraction found %d items in %v", len(items), time.Since(startTime))
	return items, nil
}

func (a *AmazonAdapter) readRow(i int, row *goquery.Selection) (types.CartItem, error) {
	name, _ := firstText(row, amazonTitleSelectors)
	if name == "" {
		if alt, ok := row.Find("img[alt]").First().Attr("alt"); ok {
			name = normalizeSpace(alt)
		}
	}
	if name == "" {
		asin, _ := row.Attr("data-asin")
		return types.CartItem{}, fmt.Errorf("no title for asin %q", asin)
	}

	return types.CartItem{
		Name:     name,
		Price:    a.price(row),
		Quantity: a.quantity(row),
	}, nil
}

func (a *AmazonAdapter) price(row *goquery.Selection) string {
	if price, _ := firstText(row, amazonPriceSelectors); price != "" {
		return price
	}
	if raw, ok := row.Attr("data-price"); ok && strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return ""
}

func (a *AmazonAdapter) quantity(row *goquery.Selection) int {
	if raw, ok := row.Attr("data-quantity"); ok {
		if qty, ok := parseQuantity(raw); ok {
			return qty
		}
	}
	for _, selector := range amazonQuantitySelectors {
		el := row.Find(selector).First()
		if el.Length() > 0 {
			a.logger.Debugf("Amazon: quantity read from %s", selector)
			return ExtractQuantityFromInput(el)
		}
	}
	return 1
}
