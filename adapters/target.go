package adapters

import (
	"fmt"
	"time"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// TargetAdapter handles extraction for target.com, which tags its cart
// markup with data-test attributes
type TargetAdapter struct {
	*BaseAdapter
}

var targetRowSelectors = []string{
	"[data-test='cartItem']",
	"[data-test*='cart-item']",
	".cart-item",
}

var targetTitleSelectors = []string{
	"[data-test='cartItem-title']",
	"[data-test*='product-title']",
	"a[href*='/p/']",
	"h3",
}

var targetPriceSelectors = []string{
	"[data-test='cartItem-price']",
	"[data-test*='current-price']",
	"[data-test*='price']",
}

var targetQuantitySelectors = []string{
	"select[data-test='cartItem-qty']",
	"[data-test*='qty'] select",
	"[data-test*='quantity']",
}

// NewTargetAdapter creates a new Target adapter
func NewTargetAdapter(config *types.Config, logger types.Logger) *TargetAdapter {
	return &TargetAdapter{
		BaseAdapter: NewBaseAdapter("target", "Target", []string{"target.com"}, config, logger),
	}
}

// Extract reads all cart rows
func (t *TargetAdapter) Extract(doc *goquery.Document) ([]types.CartItem, error) {
	startTime := time.Now()

	rows := t.findItems(doc, targetRowSelectors)
	items := t.collectItems(rows, t.readRow)

	t.logger.Debugf("Target extraction found %d items in %v", len(items), time.Since(startTime))
	return items, nil
}

func (t *TargetAdapter) readRow(i int, row *goquery.Selection) (types.CartItem, error) {
	name, selector := firstText(row, targetTitleSelectors)
	if name == "" {
		return types.CartItem{}, fmt.Errorf("no title element")
	}
	t.logger.Debugf("Target: row %d title from %s", i, selector)

	price, _ := firstText(row, targetPriceSelectors)

	return types.CartItem{
		Name:     name,
		Price:    price,
		Quantity: t.quantity(row),
	}, nil
}

func (t *TargetAdapter) quantity(row *goquery.Selection) int {
	for _, selector := range targetQuantitySelectors {
		el := row.Find(selector).First()
		if el.Length() > 0 {
			return ExtractQuantityFromInput(el)
		}
	}
	return 1
}
