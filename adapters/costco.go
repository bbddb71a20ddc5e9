package adapters

import (
	"fmt"
	"time"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// CostcoAdapter handles extraction for costco.com. The cart is rendered by
// Angular and the quantity stepper has two shapes: the desktop layout is an
// input whose bound value sits in ng-reflect-model, the mobile layout shows
// the count as text in a span between the +/- buttons.
type CostcoAdapter struct {
	*BaseAdapter
}

var costcoRowSelectors = []string{
	"[automation-id='cartItem']",
	".order-item",
	"app-cart-item",
}

var costcoTitleSelectors = []string{
	"[automation-id='productName']",
	".item-title a",
	".description h3",
}

var costcoPriceSelectors = []string{
	"[automation-id='itemPrice']",
	".item-price .value",
	".price",
}

const (
	costcoDesktopStepper = "[automation-id='qtyStepperDesktop'] input"
	costcoMobileStepper  = "[automation-id='qtyStepperMobile'] .stepper-value"
	costcoPlainQuantity  = "input[name*='quantity']"
)

// NewCostcoAdapter creates a new Costco adapter
func NewCostcoAdapter(config *types.Config, logger types.Logger) *CostcoAdapter {
	return &CostcoAdapter{
		BaseAdapter: NewBaseAdapter("costco", "Costco", []string{"costco.com", "costco.ca"}, config, logger),
	}
}

// Extract reads all cart rows
func (c *CostcoAdapter) Extract(doc *goquery.Document) ([]types.CartItem, error) {
	startTime := time.Now()

	rows := c.findItems(doc, costcoRowSelectors)
	items := c.collectItems(rows, c.readRow)

	c.logger.Debugf("Costco extraction found %d items in %v", len(items), time.Since(startTime))
	return items, nil
}

func (c *CostcoAdapter) readRow(i int, row *goquery.Selection) (types.CartItem, error) {
	name, _ := firstText(row, costcoTitleSelectors)
	if name == "" {
		return types.CartItem{}, fmt.Errorf("no product name")
	}
	price, _ := firstText(row, costcoPriceSelectors)

	return types.CartItem{
		Name:     name,
		Price:    price,
		Quantity: c.quantity(row),
	}, nil
}

// quantity checks the desktop stepper, then the mobile stepper, then a
// plain quantity input, and only then defaults to 1
func (c *CostcoAdapter) quantity(row *goquery.Selection) int {
	if input := row.Find(costcoDesktopStepper).First(); input.Length() > 0 {
		if model, ok := input.Attr("ng-reflect-model"); ok {
			if qty, ok := parseQuantity(model); ok {
				return qty
			}
		}
		return ExtractQuantityFromInput(input)
	}

	if value := row.Find(costcoMobileStepper).First(); value.Length() > 0 {
		c.logger.Debugf("Costco: quantity read from mobile stepper")
		return ExtractQuantityFromInput(value)
	}

	if input := row.Find(costcoPlainQuantity).First(); input.Length() > 0 {
		return ExtractQuantityFromInput(input)
	}

	return 1
}
