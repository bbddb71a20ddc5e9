package adapters

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

const (
	// DefaultMaxGenericItems caps heuristic results
	DefaultMaxGenericItems = 20

	// maxCandidateTextLength skips whole-page containers in the price scan
	maxCandidateTextLength = 300
)

var (
	cartContainerMatcher = cascadia.MustCompile(strings.Join([]string{
		"[id*='cart']", "[class*='cart']",
		"[id*='basket']", "[class*='basket']",
		"[id*='bag']", "[class*='shopping-bag']",
		"[id*='checkout']", "[class*='checkout']",
		"[data-test*='cart']", "[data-testid*='cart']",
	}, ", "))

	priceCandidateMatcher = cascadia.MustCompile("li, tr, article, section, div, [role='listitem']")

	pricePattern = regexp.MustCompile(`[$£€]\s?\d{1,3}(?:,\d{3})+(?:\.\d{2})?|[$£€]\s?\d+(?:\.\d{2})?`)
)

// Selectors are ordered from most to least specific
var (
	genericRowSelectors = []string{
		"[class*='cart-item']",
		"[class*='cartItem']",
		"[class*='line-item']",
		"[class*='lineItem']",
		"[class*='product-row']",
		"[data-test*='item']",
		"[data-testid*='item']",
		"li",
		"tr",
	}

	genericNameSelectors = []string{
		"[class*='product-name']",
		"[class*='productName']",
		"[class*='item-name']",
		"[class*='item-title']",
		"[class*='product-title']",
		"[itemprop='name']",
		"[class*='title']",
		"[class*='name']",
		"h2", "h3", "h4",
		"a",
	}

	genericPriceSelectors = []string{
		"[class*='price']",
		"[itemprop='price']",
		"[data-test*='price']",
		"[class*='amount']",
		"[class*='cost']",
	}

	genericQuantitySelectors = []string{
		"input[name*='qty']",
		"input[name*='quantity']",
		"select[name*='qty']",
		"select[name*='quantity']",
		"input[type='number']",
		"[class*='quantity']",
		"[class*='qty']",
	}
)

// GenericAdapter is the heuristic fallback for sites with no strategy of
// their own. It is never selected by hostname.
type GenericAdapter struct {
	*BaseAdapter
	maxItems int
}

// NewGenericAdapter creates the fallback strategy
func NewGenericAdapter(config *types.Config, logger types.Logger) *GenericAdapter {
	base := NewBaseAdapter("generic", "Generic", nil, config, logger)

	maxItems := base.config.MaxGenericItems
	if maxItems <= 0 {
		maxItems = DefaultMaxGenericItems
	}

	return &GenericAdapter{
		BaseAdapter: base,
		maxItems:    maxItems,
	}
}

// CanHandle always returns false so the fallback never competes with site
// strategies
func (g *GenericAdapter) CanHandle(hostname string) bool {
	return false
}

// Extract runs the container scan and, if that finds nothing, the price
// pattern scan
func (g *GenericAdapter) Extract(doc *goquery.Document) ([]types.CartItem, error) {
	startTime := time.Now()

	items := g.scanContainers(doc)
	if len(items) > 0 {
		g.logger.Debugf("Generic: container scan found %d items in %v", len(items), time.Since(startTime))
		return items, nil
	}

	items = g.scanPrices(doc)
	g.logger.Debugf("Generic: price scan found %d items in %v", len(items), time.Since(startTime))
	return items, nil
}

func (g *GenericAdapter) scanContainers(doc *goquery.Document) []types.CartItem {
	acc := g.newAccumulator()

	containers := doc.FindMatcher(cartContainerMatcher).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsMatcher(cartContainerMatcher).Length() == 0
	})
	g.logger.Debugf("Generic: %d cart-like containers", containers.Length())

	containers.EachWithBreak(func(_ int, container *goquery.Selection) bool {
		for _, selector := range genericRowSelectors {
			rows := container.Find(selector)
			if rows.Length() == 0 {
				continue
			}
			g.logger.Debugf("Generic: %d rows in container via %s", rows.Length(), selector)
			rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
				return acc.add(g.buildItem(i, row, g.readRow))
			})
			break
		}
		return !acc.full()
	})

	return acc.items
}

func (g *GenericAdapter) readRow(i int, row *goquery.Selection) (types.CartItem, error) {
	name, _ := firstText(row, genericNameSelectors)
	if name == "" {
		return types.CartItem{}, fmt.Errorf("no name-like element")
	}

	price, _ := firstText(row, genericPriceSelectors)
	if m := pricePattern.FindString(price); m != "" {
		price = m
	}

	quantity := 0
	for _, selector := range genericQuantitySelectors {
		if el := row.Find(selector).First(); el.Length() > 0 {
			quantity = ExtractQuantityFromInput(el)
			break
		}
	}

	return types.CartItem{Name: name, Price: price, Quantity: quantity}, nil
}

func (g *GenericAdapter) scanPrices(doc *goquery.Document) []types.CartItem {
	acc := g.newAccumulator()

	doc.FindMatcher(priceCandidateMatcher).EachWithBreak(func(i int, candidate *goquery.Selection) bool {
		return acc.add(g.buildItem(i, candidate, g.readPriceCandidate))
	})

	return acc.items
}

func (g *GenericAdapter) readPriceCandidate(i int, candidate *goquery.Selection) (types.CartItem, error) {
	text := normalizeSpace(candidate.Text())
	if len(text) > maxCandidateTextLength {
		return types.CartItem{}, errSkipCandidate
	}

	loc := pricePattern.FindStringIndex(text)
	if loc == nil {
		return types.CartItem{}, errSkipCandidate
	}

	// Only the innermost priced element is a cart line
	nested := candidate.FindMatcher(priceCandidateMatcher).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return pricePattern.MatchString(s.Text())
	})
	if nested.Length() > 0 {
		return types.CartItem{}, errSkipCandidate
	}
	price := text[loc[0]:loc[1]]

	name, _ := firstText(candidate, []string{"h1", "h2", "h3", "h4", "a"})
	if name == "" || pricePattern.MatchString(name) {
		name = strings.Trim(text[:loc[0]], " -–:|·")
	}
	if name == "" {
		return types.CartItem{}, errSkipCandidate
	}

	return types.CartItem{Name: name, Price: price}, nil
}

var errSkipCandidate = errors.New("not a cart line")

// accumulator gathers valid, unique items up to a cap
type accumulator struct {
	g     *GenericAdapter
	seen  map[string]bool
	items []types.CartItem
}

func (g *GenericAdapter) newAccumulator() *accumulator {
	return &accumulator{g: g, seen: make(map[string]bool), items: []types.CartItem{}}
}

func (a *accumulator) full() bool {
	return len(a.items) >= a.g.maxItems
}

// add records item if it is valid and new. It returns false once the cap
// is reached so callers can stop iterating.
func (a *accumulator) add(item types.CartItem, err error) bool {
	if err != nil {
		if !errors.Is(err, errSkipCandidate) {
			a.g.logger.Debugf("Generic: skipping row: %v", err)
		}
		return !a.full()
	}
	if !a.g.IsValidItem(item) {
		return !a.full()
	}

	key := strings.ToLower(strings.TrimSpace(item.Name))
	if !a.seen[key] {
		a.seen[key] = true
		a.items = append(a.items, item)
	}
	return !a.full()
}
