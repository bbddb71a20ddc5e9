package adapters

import (
	"regexp"
	"strconv"
	"strings"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

var firstIntPattern = regexp.MustCompile(`-?\d+`)

// ExtractText returns the trimmed text of sel, or of its first descendant
// matching selector when one is given. Runs of whitespace collapse to a
// single space. An empty string means nothing usable was found.
func ExtractText(sel *goquery.Selection, selector string) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	target := sel
	if selector != "" {
		target = sel.Find(selector).First()
		if target.Length() == 0 {
			return ""
		}
	}

	return normalizeSpace(target.Text())
}

// ExtractQuantityFromInput reads a quantity from an input-like or
// select-like element. It never returns less than 1.
func ExtractQuantityFromInput(sel *goquery.Selection) int {
	if sel == nil || sel.Length() == 0 {
		return 1
	}
	el := sel.First()

	var candidates []string
	switch goquery.NodeName(el) {
	case "input":
		if v, ok := el.Attr("value"); ok {
			candidates = append(candidates, v)
		}
	case "select":
		opt := el.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = el.Find("option").First()
		}
		if v, ok := opt.Attr("value"); ok {
			candidates = append(candidates, v)
		}
		candidates = append(candidates, opt.Text())
	}

	for _, attr := range []string{"aria-valuenow", "data-quantity", "data-qty", "value"} {
		if v, ok := el.Attr(attr); ok {
			candidates = append(candidates, v)
		}
	}
	candidates = append(candidates, el.Text())

	for _, c := range candidates {
		if qty, ok := parseQuantity(c); ok {
			return qty
		}
	}
	return 1
}

// parseQuantity picks the first integer in s. Only positive values count.
func parseQuantity(s string) (int, bool) {
	match := firstIntPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	qty, err := strconv.Atoi(match)
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// DeduplicateItems removes items whose trimmed, lowercased name was already
// seen. The first occurrence wins and order is preserved.
func DeduplicateItems(items []types.CartItem) []types.CartItem {
	seen := make(map[string]bool, len(items))
	unique := make([]types.CartItem, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}

	return unique
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstText tries each selector in order inside sel and returns the first
// non-empty text along with the selector that produced it.
func firstText(sel *goquery.Selection, selectors []string) (string, string) {
	for _, selector := range selectors {
		if text := ExtractText(sel, selector); text != "" {
			return text, selector
		}
	}
	return "", ""
}
