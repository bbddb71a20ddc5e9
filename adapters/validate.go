package adapters

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"cart-extractor/internal/types"
)

const (
	MinNameLength = 3
	MaxNameLength = 500
)

// DefaultNoiseWords are UI labels that show up next to cart lines and are
// never product names. Matching is whole-name and case-insensitive.
var DefaultNoiseWords = []string{
	"remove",
	"delete",
	"quantity",
	"qty",
	"checkout",
	"proceed to checkout",
	"subtotal",
	"total",
	"estimated total",
	"save for later",
	"move to wishlist",
	"move to favorites",
	"edit",
	"update",
	"price",
	"item",
	"items",
	"cart",
	"your cart",
	"shopping cart",
	"continue shopping",
	"add to cart",
	"free shipping",
	"shipping",
	"tax",
	"in stock",
	"see details",
}

var (
	numericName     = regexp.MustCompile(`^[\d\s.,]+$`)
	punctuationName = regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
	bareQuantity    = regexp.MustCompile(`(?i)^(qty|quantity)\s*:?\s*\d*$`)
	barePrice       = regexp.MustCompile(`^[$£€]\s?[\d.,]+$`)
)

// Validator is the single gate every cart item passes before it is
// returned. The noise list is data and can grow through configuration.
type Validator struct {
	noise map[string]bool
}

// NewValidator creates a validator from the default noise words plus extra
func NewValidator(extra []string) *Validator {
	noise := make(map[string]bool, len(DefaultNoiseWords)+len(extra))
	for _, w := range DefaultNoiseWords {
		noise[w] = true
	}
	for _, w := range extra {
		w = strings.ToLower(normalizeSpace(w))
		if w != "" {
			noise[w] = true
		}
	}
	return &Validator{noise: noise}
}

// IsValidItem reports whether item has a usable name
func (v *Validator) IsValidItem(item types.CartItem) bool {
	name := strings.TrimSpace(item.Name)
	length := utf8.RuneCountInString(name)
	if length < MinNameLength || length > MaxNameLength {
		return false
	}
	return !v.IsNoise(name)
}

// IsNoise reports whether name looks like page chrome instead of a product
func (v *Validator) IsNoise(name string) bool {
	name = normalizeSpace(name)
	if v.noise[strings.ToLower(name)] {
		return true
	}
	return numericName.MatchString(name) ||
		punctuationName.MatchString(name) ||
		bareQuantity.MatchString(name) ||
		barePrice.MatchString(name)
}

// Filter keeps only the valid items, in order
func (v *Validator) Filter(items []types.CartItem) []types.CartItem {
	valid := make([]types.CartItem, 0, len(items))
	for _, item := range items {
		if !v.IsValidItem(item) {
			continue
		}
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		valid = append(valid, item)
	}
	return valid
}
