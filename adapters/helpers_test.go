package adapters

import (
	"io"
	"testing"

	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := ParseHTML(html)
	require.NoError(t, err)
	return doc
}

func TestExtractText(t *testing.T) {
	doc := mustParse(t, `<div id="row">
		<span class="name">  Blue
			Widget </span>
		<span class="empty">   </span>
	</div>`)
	row := doc.Find("#row")

	assert.Equal(t, "Blue Widget", ExtractText(row, ".name"))
	assert.Equal(t, "", ExtractText(row, ".empty"))
	assert.Equal(t, "", ExtractText(row, ".missing"))
	assert.Equal(t, "Blue Widget", ExtractText(row, ""))
	assert.Equal(t, "", ExtractText(doc.Find(".nothing"), ""))
	assert.Equal(t, "", ExtractText(nil, ".name"))
}

func TestExtractQuantityFromInput(t *testing.T) {
	doc := mustParse(t, `
		<input id="input" type="number" value="3">
		<input id="zero" value="0">
		<input id="negative" value="-2">
		<input id="junk" value="abc">
		<select id="select"><option value="1">1</option><option value="4" selected>4</option></select>
		<select id="plain"><option value="2">2</option></select>
		<div id="aria" aria-valuenow="5">five</div>
		<div id="data" data-quantity="6"></div>
		<span id="text">Qty: 7</span>
		<span id="none"></span>
	`)

	tests := []struct {
		selector string
		want     int
	}{
		{"#input", 3},
		{"#zero", 1},
		{"#negative", 1},
		{"#junk", 1},
		{"#select", 4},
		{"#plain", 2},
		{"#aria", 5},
		{"#data", 6},
		{"#text", 7},
		{"#none", 1},
		{"#missing", 1},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQuantityFromInput(doc.Find(tt.selector)))
		})
	}

	assert.Equal(t, 1, ExtractQuantityFromInput(nil))
}

func TestDeduplicateItems_FirstOccurrenceWins(t *testing.T) {
	items := []types.CartItem{
		{Name: "Widget A", Price: "$10"},
		{Name: "  widget a ", Price: "$12"},
		{Name: "Widget B", Price: "$5"},
		{Name: "WIDGET B", Price: "$6"},
	}

	unique := DeduplicateItems(items)

	require.Len(t, unique, 2)
	assert.Equal(t, types.CartItem{Name: "Widget A", Price: "$10"}, unique[0])
	assert.Equal(t, types.CartItem{Name: "Widget B", Price: "$5"}, unique[1])
}

func TestDeduplicateItems_Empty(t *testing.T) {
	assert.Empty(t, DeduplicateItems(nil))
}

func TestCollectItems_RowPanicIsIsolated(t *testing.T) {
	base := NewBaseAdapter("test", "Test", []string{"test.com"}, types.DefaultConfig(), newTestLogger())
	doc := mustParse(t, `<ul>
		<li>First Product</li>
		<li>Broken Product</li>
		<li>Third Product</li>
	</ul>`)

	items := base.collectItems(doc.Find("li"), func(i int, row *goquery.Selection) (types.CartItem, error) {
		if i == 1 {
			var m map[string]string
			m["boom"] = "nil map write"
		}
		return types.CartItem{Name: ExtractText(row, "")}, nil
	})

	require.Len(t, items, 2)
	assert.Equal(t, "First Product", items[0].Name)
	assert.Equal(t, "Third Product", items[1].Name)
}

func TestCollectItems_NilRows(t *testing.T) {
	base := NewBaseAdapter("test", "Test", nil, nil, newTestLogger())
	items := base.collectItems(nil, nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestBaseAdapter_CanHandle(t *testing.T) {
	base := NewBaseAdapter("shop", "Shop", []string{"Example-Shop.com", "shop.test"}, nil, newTestLogger())

	assert.True(t, base.CanHandle("www.example-shop.com"))
	assert.True(t, base.CanHandle("WWW.EXAMPLE-SHOP.COM"))
	assert.True(t, base.CanHandle("cart.shop.test"))
	assert.False(t, base.CanHandle("example.com"))
	assert.False(t, base.CanHandle(""))
}
