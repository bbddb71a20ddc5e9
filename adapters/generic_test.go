package adapters

import (
	"fmt"
	"strings"
	"testing"

	"cart-extractor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericAdapter_NeverClaimsHostnames(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())

	assert.False(t, adapter.CanHandle("www.example-shop.com"))
	assert.False(t, adapter.CanHandle("generic"))
	assert.False(t, adapter.CanHandle(""))
	assert.Equal(t, "generic", adapter.SiteID())
}

func TestGenericAdapter_ContainerScan(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())
	doc := mustParse(t, `
	<header><a class="nav-link" href="/">Home</a></header>
	<section id="shopping-cart">
		<div class="cart-item">
			<a class="product-name" href="/p/1">Ceramic Pour-Over Set</a>
			<span class="item-price">Price: $34.50</span>
			<input name="qty" value="2">
			<button>Remove</button>
		</div>
		<div class="cart-item">
			<h3>Linen Napkins (4)</h3>
			<span class="price">$18.00</span>
		</div>
		<div class="cart-item">
			<h3>Remove</h3>
		</div>
	</section>`)

	items, err := adapter.Extract(doc)

	require.NoError(t, err)
	assert.Equal(t, []types.CartItem{
		{Name: "Ceramic Pour-Over Set", Price: "$34.50", Quantity: 2},
		{Name: "Linen Napkins (4)", Price: "$18.00"},
	}, items)
}

func TestGenericAdapter_ListItemsInBasket(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())
	doc := mustParse(t, `
	<div class="basket">
		<ul>
			<li><h4>Hand Cream 50ml</h4><span class="amount">£6.00</span></li>
			<li><h4>Lip Balm Trio</h4><span class="amount">£9.50</span></li>
		</ul>
	</div>`)

	items, err := adapter.Extract(doc)

	require.NoError(t, err)
	assert.Equal(t, []types.CartItem{
		{Name: "Hand Cream 50ml", Price: "£6.00"},
		{Name: "Lip Balm Trio", Price: "£9.50"},
	}, items)
}

func TestGenericAdapter_PriceScan(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())
	doc := mustParse(t, `
	<main>
		<article><a href="/p/lamp">Brass Desk Lamp</a> <b>$89.00</b></article>
		<div>Walnut Serving Board - $45</div>
		<div>Shipping calculated at next step</div>
	</main>`)

	items, err := adapter.Extract(doc)

	require.NoError(t, err)
	assert.Equal(t, []types.CartItem{
		{Name: "Brass Desk Lamp", Price: "$89.00"},
		{Name: "Walnut Serving Board", Price: "$45"},
	}, items)
}

func TestGenericAdapter_PriceScanCapsResults(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())

	var b strings.Builder
	b.WriteString("<main>")
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&b, `<div class="tile">Handmade Mug Number %d <span>$%d.00</span></div>`, i, 10+i)
	}
	b.WriteString("</main>")

	items, err := adapter.Extract(mustParse(t, b.String()))

	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, "Handmade Mug Number 1", items[0].Name)
	assert.Equal(t, "$11.00", items[0].Price)
}

func TestGenericAdapter_ContainerScanCapsResults(t *testing.T) {
	config := types.DefaultConfig()
	config.MaxGenericItems = 5
	adapter := NewGenericAdapter(config, newTestLogger())

	var b strings.Builder
	b.WriteString(`<div id="cart"><ul>`)
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, `<li><span class="item-name">Cart Thing %d</span></li>`, i)
	}
	b.WriteString("</ul></div>")

	items, err := adapter.Extract(mustParse(t, b.String()))

	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestGenericAdapter_NothingToFind(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())

	items, err := adapter.Extract(mustParse(t, `<p>Welcome to our store</p>`))

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGenericAdapter_PriceScanSkipsWrappers(t *testing.T) {
	adapter := NewGenericAdapter(types.DefaultConfig(), newTestLogger())
	doc := mustParse(t, `
	<main>
		<div>
			<h2>Order summary</h2>
			<div>Widget Alpha $10</div>
			<div>Widget Beta $5</div>
		</div>
	</main>`)

	items, err := adapter.Extract(doc)

	require.NoError(t, err)
	assert.Equal(t, []types.CartItem{
		{Name: "Widget Alpha", Price: "$10"},
		{Name: "Widget Beta", Price: "$5"},
	}, items)
}
