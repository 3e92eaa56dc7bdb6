package orderform

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	prices map[string]string
	names  map[string]string
}

func (c *stubCatalog) Price(productID string) (decimal.Decimal, bool) {
	raw, ok := c.prices[productID]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.RequireFromString(raw), true
}

func (c *stubCatalog) Name(productID string) (string, bool) {
	name, ok := c.names[productID]
	return name, ok
}

func testCatalog() *stubCatalog {
	return &stubCatalog{
		prices: map[string]string{"P1": "15.00", "P2": "3.50"},
		names:  map[string]string{"P1": "Augmentin 625 Duo Tablet", "P2": "Alex Syrup"},
	}
}

func TestNewFormStartsWithOneEmptyItem(t *testing.T) {
	f := New(testCatalog(), nil)

	snap := f.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, StateEmpty, snap.Items[0].State)
	require.Equal(t, MinQuantity, snap.Items[0].Quantity)
	require.True(t, snap.Items[0].UnitPrice.IsZero())
	require.True(t, snap.Total.IsZero())
	require.Equal(t, 0, snap.ValidItems)
}

func TestAddItemLimit(t *testing.T) {
	f := New(testCatalog(), nil)

	for i := 1; i < MaxItems; i++ {
		_, err := f.AddItem()
		require.NoError(t, err)
	}
	require.Equal(t, MaxItems, f.Len())

	_, err := f.AddItem()
	require.ErrorIs(t, err, ErrItemLimit)
	require.Equal(t, MaxItems, f.Len(), "form must be unchanged after a rejected add")
}

func TestRemoveLastItemResetsInsteadOfDeleting(t *testing.T) {
	f := New(testCatalog(), nil)
	only := f.Snapshot().Items[0]

	require.NoError(t, f.SelectProduct(only.ID, "P1"))
	require.NoError(t, f.SetQuantity(only.ID, 4))
	require.False(t, f.Total().IsZero())

	require.NoError(t, f.RemoveItem(only.ID))

	snap := f.Snapshot()
	require.Len(t, snap.Items, 1, "the form never drops to zero rows")
	require.Equal(t, only.ID, snap.Items[0].ID)
	require.Equal(t, StateEmpty, snap.Items[0].State)
	require.Equal(t, "", snap.Items[0].ProductID)
	require.Equal(t, MinQuantity, snap.Items[0].Quantity)
	require.Equal(t, "0.00", snap.Items[0].UnitPrice.StringFixed(2))
	require.True(t, snap.Total.IsZero())
}

func TestRemoveItemNotFound(t *testing.T) {
	f := New(testCatalog(), nil)
	require.ErrorIs(t, f.RemoveItem("missing"), ErrItemNotFound)
}

func TestPriceAutoFillAndManualOverride(t *testing.T) {
	f := New(testCatalog(), nil)
	id := f.Snapshot().Items[0].ID

	require.NoError(t, f.SelectProduct(id, "P1"))
	it := f.Snapshot().Items[0]
	require.Equal(t, "15.00", it.UnitPrice.StringFixed(2))
	require.Equal(t, PriceAutoFilled, it.PriceSource)

	// A manual edit wins over the auto-fill and never flips back.
	require.NoError(t, f.SetUnitPrice(id, decimal.RequireFromString("12.75")))
	it = f.Snapshot().Items[0]
	require.Equal(t, "12.75", it.UnitPrice.StringFixed(2))
	require.Equal(t, PriceManualEdit, it.PriceSource)

	require.NoError(t, f.SetQuantity(id, 3))
	require.Equal(t, PriceManualEdit, f.Snapshot().Items[0].PriceSource)
}

func TestSelectProductWithoutTableEntryKeepsPrice(t *testing.T) {
	f := New(testCatalog(), nil)
	id := f.Snapshot().Items[0].ID

	require.NoError(t, f.SetUnitPrice(id, decimal.RequireFromString("9.90")))
	require.NoError(t, f.SelectProduct(id, "P999"))

	it := f.Snapshot().Items[0]
	require.Equal(t, "9.90", it.UnitPrice.StringFixed(2))
	require.Equal(t, PriceManualEdit, it.PriceSource)
}

func TestClearingSelectionResetsPrice(t *testing.T) {
	f := New(testCatalog(), nil)
	id := f.Snapshot().Items[0].ID

	require.NoError(t, f.SelectProduct(id, "P1"))
	require.NoError(t, f.SelectProduct(id, ""))

	it := f.Snapshot().Items[0]
	require.Equal(t, "", it.ProductID)
	require.True(t, it.UnitPrice.IsZero())
	require.Equal(t, PriceUnset, it.PriceSource)
}

func TestQuantityAndPriceClamping(t *testing.T) {
	f := New(testCatalog(), nil)
	id := f.Snapshot().Items[0].ID

	require.NoError(t, f.SetQuantity(id, 0))
	require.Equal(t, MinQuantity, f.Snapshot().Items[0].Quantity)

	require.NoError(t, f.SetQuantity(id, 100000))
	require.Equal(t, MaxQuantity, f.Snapshot().Items[0].Quantity)

	require.NoError(t, f.SetUnitPrice(id, decimal.RequireFromString("-3")))
	require.Equal(t, "0.00", f.Snapshot().Items[0].UnitPrice.StringFixed(2))

	require.NoError(t, f.SetUnitPrice(id, decimal.RequireFromString("1000000")))
	require.Equal(t, "999999.00", f.Snapshot().Items[0].UnitPrice.StringFixed(2))
}

func TestTotalsRecomputedAfterEveryMutation(t *testing.T) {
	f := New(testCatalog(), nil)
	first := f.Snapshot().Items[0].ID

	second, err := f.AddItem()
	require.NoError(t, err)
	_, err = f.AddItem()
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())

	require.NoError(t, f.SelectProduct(first, "P1"))
	require.NoError(t, f.SetQuantity(first, 2))

	snap := f.Snapshot()
	require.Equal(t, "30.00", snap.Items[0].Subtotal.StringFixed(2))
	require.Equal(t, "30.00", snap.Total.StringFixed(2))
	require.Equal(t, 1, snap.ValidItems)

	require.NoError(t, f.RemoveItem(second.ID))
	require.Equal(t, 2, f.Len())
	require.Equal(t, "30.00", f.Total().StringFixed(2))

	require.NoError(t, f.RemoveItem(first))
	snap = f.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, "0.00", snap.Total.StringFixed(2))
	require.Equal(t, StateEmpty, snap.Items[0].State)
}

func TestRowCountStaysWithinBounds(t *testing.T) {
	f := New(testCatalog(), nil)

	for i := 0; i < 60; i++ {
		f.AddItem()
	}
	require.Equal(t, MaxItems, f.Len())

	for _, it := range f.Snapshot().Items {
		f.RemoveItem(it.ID)
	}
	require.Equal(t, 1, f.Len(), "row count never drops below one")
}

func TestRemoveItemAfter(t *testing.T) {
	f := New(testCatalog(), nil)
	it, err := f.AddItem()
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	f.RemoveItemAfter(it.ID, 5*time.Millisecond)

	require.Eventually(t, func() bool { return f.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRemoveItemAfterIsNoOpWhenAlreadyRemoved(t *testing.T) {
	f := New(testCatalog(), nil)
	it, err := f.AddItem()
	require.NoError(t, err)

	f.RemoveItemAfter(it.ID, 5*time.Millisecond)
	require.NoError(t, f.RemoveItem(it.ID))

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, f.Len())
}

func TestFormValuesAlignment(t *testing.T) {
	f := New(testCatalog(), nil)
	first := f.Snapshot().Items[0].ID
	second, err := f.AddItem()
	require.NoError(t, err)

	require.NoError(t, f.SelectProduct(first, "P1"))
	require.NoError(t, f.SetQuantity(first, 3))
	require.NoError(t, f.SelectProduct(second.ID, "P2"))

	v := f.FormValues()
	require.Equal(t, []string{"P1", "P2"}, v["productoIds"])
	require.Equal(t, []string{"3", "1"}, v["cantidades"])
	require.Equal(t, []string{"15.00", "3.50"}, v["precios"])
}

func TestPartialState(t *testing.T) {
	f := New(testCatalog(), nil)
	id := f.Snapshot().Items[0].ID

	// A price without a product is not empty and not valid.
	require.NoError(t, f.SetUnitPrice(id, decimal.RequireFromString("2.00")))
	require.Equal(t, StatePartial, f.Snapshot().Items[0].State)
}

func TestAddItemAssignsDistinctIDs(t *testing.T) {
	f := New(testCatalog(), nil)
	seen := map[string]bool{f.Snapshot().Items[0].ID: true}

	for i := 0; i < 10; i++ {
		it, err := f.AddItem()
		require.NoError(t, err)
		require.False(t, seen[it.ID], fmt.Sprintf("duplicate item id %s", it.ID))
		seen[it.ID] = true
	}
}
