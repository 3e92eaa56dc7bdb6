// Package orderform implements the line-item engine behind the purchase and
// supply order forms: an ordered collection of product/quantity/price rows
// with live subtotal and total recomputation, structural add/remove/reset
// operations, price auto-fill from the product catalog, and submit-time
// validation. All real order state (persistence, stock, authorization) lives
// in the warehouse backend; the engine only prepares and validates what gets
// submitted there.
package orderform

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemLimit is returned by AddItem once the form holds MaxItems rows.
	ErrItemLimit = errors.New("la orden no puede tener más de 50 productos")
	// ErrItemNotFound is returned by item operations that target a row that
	// no longer exists.
	ErrItemNotFound = errors.New("item not found")
)

// Catalog is the read-only product lookup the form depends on. It is handed
// in at construction; the form never mutates it.
type Catalog interface {
	Price(productID string) (decimal.Decimal, bool)
	Name(productID string) (string, bool)
}

// Form is one live order form. Every mutating operation recomputes the
// derived subtotals and total before returning, so a Snapshot taken at any
// point is consistent with the current field values.
//
// A form always holds at least one item: removing the last remaining item
// resets it to defaults instead of deleting it.
type Form struct {
	mu      sync.Mutex
	catalog Catalog
	log     *slog.Logger
	items   []*item
}

// New creates a form with a single empty item, bound to the given catalog.
func New(catalog Catalog, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{
		catalog: catalog,
		log:     log,
		items:   []*item{newItem()},
	}
}

// Snapshot captures the full form state for rendering.
type Snapshot struct {
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ValidItems int             `json:"itemsValidos"`
}

// AddItem appends a new empty item and returns it. The form is left
// unchanged when the item limit is reached.
func (f *Form) AddItem() (Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) >= MaxItems {
		return Item{}, ErrItemLimit
	}
	it := newItem()
	f.items = append(f.items, it)
	return snapshotItem(it), nil
}

// RemoveItem removes the identified item. When it is the only item left,
// its fields are reset to defaults instead; the form never drops to zero
// rows.
func (f *Form) RemoveItem(itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeLocked(itemID)
}

// RemoveItemAfter schedules RemoveItem after a fixed delay, used by the UI
// for fade-out sequencing. The timer cannot be cancelled; if the item is
// gone by the time it fires, the removal is a no-op.
func (f *Form) RemoveItemAfter(itemID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := f.removeLocked(itemID); err != nil {
			f.log.Debug("deferred removal skipped, item already gone", "item_id", itemID)
		}
	})
}

func (f *Form) removeLocked(itemID string) error {
	idx := f.indexOf(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	if len(f.items) == 1 {
		f.items[0].reset()
		return nil
	}
	f.items = append(f.items[:idx], f.items[idx+1:]...)
	return nil
}

// SelectProduct sets an item's product. If the catalog knows the product,
// its price is auto-filled; otherwise the current price is kept and marked
// as manual. Clearing the selection resets the price to 0.00.
func (f *Form) SelectProduct(itemID, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	it := f.find(itemID)
	if it == nil {
		return ErrItemNotFound
	}

	it.productID = productID
	if productID == "" {
		it.unitPrice = decimal.Zero
		it.priceSource = PriceUnset
		return nil
	}

	if price, ok := f.catalog.Price(productID); ok {
		it.unitPrice = price.Round(2)
		it.priceSource = PriceAutoFilled
	} else {
		it.priceSource = PriceManualEdit
	}
	return nil
}

// SetQuantity updates an item's quantity, clamped to [MinQuantity, MaxQuantity].
func (f *Form) SetQuantity(itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	it := f.find(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	if quantity < MinQuantity {
		quantity = MinQuantity
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}
	it.quantity = quantity
	return nil
}

// SetUnitPrice updates an item's unit price, clamped to [0, 999999] and
// rounded to two decimals. A manual edit always overrides a previous
// auto-fill; the price source never flips back on its own.
func (f *Form) SetUnitPrice(itemID string, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	it := f.find(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	if price.GreaterThan(maxUnitPrice) {
		price = maxUnitPrice
	}
	it.unitPrice = price.Round(2)
	it.priceSource = PriceManualEdit
	return nil
}

// Len returns the current number of items.
func (f *Form) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Total returns the sum of all item subtotals.
func (f *Form) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalLocked()
}

// ValidItemCount returns how many items are currently in the valid state.
func (f *Form) ValidItemCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validCountLocked()
}

// Snapshot returns the items in display order together with the derived
// total and valid-item count.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]Item, len(f.items))
	for i, it := range f.items {
		items[i] = snapshotItem(it)
	}
	return Snapshot{
		Items:      items,
		Total:      f.totalLocked(),
		ValidItems: f.validCountLocked(),
	}
}

// FormValues encodes the form the way the order pages post it: repeated
// productoIds/cantidades/precios fields, positionally aligned by row. All
// rows are sent; the backend re-validates everything.
func (f *Form) FormValues() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := url.Values{}
	for _, it := range f.items {
		v.Add("productoIds", it.productID)
		v.Add("cantidades", strconv.Itoa(it.quantity))
		v.Add("precios", it.unitPrice.StringFixed(2))
	}
	return v
}

func (f *Form) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, it := range f.items {
		total = total.Add(it.subtotal())
	}
	return total
}

func (f *Form) validCountLocked() int {
	n := 0
	for _, it := range f.items {
		if it.valid() {
			n++
		}
	}
	return n
}

func (f *Form) indexOf(itemID string) int {
	for i, it := range f.items {
		if it.id == itemID {
			return i
		}
	}
	return -1
}

func (f *Form) find(itemID string) *item {
	if idx := f.indexOf(itemID); idx >= 0 {
		return f.items[idx]
	}
	return nil
}
