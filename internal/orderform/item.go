package orderform

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field bounds for a line item. They match the limits the order form has
// always enforced on its inputs.
const (
	MaxItems    = 50
	MinQuantity = 1
	MaxQuantity = 9999
)

var maxUnitPrice = decimal.NewFromInt(999999)

// PriceSource records where an item's unit price came from. It drives the
// form's visual hint only; it is never sent to the backend.
type PriceSource string

const (
	PriceUnset      PriceSource = "unset"
	PriceAutoFilled PriceSource = "auto"
	PriceManualEdit PriceSource = "manual"
)

// ItemState is the lifecycle state of a line item.
type ItemState string

const (
	StateEmpty   ItemState = "empty"
	StatePartial ItemState = "partial"
	StateValid   ItemState = "valid"
)

type item struct {
	id          string
	productID   string
	quantity    int
	unitPrice   decimal.Decimal
	priceSource PriceSource
}

func newItem() *item {
	return &item{
		id:          uuid.New().String(),
		quantity:    MinQuantity,
		unitPrice:   decimal.Zero,
		priceSource: PriceUnset,
	}
}

// reset returns the item to its defaults: no product, quantity 1, price 0.00.
func (it *item) reset() {
	it.productID = ""
	it.quantity = MinQuantity
	it.unitPrice = decimal.Zero
	it.priceSource = PriceUnset
}

func (it *item) subtotal() decimal.Decimal {
	return it.unitPrice.Mul(decimal.NewFromInt(int64(it.quantity))).Round(2)
}

func (it *item) valid() bool {
	return it.productID != "" && it.quantity > 0 && !it.unitPrice.IsNegative()
}

func (it *item) state() ItemState {
	if it.valid() {
		return StateValid
	}
	if it.productID == "" && it.quantity == MinQuantity && it.unitPrice.IsZero() {
		return StateEmpty
	}
	return StatePartial
}

// Item is a read-only snapshot of a line item.
type Item struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productoId"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	PriceSource PriceSource     `json:"origenPrecio"`
	State       ItemState       `json:"estado"`
}

func snapshotItem(it *item) Item {
	return Item{
		ID:          it.id,
		ProductID:   it.productID,
		Quantity:    it.quantity,
		UnitPrice:   it.unitPrice,
		Subtotal:    it.subtotal(),
		PriceSource: it.priceSource,
		State:       it.state(),
	}
}
