// Package catalog holds the read-only product lookup data that the order
// form engine consumes: the product-to-price table embedded at page load
// and the stock status rules used by the inventory views.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/beneficencia/almacen/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultStockMinimo is applied when a product carries no minimum of its own.
const DefaultStockMinimo = 5

// Table maps product IDs to their name and unit price. It is built once
// from a product listing and never mutated afterwards.
type Table struct {
	entries map[string]entry
}

type entry struct {
	name  string
	price decimal.Decimal
}

// NewTable builds a lookup table from a product listing.
func NewTable(products []models.Product) *Table {
	entries := make(map[string]entry, len(products))
	for _, p := range products {
		id := strconv.FormatInt(p.ID, 10)
		entries[id] = entry{name: p.Nombre, price: p.PrecioUnitario}
	}
	return &Table{entries: entries}
}

// ParseTable builds a lookup table from the JSON product listing the order
// pages embed at render time.
func ParseTable(data []byte) (*Table, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing product listing: %w", err)
	}
	return NewTable(products), nil
}

// Price returns the unit price for a product ID, if the table knows it.
func (t *Table) Price(productID string) (decimal.Decimal, bool) {
	e, ok := t.entries[productID]
	if !ok {
		return decimal.Zero, false
	}
	return e.price, true
}

// Name returns the display name for a product ID, if the table knows it.
func (t *Table) Name(productID string) (string, bool) {
	e, ok := t.entries[productID]
	if !ok {
		return "", false
	}
	return e.name, true
}

// Len returns the number of products in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// StockStatus classifies a product's stock level.
type StockStatus string

const (
	StockLow     StockStatus = "low"
	StockNormal  StockStatus = "normal"
	StockUnknown StockStatus = "unknown"
)

// StatusOf derives the stock status of a product. Products without a
// recorded quantity are unknown; otherwise the quantity is compared against
// the product's minimum stock (or the default minimum when unset).
func StatusOf(p models.Product) StockStatus {
	if p.Cantidad == nil {
		return StockUnknown
	}
	min := p.StockMinimo
	if min <= 0 {
		min = DefaultStockMinimo
	}
	if *p.Cantidad <= min {
		return StockLow
	}
	return StockNormal
}

// CountLowStock returns how many products in the listing are low on stock.
func CountLowStock(products []models.Product) int64 {
	var n int64
	for _, p := range products {
		if StatusOf(p) == StockLow {
			n++
		}
	}
	return n
}
