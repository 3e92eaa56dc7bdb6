package models

import "github.com/shopspring/decimal"

func init() {
	// The warehouse backend serializes prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product mirrors the product payload exchanged with the warehouse backend.
// The JSON field names are the wire contract and stay in Spanish.
type Product struct {
	ID             int64           `json:"id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Descripcion    string          `json:"descripcion,omitempty"`
	Categoria      string          `json:"categoria"`
	UnidadMedida   string          `json:"unidadMedida,omitempty"`
	Cantidad       *int            `json:"cantidad"`
	StockMinimo    int             `json:"stockMinimo,omitempty"`
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
	// FechaVencimiento is an ISO date string; the backend owns its format.
	FechaVencimiento string `json:"fechaVencimiento,omitempty"`
}
