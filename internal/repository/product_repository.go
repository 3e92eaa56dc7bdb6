package repository

import (
	"context"
	"errors"

	"github.com/beneficencia/almacen/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory data.
// It backs the inventory views when the warehouse backend is unreachable and
// nothing has been fetched yet, so the UI never renders blank.
type InMemoryProductRepository struct {
	products []models.Product
	byID     map[int64]int
}

// NewSampleInventory creates an in-memory repository seeded with the
// historical sample dataset of the inventory page.
func NewSampleInventory() *InMemoryProductRepository {
	products := []models.Product{
		{ID: 1, Nombre: "Augmentin 625 Duo Tablet", Codigo: "88/88/88", Cantidad: intPtr(2), Categoria: "350", UnidadMedida: "caja", PrecioUnitario: price("15.00")},
		{ID: 2, Nombre: "Azithral 500 Tablet", Codigo: "", Cantidad: intPtr(2), Categoria: "20", UnidadMedida: "caja", PrecioUnitario: price("8.90")},
		{ID: 3, Nombre: "Ascoril LS Syrup", Codigo: "D06ID232435452", Cantidad: intPtr(2), Categoria: "85", UnidadMedida: "frasco", PrecioUnitario: price("6.25")},
		{ID: 4, Nombre: "Azee 500 Tablet", Codigo: "D06ID232435450", Cantidad: intPtr(2), Categoria: "75", UnidadMedida: "caja", PrecioUnitario: price("4.50")},
		{ID: 5, Nombre: "Allegra 120mg Tablet", Codigo: "D06ID232435455", Cantidad: nil, Categoria: "44", UnidadMedida: "blíster", PrecioUnitario: price("11.30")},
		{ID: 6, Nombre: "Alex Syrup", Codigo: "D06ID232435456", Cantidad: nil, Categoria: "65", UnidadMedida: "frasco", PrecioUnitario: price("3.50")},
		{ID: 7, Nombre: "Amoxyclav 625 Tablet", Codigo: "D06ID232435457", Cantidad: intPtr(150), Categoria: "150", UnidadMedida: "caja", PrecioUnitario: price("12.75")},
		{ID: 8, Nombre: "Avil 25 Tablet", Codigo: "D06ID232435458", Cantidad: intPtr(270), Categoria: "270", UnidadMedida: "caja", PrecioUnitario: price("2.10")},
	}

	byID := make(map[int64]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	return &InMemoryProductRepository{
		products: products,
		byID:     byID,
	}
}

// GetAll returns all products in listing order.
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	idx, exists := r.byID[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	p := r.products[idx]
	return &p, nil
}

func intPtr(v int) *int { return &v }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }
