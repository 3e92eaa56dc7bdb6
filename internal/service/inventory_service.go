package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/beneficencia/almacen/internal/catalog"
	"github.com/beneficencia/almacen/internal/models"
	"github.com/beneficencia/almacen/internal/repository"
)

// defaultGroups is the historical fallback when the groups endpoint fails.
var defaultGroups = []string{"20", "44", "65", "75", "85", "150", "270", "350"}

// inventoryFetcher is the slice of the backend client the inventory views need.
type inventoryFetcher interface {
	Inventory(ctx context.Context) (*models.InventoryResponse, error)
	Groups(ctx context.Context) ([]string, error)
}

// InventoryService serves the inventory table and dashboard data. Backend
// failures never leave the view blank: the last good snapshot is served, or
// the built-in sample dataset when nothing was ever fetched. Nothing is
// retried automatically; the next request simply tries the backend again.
type InventoryService struct {
	backend inventoryFetcher
	samples repository.ProductRepository
	log     *slog.Logger

	mu         sync.RWMutex
	lastGood   []models.Product
	lastGroups []string
}

// NewInventoryService creates an inventory service backed by the given
// client, with the sample repository as the cold-start fallback.
func NewInventoryService(backend inventoryFetcher, samples repository.ProductRepository, log *slog.Logger) *InventoryService {
	if log == nil {
		log = slog.Default()
	}
	return &InventoryService{
		backend: backend,
		samples: samples,
		log:     log,
	}
}

// InventoryView is the inventory data plus where it came from.
type InventoryView struct {
	Productos          []models.Product
	TotalProductos     int
	ProductosStockBajo int64
	// Fallback is set when the backend failed and cached or sample data is
	// served instead.
	Fallback bool
	// FetchError holds the backend failure that caused the fallback.
	FetchError error
}

// Inventory returns the current inventory. The returned view is always
// populated; inspect Fallback/FetchError for degraded results.
func (s *InventoryService) Inventory(ctx context.Context) *InventoryView {
	resp, err := s.backend.Inventory(ctx)
	if err == nil {
		s.mu.Lock()
		s.lastGood = resp.Productos
		s.mu.Unlock()

		return &InventoryView{
			Productos:          resp.Productos,
			TotalProductos:     len(resp.Productos),
			ProductosStockBajo: resp.ProductosStockBajo,
		}
	}

	s.log.Warn("inventory fetch failed, serving fallback data", "error", err)

	s.mu.RLock()
	cached := s.lastGood
	s.mu.RUnlock()

	if cached == nil {
		if samples, serr := s.samples.GetAll(ctx); serr == nil {
			cached = samples
		}
	}
	return fallbackView(cached, err)
}

func fallbackView(products []models.Product, fetchErr error) *InventoryView {
	return &InventoryView{
		Productos:          products,
		TotalProductos:     len(products),
		ProductosStockBajo: catalog.CountLowStock(products),
		Fallback:           true,
		FetchError:         fetchErr,
	}
}

// Groups returns the product group list, falling back to the last good list
// and then to the historical default groups.
func (s *InventoryService) Groups(ctx context.Context) ([]string, bool) {
	grupos, err := s.backend.Groups(ctx)
	if err == nil {
		s.mu.Lock()
		s.lastGroups = grupos
		s.mu.Unlock()
		return grupos, false
	}

	s.log.Warn("groups fetch failed, serving fallback groups", "error", err)

	s.mu.RLock()
	cached := s.lastGroups
	s.mu.RUnlock()

	if cached != nil {
		return cached, true
	}
	return defaultGroups, true
}

// InventoryFilter narrows an inventory listing the same way the inventory
// page filters client-side.
type InventoryFilter struct {
	// Term matches case-insensitively against product name and code.
	Term string
	// Group matches the product category exactly.
	Group string
	// Stock is "low" or "normal"; empty means no stock filtering.
	Stock string
}

// Apply returns the products matching the filter, preserving order.
func (f InventoryFilter) Apply(products []models.Product) []models.Product {
	term := strings.ToLower(strings.TrimSpace(f.Term))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Nombre), term) &&
			!strings.Contains(strings.ToLower(p.Codigo), term) {
			continue
		}
		if f.Group != "" && p.Categoria != f.Group {
			continue
		}
		if f.Stock != "" && string(catalog.StatusOf(p)) != f.Stock {
			continue
		}
		out = append(out, p)
	}
	return out
}
