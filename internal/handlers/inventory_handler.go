package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/beneficencia/almacen/internal/backend"
	"github.com/beneficencia/almacen/internal/models"
	"github.com/beneficencia/almacen/internal/service"
)

// InventoryHandler serves the inventory table and its group filter. Results
// are complete views: when the warehouse backend is unreachable the handler
// still answers with cached or sample data and flags the degradation.
type InventoryHandler struct {
	inventory *service.InventoryService
	backend   *backend.Client
	log       *slog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory *service.InventoryService, backend *backend.Client, log *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		backend:   backend,
		log:       log,
	}
}

type inventoryResponse struct {
	models.InventoryResponse
	Fallback bool `json:"fallback,omitempty"`
}

// GetInventory handles GET /api/inventario
// Query parameters busqueda, grupo and stock narrow the listing.
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	view := h.inventory.Inventory(r.Context())

	filter := service.InventoryFilter{
		Term:  r.URL.Query().Get("busqueda"),
		Group: r.URL.Query().Get("grupo"),
		Stock: r.URL.Query().Get("stock"),
	}
	productos := filter.Apply(view.Productos)

	resp := inventoryResponse{
		InventoryResponse: models.InventoryResponse{
			Success:            true,
			Productos:          productos,
			TotalProductos:     view.TotalProductos,
			ProductosStockBajo: view.ProductosStockBajo,
		},
		Fallback: view.Fallback,
	}
	if view.Fallback {
		resp.Message = "Mostrando datos de respaldo, el servidor de almacén no respondió"
	}
	WriteJSON(w, http.StatusOK, resp, h.log)
}

// GetGroups handles GET /api/inventario/grupos
func (h *InventoryHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	grupos, fallback := h.inventory.Groups(r.Context())

	resp := models.GroupsResponse{
		Success: true,
		Grupos:  grupos,
	}
	if fallback {
		resp.Message = "Mostrando grupos de respaldo, el servidor de almacén no respondió"
	}
	WriteJSON(w, http.StatusOK, resp, h.log)
}

// GetOutboundProducts handles GET /ordenes-salida/productos
// The outbound order form has no fallback dataset: a backend failure is
// reported instead of masked with stale products.
func (h *InventoryHandler) GetOutboundProducts(w http.ResponseWriter, r *http.Request) {
	productos, err := h.backend.OutboundProducts(r.Context())
	if err != nil {
		var reqErr *backend.RequestError
		if errors.As(err, &reqErr) {
			h.log.Error("outbound products fetch failed", "error", err)
			WriteError(w, http.StatusBadGateway, "No se pudo contactar al servidor de almacén", h.log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Error interno", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, productos, h.log)
}
