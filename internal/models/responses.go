package models

// InventoryResponse is the envelope returned by GET /api/inventario.
type InventoryResponse struct {
	Success            bool      `json:"success"`
	Productos          []Product `json:"productos"`
	TotalProductos     int       `json:"totalProductos"`
	ProductosStockBajo int64     `json:"productosStockBajo"`
	Message            string    `json:"message,omitempty"`
}

// GroupsResponse is the envelope returned by GET /api/inventario/grupos.
type GroupsResponse struct {
	Success bool     `json:"success"`
	Grupos  []string `json:"grupos"`
	Message string   `json:"message,omitempty"`
}

// ActionResult is the generic result envelope for order actions
// such as DELETE /ordenes-salida/eliminar/{id}.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
