package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beneficencia/almacen/internal/backend"
	"github.com/beneficencia/almacen/internal/models"
	"github.com/beneficencia/almacen/internal/repository"
	"github.com/beneficencia/almacen/internal/service"
	"github.com/beneficencia/almacen/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func newInventoryRouter(t *testing.T, upstream http.Handler) chi.Router {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	log := logger.New("error")
	client := backend.NewClient(srv.URL, 5*time.Second, log)
	inventory := service.NewInventoryService(client, repository.NewSampleInventory(), log)
	h := NewInventoryHandler(inventory, client, log)

	r := chi.NewRouter()
	r.Get("/api/inventario", h.GetInventory)
	r.Get("/api/inventario/grupos", h.GetGroups)
	r.Get("/ordenes-salida/productos", h.GetOutboundProducts)
	return r
}

func upstreamInventory() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/inventario", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"productos": [
				{"id": 1, "codigo": "MED001", "nombre": "Paracetamol 500mg", "categoria": "20", "cantidad": 3, "precioUnitario": 1.20},
				{"id": 2, "codigo": "MED002", "nombre": "Ibuprofeno 400mg", "categoria": "44", "cantidad": 40, "precioUnitario": 2.40}
			],
			"totalProductos": 2,
			"productosStockBajo": 1
		}`))
	})
	mux.HandleFunc("/api/inventario/grupos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "grupos": ["20", "44"]}`))
	})
	mux.HandleFunc("/ordenes-salida/productos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 7, "codigo": "MED007", "nombre": "Amoxicilina", "categoria": "65", "cantidad": 12, "precioUnitario": 4.80}]`))
	})
	return mux
}

func upstreamDown() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
}

func TestGetInventory(t *testing.T) {
	router := newInventoryRouter(t, upstreamInventory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventario", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp models.InventoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success true")
	}
	if len(resp.Productos) != 2 || resp.TotalProductos != 2 {
		t.Errorf("expected 2 products, got %d (total %d)", len(resp.Productos), resp.TotalProductos)
	}
	if resp.ProductosStockBajo != 1 {
		t.Errorf("expected 1 low-stock product, got %d", resp.ProductosStockBajo)
	}
}

func TestGetInventoryFilters(t *testing.T) {
	router := newInventoryRouter(t, upstreamInventory())

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{"by term", "?busqueda=paraceta", []int64{1}},
		{"by code", "?busqueda=med002", []int64{2}},
		{"by group", "?grupo=44", []int64{2}},
		{"by low stock", "?stock=low", []int64{1}},
		{"term and group, no match", "?busqueda=paraceta&grupo=44", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventario"+tt.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}

			var resp models.InventoryResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			var ids []int64
			for _, p := range resp.Productos {
				ids = append(ids, p.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("expected products %v, got %v", tt.wantIDs, ids)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("expected products %v, got %v", tt.wantIDs, ids)
				}
			}
		})
	}
}

func TestGetInventoryFallback(t *testing.T) {
	router := newInventoryRouter(t, upstreamDown())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventario", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		models.InventoryResponse
		Fallback bool `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Fallback {
		t.Error("expected fallback to be flagged")
	}
	if resp.Message == "" {
		t.Error("expected a degradation message")
	}
	if len(resp.Productos) == 0 {
		t.Error("expected sample products when the backend is down")
	}
}

func TestGetGroups(t *testing.T) {
	router := newInventoryRouter(t, upstreamInventory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventario/grupos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp models.GroupsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Grupos) != 2 || resp.Grupos[0] != "20" {
		t.Errorf("unexpected groups: %v", resp.Grupos)
	}
	if resp.Message != "" {
		t.Errorf("expected no degradation message, got %q", resp.Message)
	}
}

func TestGetGroupsFallback(t *testing.T) {
	router := newInventoryRouter(t, upstreamDown())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventario/grupos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp models.GroupsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Grupos) == 0 {
		t.Error("expected the default groups when the backend is down")
	}
	if resp.Message == "" {
		t.Error("expected a degradation message")
	}
}

func TestGetOutboundProducts(t *testing.T) {
	router := newInventoryRouter(t, upstreamInventory())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ordenes-salida/productos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var productos []models.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &productos); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(productos) != 1 || productos[0].Codigo != "MED007" {
		t.Errorf("unexpected products: %+v", productos)
	}
}

func TestGetOutboundProductsBackendDown(t *testing.T) {
	router := newInventoryRouter(t, upstreamDown())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ordenes-salida/productos", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}
