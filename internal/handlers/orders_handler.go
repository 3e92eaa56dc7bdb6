package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/beneficencia/almacen/internal/backend"
	"github.com/go-chi/chi/v5"
)

// OrdersHandler proxies outbound order actions and report downloads to the
// warehouse backend.
type OrdersHandler struct {
	backend *backend.Client
	log     *slog.Logger
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(backend *backend.Client, log *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		backend: backend,
		log:     log,
	}
}

// DeleteOutboundOrder handles DELETE /ordenes-salida/eliminar/{id}
func (h *OrdersHandler) DeleteOutboundOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "ID de orden inválido", h.log)
		return
	}

	result, err := h.backend.DeleteOutboundOrder(r.Context(), id)
	if err != nil {
		h.log.Error("outbound order delete failed", "order_id", id, "error", err)
		WriteFailure(w, http.StatusBadGateway, "No se pudo contactar al servidor de almacén", h.log)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, result, h.log)
}

// DownloadInventoryReport handles GET /descargar-inventario-completo
func (h *OrdersHandler) DownloadInventoryReport(w http.ResponseWriter, r *http.Request) {
	dl, err := h.backend.DownloadInventoryReport(r.Context())
	if err != nil {
		h.writeDownloadError(w, err)
		return
	}
	h.streamDownload(w, dl)
}

// PrintOutboundOrder handles GET /ordenes-salida/imprimir/{numeroOrden}
func (h *OrdersHandler) PrintOutboundOrder(w http.ResponseWriter, r *http.Request) {
	numeroOrden := chi.URLParam(r, "numeroOrden")

	dl, err := h.backend.PrintOutboundOrder(r.Context(), numeroOrden)
	if err != nil {
		h.writeDownloadError(w, err)
		return
	}
	h.streamDownload(w, dl)
}

func (h *OrdersHandler) streamDownload(w http.ResponseWriter, dl *backend.Download) {
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename})

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	if _, err := io.Copy(w, dl.Body); err != nil {
		h.log.Error("download stream interrupted", "filename", dl.Filename, "error", err)
	}
}

func (h *OrdersHandler) writeDownloadError(w http.ResponseWriter, err error) {
	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) {
		h.log.Error("backend download failed", "error", err)
		WriteError(w, http.StatusBadGateway, "No se pudo descargar el archivo del servidor de almacén", h.log)
		return
	}
	WriteError(w, http.StatusInternalServerError, "Error interno", h.log)
}
