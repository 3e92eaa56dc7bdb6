package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/beneficencia/almacen/internal/backend"
	"github.com/beneficencia/almacen/internal/orderform"
	"github.com/beneficencia/almacen/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// DraftHandler exposes the order form engine over HTTP: one draft per open
// order page, with the add/update/remove item events and the final submit.
type DraftHandler struct {
	drafts *service.DraftService
	log    *slog.Logger
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(drafts *service.DraftService, log *slog.Logger) *DraftHandler {
	return &DraftHandler{
		drafts: drafts,
		log:    log,
	}
}

// CreateDraftRequest selects which kind of order the draft is for.
type CreateDraftRequest struct {
	Tipo string `json:"tipo" validate:"omitempty,oneof=abastecimiento compra"`
}

// UpdateItemRequest carries a partial update to one line item. Out-of-range
// quantities and prices are clamped to the form bounds, matching how the
// order form inputs behave.
type UpdateItemRequest struct {
	ProductoID *string          `json:"productoId"`
	Cantidad   *int             `json:"cantidad"`
	Precio     *decimal.Decimal `json:"precio"`
}

type draftResponse struct {
	ID string `json:"id"`
	orderform.Snapshot
}

// CreateDraft handles POST /api/ordenes/borradores
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	id, snap, err := h.drafts.Create(r.Context(), req.Tipo)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, draftResponse{ID: id, Snapshot: snap}, h.log)
}

// GetDraft handles GET /api/ordenes/borradores/{draftId}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftId")

	snap, err := h.drafts.Get(draftID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, draftResponse{ID: draftID, Snapshot: snap}, h.log)
}

// AddItem handles POST /api/ordenes/borradores/{draftId}/items
func (h *DraftHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftId")

	item, snap, err := h.drafts.AddItem(draftID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"item":         item,
		"items":        snap.Items,
		"total":        snap.Total,
		"itemsValidos": snap.ValidItems,
	}, h.log)
}

// UpdateItem handles PUT /api/ordenes/borradores/{draftId}/items/{itemId}
func (h *DraftHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftId")
	itemID := chi.URLParam(r, "itemId")

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	snap, err := h.drafts.UpdateItem(draftID, itemID, service.UpdateItemInput{
		ProductoID: req.ProductoID,
		Cantidad:   req.Cantidad,
		Precio:     req.Precio,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, draftResponse{ID: draftID, Snapshot: snap}, h.log)
}

// RemoveItem handles DELETE /api/ordenes/borradores/{draftId}/items/{itemId}
// An optional delay_ms query parameter defers the removal, used by the UI
// for its fade-out animation.
func (h *DraftHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftId")
	itemID := chi.URLParam(r, "itemId")

	var delay time.Duration
	if raw := r.URL.Query().Get("delay_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			WriteError(w, http.StatusBadRequest, "delay_ms inválido", h.log)
			return
		}
		delay = time.Duration(ms) * time.Millisecond
	}

	snap, err := h.drafts.RemoveItem(draftID, itemID, delay)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, draftResponse{ID: draftID, Snapshot: snap}, h.log)
}

// SubmitDraft handles POST /api/ordenes/borradores/{draftId}/enviar
func (h *DraftHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftId")

	if err := h.drafts.Submit(r.Context(), draftID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.log.Info("order submitted", "draft_id", draftID)
	WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true}, h.log)
}

func (h *DraftHandler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *orderform.ValidationError
	var reqErr *backend.RequestError

	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		WriteError(w, http.StatusNotFound, "Borrador de orden no encontrado", h.log)
	case errors.Is(err, orderform.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, "Item no encontrado", h.log)
	case errors.Is(err, orderform.ErrItemLimit):
		WriteError(w, http.StatusConflict, "Máximo 50 productos por orden", h.log)
	case errors.Is(err, service.ErrUnknownOrderKind):
		WriteError(w, http.StatusBadRequest, "Tipo de orden desconocido", h.log)
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   verr.Error(),
			"errores": verr.Reasons,
		}, h.log)
	case errors.As(err, &reqErr):
		h.log.Error("backend request failed", "error", err)
		WriteError(w, http.StatusBadGateway, "No se pudo contactar al servidor de almacén", h.log)
	default:
		h.log.Error("unexpected draft error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Error interno", h.log)
	}
}
