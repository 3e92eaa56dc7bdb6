package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/beneficencia/almacen/internal/catalog"
	"github.com/beneficencia/almacen/internal/orderform"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrUnknownOrderKind = errors.New("unknown order kind")
)

// Order kinds and where each one is submitted on the backend.
const (
	OrderKindAbastecimiento = "abastecimiento"
	OrderKindCompra         = "compra"
)

var submitPaths = map[string]string{
	OrderKindAbastecimiento: "/ordenes-abastecimiento/guardar",
	OrderKindCompra:         "/ordenes-compra/guardar",
}

// OrderSubmitter forwards a validated form to the warehouse backend.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, path string, form url.Values) error
}

// inventoryProvider supplies the product listing a draft's price table is
// built from.
type inventoryProvider interface {
	Inventory(ctx context.Context) *InventoryView
}

type draft struct {
	form    *orderform.Form
	kind    string
	touched time.Time
}

// DraftService owns the live order forms. A draft is created when an order
// page opens, mutated by the form events, and discarded on submit; idle
// drafts are expired by the sweeper, mirroring a page view being abandoned.
type DraftService struct {
	products  inventoryProvider
	submitter OrderSubmitter
	ttl       time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	drafts map[string]*draft
	now    func() time.Time
}

// NewDraftService creates a draft service. ttl bounds how long an untouched
// draft stays alive.
func NewDraftService(products inventoryProvider, submitter OrderSubmitter, ttl time.Duration, log *slog.Logger) *DraftService {
	if log == nil {
		log = slog.Default()
	}
	return &DraftService{
		products:  products,
		submitter: submitter,
		ttl:       ttl,
		log:       log,
		drafts:    make(map[string]*draft),
		now:       time.Now,
	}
}

// Create opens a new draft of the given kind. The product price table is
// snapshotted from the current inventory, the way the order pages embed it
// once at page load. An empty kind defaults to a supply order.
func (s *DraftService) Create(ctx context.Context, kind string) (string, orderform.Snapshot, error) {
	if kind == "" {
		kind = OrderKindAbastecimiento
	}
	if _, ok := submitPaths[kind]; !ok {
		return "", orderform.Snapshot{}, ErrUnknownOrderKind
	}

	view := s.products.Inventory(ctx)
	table := catalog.NewTable(view.Productos)
	form := orderform.New(table, s.log)

	id := uuid.New().String()

	s.mu.Lock()
	s.drafts[id] = &draft{form: form, kind: kind, touched: s.now()}
	s.mu.Unlock()

	s.log.Info("order draft created", "draft_id", id, "kind", kind, "catalog_size", table.Len())
	return id, form.Snapshot(), nil
}

// Get returns the current snapshot of a draft.
func (s *DraftService) Get(draftID string) (orderform.Snapshot, error) {
	d, err := s.lookup(draftID)
	if err != nil {
		return orderform.Snapshot{}, err
	}
	return d.form.Snapshot(), nil
}

// AddItem appends a new empty item to a draft.
func (s *DraftService) AddItem(draftID string) (orderform.Item, orderform.Snapshot, error) {
	d, err := s.lookup(draftID)
	if err != nil {
		return orderform.Item{}, orderform.Snapshot{}, err
	}
	item, err := d.form.AddItem()
	if err != nil {
		return orderform.Item{}, orderform.Snapshot{}, err
	}
	return item, d.form.Snapshot(), nil
}

// UpdateItemInput carries a partial update to one line item. Nil fields are
// left untouched.
type UpdateItemInput struct {
	ProductoID *string
	Cantidad   *int
	Precio     *decimal.Decimal
}

// UpdateItem applies the given field changes to one item. The product
// selection is applied first so an explicit price in the same update
// overrides the auto-filled one, like a manual edit after the selection.
func (s *DraftService) UpdateItem(draftID, itemID string, input UpdateItemInput) (orderform.Snapshot, error) {
	d, err := s.lookup(draftID)
	if err != nil {
		return orderform.Snapshot{}, err
	}

	if input.ProductoID != nil {
		if err := d.form.SelectProduct(itemID, *input.ProductoID); err != nil {
			return orderform.Snapshot{}, err
		}
	}
	if input.Cantidad != nil {
		if err := d.form.SetQuantity(itemID, *input.Cantidad); err != nil {
			return orderform.Snapshot{}, err
		}
	}
	if input.Precio != nil {
		if err := d.form.SetUnitPrice(itemID, *input.Precio); err != nil {
			return orderform.Snapshot{}, err
		}
	}
	return d.form.Snapshot(), nil
}

// RemoveItem removes an item from a draft. A positive delay defers the
// removal for fade-out sequencing; the returned snapshot then still shows
// the item.
func (s *DraftService) RemoveItem(draftID, itemID string, delay time.Duration) (orderform.Snapshot, error) {
	d, err := s.lookup(draftID)
	if err != nil {
		return orderform.Snapshot{}, err
	}

	if delay > 0 {
		d.form.RemoveItemAfter(itemID, delay)
		return d.form.Snapshot(), nil
	}
	if err := d.form.RemoveItem(itemID); err != nil {
		return orderform.Snapshot{}, err
	}
	return d.form.Snapshot(), nil
}

// Submit validates a draft and forwards it to the backend. The draft is
// discarded on success and kept untouched on any failure so the user can
// correct and retry.
func (s *DraftService) Submit(ctx context.Context, draftID string) error {
	d, err := s.lookup(draftID)
	if err != nil {
		return err
	}

	if err := d.form.Validate(); err != nil {
		return err
	}
	if err := s.submitter.SubmitOrder(ctx, submitPaths[d.kind], d.form.FormValues()); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()

	s.log.Info("order draft submitted", "draft_id", draftID, "kind", d.kind)
	return nil
}

// Sweep drops drafts that have been idle longer than the TTL and returns
// how many were removed.
func (s *DraftService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.drafts {
		if d.touched.Before(cutoff) {
			delete(s.drafts, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("expired order drafts swept", "count", removed)
	}
	return removed
}

// Run sweeps expired drafts on the given interval until ctx is cancelled.
func (s *DraftService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *DraftService) lookup(draftID string) (*draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.touched = s.now()
	return d, nil
}
