package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"

	"go.uber.org/zap"
)

// ErrPersist wraps failures to save the ledger
var ErrPersist = errors.New("failed to persist cart")

// Catalog resolves product ids for Add
type Catalog interface {
	Product(id model.ID) (model.Product, bool)
}

// Ledger holds the cart lines. Every mutation is saved before it becomes
// visible, so the in-memory lines always equal the last successful save.
// Not safe for concurrent use.
type Ledger struct {
	store   Store
	slot    string
	catalog Catalog
	log     *zap.Logger

	items []model.CartItem
}

func NewLedger(store Store, slot string, catalog Catalog, log *zap.Logger) *Ledger {
	return &Ledger{
		store:   store,
		slot:    slot,
		catalog: catalog,
		log:     log,
		items:   []model.CartItem{},
	}
}

// Restore replaces the lines with the saved slot. Missing or unreadable data
// yields an empty ledger and leaves the slot as it is. Duplicate lines are
// merged and empty ones dropped, and the result is saved back.
func (l *Ledger) Restore(ctx context.Context) {
	l.items = []model.CartItem{}

	data, err := l.store.Load(ctx, l.slot)
	if errors.Is(err, ErrSlotEmpty) {
		return
	}
	if err != nil {
		l.logFor(ctx).Warn("Failed to read saved cart, starting empty", zap.String("slot", l.slot), zap.Error(err))
		return
	}

	var items []model.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		l.logFor(ctx).Warn("Saved cart is unreadable, starting empty", zap.String("slot", l.slot), zap.Error(err))
		return
	}

	// merge duplicates and drop empty lines so the one-line-per-product rule holds
	restored := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i := indexOf(restored, it.ProductID); i >= 0 {
			restored[i].Quantity += it.Quantity
			continue
		}
		restored = append(restored, it)
	}
	l.items = restored
	l.logFor(ctx).Debug("Cart restored", zap.String("slot", l.slot), zap.Int("lines", len(restored)))

	// every merge or drop shortens the list; write the cleaned lines back
	if len(restored) != len(items) {
		if err := l.commit(ctx, restored); err != nil {
			l.logFor(ctx).Warn("Failed to save normalized cart", zap.String("slot", l.slot), zap.Error(err))
		}
	}
}

// Add puts one unit of the product in the cart. It reports false, without
// error, when the product is not in the catalog.
func (l *Ledger) Add(ctx context.Context, id model.ID) (bool, error) {
	product, ok := l.catalog.Product(id)
	if !ok {
		l.logFor(ctx).Debug("Add to cart ignored, unknown product", zap.Stringer("product_id", id))
		return false, nil
	}

	next := l.Items()
	if i := indexOf(next, id); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, model.NewCartItem(product))
	}
	return true, l.commit(ctx, next)
}

// Remove deletes the line for id. It reports false when there is none.
func (l *Ledger) Remove(ctx context.Context, id model.ID) (bool, error) {
	i := indexOf(l.items, id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(l.Items(), i, i+1)
	return true, l.commit(ctx, next)
}

// Adjust adds delta to the line quantity and removes the line when it drops to zero or below
func (l *Ledger) Adjust(ctx context.Context, id model.ID, delta int) (bool, error) {
	i := indexOf(l.items, id)
	if i < 0 {
		return false, nil
	}
	if l.items[i].Quantity+delta <= 0 {
		return l.Remove(ctx, id)
	}
	next := l.Items()
	next[i].Quantity += delta
	return true, l.commit(ctx, next)
}

func (l *Ledger) commit(ctx context.Context, next []model.CartItem) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := l.store.Save(ctx, l.slot, payload); err != nil {
		l.logFor(ctx).Error("Failed to save cart", zap.String("slot", l.slot), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	l.items = next
	return nil
}

// Items returns a copy of the lines in insertion order
func (l *Ledger) Items() []model.CartItem {
	return slices.Clone(l.items)
}

func (l *Ledger) Len() int { return len(l.items) }

// Item returns the line for id
func (l *Ledger) Item(id model.ID) (model.CartItem, bool) {
	i := indexOf(l.items, id)
	if i < 0 {
		return model.CartItem{}, false
	}
	return l.items[i], true
}

// TotalItemCount is the sum of all quantities
func (l *Ledger) TotalItemCount() int {
	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of price*quantity rounded to cents
func (l *Ledger) TotalPrice() float64 {
	return Total(l.items)
}

// Total sums price*quantity over items, rounded to cents
func Total(items []model.CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return model.RoundCents(sum)
}

// logFor prefers the request logger carried by ctx
func (l *Ledger) logFor(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, l.log)
}

func indexOf(items []model.CartItem, id model.ID) int {
	return slices.IndexFunc(items, func(it model.CartItem) bool { return it.ProductID == id })
}
