package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type mockCatalog map[model.ID]model.Product

func (m mockCatalog) Product(id model.ID) (model.Product, bool) {
	p, ok := m[id]
	return p, ok
}

func oils() mockCatalog {
	return mockCatalog{
		1: {ID: 1, Name: "Oil A", CategoryID: 1, CategoryName: "Engine", WholesalePrice: 10.00, Unit: "can"},
		2: {ID: 2, Name: "Oil B", CategoryID: 2, CategoryName: "Gear", WholesalePrice: 20.00, Unit: "can"},
		3: {ID: 3, Name: "Filter", CategoryID: 3, CategoryName: "Filters", WholesalePrice: 0.1, Unit: "piece"},
	}
}

// flakyStore fails every Save while failing is set
type flakyStore struct {
	*MemoryStore
	failing bool
}

func (s *flakyStore) Save(ctx context.Context, slot string, payload []byte) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, slot, payload)
}

func newLedger(t *testing.T, store Store) *Ledger {
	t.Helper()
	return NewLedger(store, "cart", oils(), zaptest.NewLogger(t))
}

func TestLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("AddTwiceIncrementsOneLine", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())

		changed, err := l.Add(ctx, 1)
		require.NoError(t, err)
		require.True(t, changed)
		_, err = l.Add(ctx, 1)
		require.NoError(t, err)

		items := l.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	})

	t.Run("ScenarioTotals", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		for _, id := range []model.ID{1, 1, 2} {
			_, err := l.Add(ctx, id)
			require.NoError(t, err)
		}

		items := l.Items()
		require.Len(t, items, 2)
		assert.Equal(t, model.ID(1), items[0].ProductID)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, 20.00, items[0].Subtotal())
		assert.Equal(t, model.ID(2), items[1].ProductID)
		assert.Equal(t, 1, items[1].Quantity)
		assert.Equal(t, 20.00, items[1].Subtotal())
		assert.Equal(t, 40.00, l.TotalPrice())
		assert.Equal(t, 3, l.TotalItemCount())
	})

	t.Run("UnknownProductIsNoop", func(t *testing.T) {
		store := NewMemoryStore()
		l := newLedger(t, store)

		changed, err := l.Add(ctx, 99)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, l.Len())

		_, err = store.Load(ctx, "cart")
		assert.ErrorIs(t, err, ErrSlotEmpty)
	})

	t.Run("SnapshotIsTakenAtAddTime", func(t *testing.T) {
		catalog := oils()
		l := NewLedger(NewMemoryStore(), "cart", catalog, zaptest.NewLogger(t))
		_, err := l.Add(ctx, 1)
		require.NoError(t, err)

		catalog[1] = model.Product{ID: 1, Name: "Oil A v2", WholesalePrice: 99}
		_, err = l.Add(ctx, 1)
		require.NoError(t, err)

		item, ok := l.Item(1)
		require.True(t, ok)
		assert.Equal(t, "Oil A", item.Name)
		assert.Equal(t, 10.00, item.Price)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("AdjustToZeroRemoves", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		for i := 0; i < 3; i++ {
			_, err := l.Add(ctx, 2)
			require.NoError(t, err)
		}

		changed, err := l.Adjust(ctx, 2, -3)
		require.NoError(t, err)
		assert.True(t, changed)
		_, ok := l.Item(2)
		assert.False(t, ok)
		assert.Zero(t, l.TotalItemCount())
	})

	t.Run("AdjustBelowZeroRemoves", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		_, err := l.Add(ctx, 2)
		require.NoError(t, err)

		_, err = l.Adjust(ctx, 2, -5)
		require.NoError(t, err)
		assert.Zero(t, l.Len())
	})

	t.Run("AdjustIncrements", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		_, err := l.Add(ctx, 3)
		require.NoError(t, err)

		_, err = l.Adjust(ctx, 3, 4)
		require.NoError(t, err)
		item, _ := l.Item(3)
		assert.Equal(t, 5, item.Quantity)
		assert.Equal(t, 0.5, l.TotalPrice())
	})

	t.Run("AdjustMissingIsNoop", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		changed, err := l.Adjust(ctx, 1, 1)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, l.Len())
	})

	t.Run("RemoveKeepsOrder", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		for _, id := range []model.ID{1, 2, 3} {
			_, err := l.Add(ctx, id)
			require.NoError(t, err)
		}

		changed, err := l.Remove(ctx, 2)
		require.NoError(t, err)
		assert.True(t, changed)

		items := l.Items()
		require.Len(t, items, 2)
		assert.Equal(t, model.ID(1), items[0].ProductID)
		assert.Equal(t, model.ID(3), items[1].ProductID)

		changed, err = l.Remove(ctx, 2)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("TotalPriceRoundsToCents", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		for i := 0; i < 3; i++ {
			_, err := l.Add(ctx, 3)
			require.NoError(t, err)
		}
		// 0.1 * 3 is 0.30000000000000004 in floating point
		assert.Equal(t, 0.3, l.TotalPrice())
	})

	t.Run("ItemsReturnsCopy", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		_, err := l.Add(ctx, 1)
		require.NoError(t, err)

		items := l.Items()
		items[0].Quantity = 50
		item, _ := l.Item(1)
		assert.Equal(t, 1, item.Quantity)
	})
}

func TestLedgerPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		store := NewMemoryStore()
		l := newLedger(t, store)
		for _, id := range []model.ID{2, 1, 2, 3} {
			_, err := l.Add(ctx, id)
			require.NoError(t, err)
		}

		restored := newLedger(t, store)
		restored.Restore(ctx)
		assert.Equal(t, l.Items(), restored.Items())
	})

	t.Run("EveryMutationIsSaved", func(t *testing.T) {
		store := NewMemoryStore()
		l := newLedger(t, store)

		_, err := l.Add(ctx, 1)
		require.NoError(t, err)
		raw, err := store.Load(ctx, "cart")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"name":"Oil A","price":10,"category":"Engine","unit":"can","quantity":1}]`, string(raw))

		_, err = l.Adjust(ctx, 1, -1)
		require.NoError(t, err)
		raw, err = store.Load(ctx, "cart")
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("FailedSaveLeavesLedgerUnchanged", func(t *testing.T) {
		store := &flakyStore{MemoryStore: NewMemoryStore()}
		l := newLedger(t, store)
		_, err := l.Add(ctx, 1)
		require.NoError(t, err)

		store.failing = true
		_, err = l.Add(ctx, 1)
		require.ErrorIs(t, err, ErrPersist)
		_, err = l.Remove(ctx, 1)
		require.ErrorIs(t, err, ErrPersist)

		item, ok := l.Item(1)
		require.True(t, ok)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("MissingSlotRestoresEmpty", func(t *testing.T) {
		l := newLedger(t, NewMemoryStore())
		l.Restore(ctx)
		assert.Zero(t, l.Len())
	})

	t.Run("CorruptSlotRestoresEmpty", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "cart", []byte("{not json")))

		l := newLedger(t, store)
		l.Restore(ctx)
		assert.Zero(t, l.Len())
	})

	t.Run("RestoreMergesDuplicateLines", func(t *testing.T) {
		store := NewMemoryStore()
		payload := `[{"id":1,"name":"Oil A","price":10,"quantity":1},{"id":"1","name":"Oil A","price":10,"quantity":2},{"id":2,"name":"Oil B","price":20,"quantity":0}]`
		require.NoError(t, store.Save(ctx, "cart", []byte(payload)))

		l := newLedger(t, store)
		l.Restore(ctx)
		items := l.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)

		raw, err := store.Load(ctx, "cart")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"name":"Oil A","price":10,"category":"","unit":"","quantity":3}]`, string(raw))
	})

	t.Run("CleanSlotIsNotRewritten", func(t *testing.T) {
		store := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
		payload := `[{"id":1,"name":"Oil A","price":10,"quantity":2}]`
		require.NoError(t, store.MemoryStore.Save(ctx, "cart", []byte(payload)))

		l := newLedger(t, store)
		l.Restore(ctx)
		assert.Equal(t, 2, l.TotalItemCount())
		raw, err := store.Load(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, payload, string(raw))
	})

	t.Run("NormalizedSaveFailureKeepsLines", func(t *testing.T) {
		store := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
		payload := `[{"id":1,"price":10,"quantity":1},{"id":1,"price":10,"quantity":1}]`
		require.NoError(t, store.MemoryStore.Save(ctx, "cart", []byte(payload)))

		l := newLedger(t, store)
		l.Restore(ctx)
		require.Equal(t, 1, l.Len())
		assert.Equal(t, 2, l.TotalItemCount())
	})

	t.Run("LogsWithRequestLogger", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		reqCtx := logger.WithContext(ctx, zap.New(core).With(zap.String("request_id", "req-1")))

		l := newLedger(t, NewMemoryStore())
		changed, err := l.Add(reqCtx, 404)
		require.NoError(t, err)
		assert.False(t, changed)

		entries := logs.FilterMessage("Add to cart ignored, unknown product").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "carts")

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Load(ctx, "cart")
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, store.Save(ctx, "cart", []byte(`[1]`)))
	require.NoError(t, store.Save(ctx, "cart", []byte(`[2]`)))

	data, err := store.Load(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	assert.Error(t, store.Save(ctx, "../escape", []byte(`[]`)))

	l := NewLedger(store, "cart", oils(), zaptest.NewLogger(t))
	_, err = l.Add(ctx, 2)
	require.NoError(t, err)
	again := NewLedger(store, "cart", oils(), zaptest.NewLogger(t))
	again.Restore(ctx)
	assert.Equal(t, l.Items(), again.Items())
}
