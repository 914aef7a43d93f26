package cart

import (
	"context"
	"os"
	"testing"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without opening a connection
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=storefront sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestGormStoreStatements(t *testing.T) {
	db := dryRunDB(t)

	t.Run("SaveUpsertsOnName", func(t *testing.T) {
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			return upsertSlot(tx, &model.CartSlot{Name: "cart", Payload: `[]`})
		})
		assert.Contains(t, sql, `INSERT INTO "cart_slots"`)
		assert.Contains(t, sql, `ON CONFLICT ("name") DO UPDATE SET`)
		assert.Contains(t, sql, `"payload"="excluded"."payload"`)
		assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
	})

	t.Run("LoadSelectsOneSlot", func(t *testing.T) {
		sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			var row model.CartSlot
			return findSlot(tx, "cart", &row)
		})
		assert.Contains(t, sql, `FROM "cart_slots"`)
		assert.Contains(t, sql, `WHERE name = 'cart'`)
		assert.Contains(t, sql, `LIMIT 1`)
	})
}

func TestGormStore(t *testing.T) {
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set")
	}
	ctx := context.Background()

	cfg, err := config.FromEnv("storefront-service")
	require.NoError(t, err)
	db, err := database.InitDB(&cfg.DB, zaptest.NewLogger(t), &model.CartSlot{})
	require.NoError(t, err)

	slot := "test-" + uuid.NewString()
	t.Cleanup(func() {
		db.Where("name = ?", slot).Delete(&model.CartSlot{})
	})

	store := NewGormStore(db)
	_, err = store.Load(ctx, slot)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, store.Save(ctx, slot, []byte(`[1]`)))
	require.NoError(t, store.Save(ctx, slot, []byte(`[2]`)))

	data, err := store.Load(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	var count int64
	require.NoError(t, db.Model(&model.CartSlot{}).Where("name = ?", slot).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
