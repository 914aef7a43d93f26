package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"storefront-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotEmpty is returned by Store.Load when nothing was saved under the slot
var ErrSlotEmpty = errors.New("cart slot is empty")

// Store persists a serialized ledger under a named slot
type Store interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, payload []byte) error
}

// MemoryStore keeps slots in process memory
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, slot string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.slots[slot]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Save(_ context.Context, slot string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), payload...)
	return nil
}

var slotName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore writes each slot to <dir>/<slot>.json
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(slot string) (string, error) {
	if !slotName.MatchString(slot) {
		return "", fmt.Errorf("invalid cart slot name %q", slot)
	}
	return filepath.Join(s.Dir, slot+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, slot string) ([]byte, error) {
	p, err := s.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	return data, err
}

// Save replaces the slot file atomically
func (s *FileStore) Save(ctx context.Context, slot string, payload []byte) error {
	p, err := s.path(slot)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, slot+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// GormStore keeps slots in the cart_slots table
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, slot string) ([]byte, error) {
	var row model.CartSlot
	err := findSlot(s.db.WithContext(ctx), slot, &row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Payload), nil
}

// Save inserts the slot or overwrites its payload
func (s *GormStore) Save(ctx context.Context, slot string, payload []byte) error {
	row := model.CartSlot{Name: slot, Payload: string(payload)}
	return upsertSlot(s.db.WithContext(ctx), &row).Error
}

func findSlot(tx *gorm.DB, slot string, row *model.CartSlot) *gorm.DB {
	return tx.Where("name = ?", slot).First(row)
}

func upsertSlot(tx *gorm.DB, row *model.CartSlot) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(row)
}
