package catalog

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"

	"go.uber.org/zap"
)

// LoadState is the lifecycle of the catalog
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrLoadFailed wraps every catalog load failure
	ErrLoadFailed = errors.New("catalog load failed")
	// ErrNotLoaded is returned when the catalog is consumed before a successful load
	ErrNotLoaded = errors.New("catalog not loaded")
)

// Store holds the products and categories. It is not safe for concurrent
// use; the storefront controller serialises access.
type Store struct {
	log *zap.Logger

	state      LoadState
	lastErr    error
	products   []model.Product
	categories []model.Category
	byID       map[model.ID]int
}

func NewStore(log *zap.Logger) *Store {
	return &Store{log: log}
}

// Load fetches and decodes the catalog. On failure the store keeps no
// products and stays in StateFailed until the next Load.
func (s *Store) Load(ctx context.Context, src Source) error {
	s.state = StateLoading
	s.lastErr = nil
	log := logger.FromContext(ctx, s.log)

	data, err := src.Fetch(ctx)
	if err == nil {
		var products []model.Product
		var categories []model.Category
		products, categories, err = Decode(data)
		if err == nil {
			s.set(products, categories)
			log.Info("Catalog loaded",
				zap.String("source", src.String()),
				zap.Int("products", len(products)),
				zap.Int("categories", len(categories)))
			return nil
		}
	}

	s.products, s.categories, s.byID = nil, nil, nil
	s.state = StateFailed
	s.lastErr = fmt.Errorf("%w: %w", ErrLoadFailed, err)
	log.Error("Failed to load catalog",
		zap.String("source", src.String()),
		zap.Error(err))
	return s.lastErr
}

func (s *Store) set(products []model.Product, categories []model.Category) {
	s.products = products
	s.categories = categories
	s.byID = make(map[model.ID]int, len(products))
	for i, p := range products {
		s.byID[p.ID] = i
	}
	s.state = StateReady
}

func (s *Store) State() LoadState { return s.state }

// Err is the cause of the last failed load
func (s *Store) Err() error { return s.lastErr }

// Ready returns nil when products can be consumed, otherwise why not
func (s *Store) Ready() error {
	switch s.state {
	case StateReady:
		return nil
	case StateFailed:
		return s.lastErr
	default:
		return ErrNotLoaded
	}
}

// Products returns the catalog in insertion order. Callers must not modify it.
func (s *Store) Products() []model.Product { return s.products }

func (s *Store) Categories() []model.Category { return s.categories }

// Product looks up a product by id. It reports false when absent or when the catalog is not ready.
func (s *Store) Product(id model.ID) (model.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return s.products[i], true
}

// CategoryCount pairs a category with the number of products in it
type CategoryCount struct {
	model.Category
	Count int `json:"count"`
}

// CategoryCounts lists every category, in catalog order, with its product count
func (s *Store) CategoryCounts() []CategoryCount {
	counts := make(map[model.ID]int, len(s.categories))
	for _, p := range s.products {
		counts[p.CategoryID]++
	}
	out := make([]CategoryCount, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c.ID]})
	}
	return out
}
