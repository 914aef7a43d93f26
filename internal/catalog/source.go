package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"storefront-service/internal/model"
)

// Source fetches the raw catalog document
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// HTTPSource fetches the catalog from a URL
type HTTPSource struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPSource creates an HTTP source with the given request timeout
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET and fails on any non-2xx status
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog source responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return body, nil
}

func (s *HTTPSource) String() string { return s.URL }

// FileSource reads the catalog from a local file
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return data, nil
}

func (s FileSource) String() string { return s.Path }

var (
	errMissingProducts   = errors.New("catalog document has no products key")
	errMissingCategories = errors.New("catalog document has no categories key")
	errDuplicateProduct  = errors.New("duplicate product id")
	errNegativePrice     = errors.New("negative wholesale price")
)

// Decode parses and validates a catalog document
func Decode(data []byte) ([]model.Product, []model.Category, error) {
	var doc model.CatalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("malformed catalog document: %w", err)
	}
	if doc.Products == nil {
		return nil, nil, errMissingProducts
	}
	if doc.Categories == nil {
		return nil, nil, errMissingCategories
	}

	products := *doc.Products
	seen := make(map[model.ID]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %s", errDuplicateProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.WholesalePrice < 0 {
			return nil, nil, fmt.Errorf("%w: product %s", errNegativePrice, p.ID)
		}
	}

	return products, *doc.Categories, nil
}
