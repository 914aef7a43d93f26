package handler

import (
	"net/http"

	"storefront-service/internal/catalog"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ViewRequest carries one view change
type ViewRequest struct {
	Category string `json:"category"`
	Sort     string `json:"sort"`
}

// CatalogStatus reports whether the catalog is loading, ready or failed
func (h *Handler) CatalogStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Status())
}

// ReloadCatalog is the manual retry after a failed load
func (h *Handler) ReloadCatalog(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Reloading catalog")

	if err := h.store.Reload(c.Request().Context()); err != nil {
		log.Warn("Catalog reload failed", zap.Error(err))
		return catalogError(c, err)
	}

	status := h.store.Status()
	log.Info("Catalog reloaded",
		zap.Int("products", status.Products),
		zap.Int("categories", status.Categories))
	return c.JSON(http.StatusOK, status)
}

// ListCategories returns every category with its product count
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.store.Categories()
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// ListProducts returns the visible page of the current view
func (h *Handler) ListProducts(c echo.Context) error {
	page, err := h.store.Page()
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"view": h.store.View(),
		"page": page,
	})
}

// GetProduct returns one product
func (h *Handler) GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := paramID(c)
	if err != nil {
		log.Warn("Invalid product id", zap.String("product_id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid product id",
		})
	}

	product, err := h.store.Product(id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetView returns the current filter, sort and page
func (h *Handler) GetView(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.View())
}

// SetCategory applies a category filter
func (h *Handler) SetCategory(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ViewRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	filter, err := catalog.ParseCategoryFilter(req.Category)
	if err != nil {
		log.Warn("Invalid category filter", zap.String("category", req.Category))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "category must be \"all\" or a category id",
		})
	}

	page, err := h.store.SetCategory(filter)
	if err != nil {
		return catalogError(c, err)
	}
	log.Info("Category filter applied",
		zap.Stringer("category", filter),
		zap.Int("total", page.Total))
	return c.JSON(http.StatusOK, echo.Map{
		"view": h.store.View(),
		"page": page,
	})
}

// SetSort applies a sort order
func (h *Handler) SetSort(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ViewRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	order, err := catalog.ParseSortOrder(req.Sort)
	if err != nil {
		log.Warn("Invalid sort order", zap.String("sort", req.Sort))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	page, err := h.store.SetSort(order)
	if err != nil {
		return catalogError(c, err)
	}
	log.Info("Sort order applied", zap.String("sort", string(order)))
	return c.JSON(http.StatusOK, echo.Map{
		"view": h.store.View(),
		"page": page,
	})
}

// LoadMore reveals the next page
func (h *Handler) LoadMore(c echo.Context) error {
	page, err := h.store.LoadMore()
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"view": h.store.View(),
		"page": page,
	})
}
