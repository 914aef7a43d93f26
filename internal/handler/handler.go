package handler

import (
	"errors"
	"net/http"

	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
	"storefront-service/internal/storefront"

	"github.com/labstack/echo/v4"
)

// Handler exposes the storefront controller over HTTP
type Handler struct {
	store *storefront.Controller
}

func New(store *storefront.Controller) *Handler {
	return &Handler{store: store}
}

// Register mounts every storefront route on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")

	api.GET("/catalog", h.CatalogStatus)
	api.POST("/catalog/reload", h.ReloadCatalog)
	api.GET("/categories", h.ListCategories)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	api.GET("/view", h.GetView)
	api.PUT("/view/category", h.SetCategory)
	api.PUT("/view/sort", h.SetSort)
	api.POST("/view/more", h.LoadMore)

	api.GET("/search", h.Search)
	api.POST("/search/:id/select", h.SelectSearchResult)

	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PATCH("/cart/items/:id", h.AdjustCartItem)
	api.DELETE("/cart/items/:id", h.RemoveCartItem)

	api.POST("/checkout", h.Checkout)
}

// Health reports liveness
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// catalogError maps engine errors to responses
func catalogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotLoaded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "Catalog is still loading",
			"state": catalog.StateLoading.String(),
		})
	case errors.Is(err, catalog.ErrLoadFailed):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "Failed to load catalog",
			"cause": err.Error(),
			"state": catalog.StateFailed.String(),
			"retry": "/api/catalog/reload",
		})
	case errors.Is(err, storefront.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "Internal error",
	})
}

func paramID(c echo.Context) (model.ID, error) {
	return model.ParseID(c.Param("id"))
}
