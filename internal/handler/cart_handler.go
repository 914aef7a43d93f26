package handler

import (
	"net/http"

	"storefront-service/internal/model"
	"storefront-service/internal/storefront"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AddItemRequest identifies the product to add
type AddItemRequest struct {
	ProductID model.ID `json:"product_id"`
}

// AdjustItemRequest changes a line quantity by Delta
type AdjustItemRequest struct {
	Delta int `json:"delta"`
}

type cartResponse struct {
	storefront.CartSummary
	Changed bool `json:"changed"`
}

// GetCart returns the cart lines and totals
func (h *Handler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Cart())
}

// AddCartItem adds one unit of a product. Unknown products are ignored.
func (h *Handler) AddCartItem(c echo.Context) error {
	log := logger.FromEcho(c)

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	summary, changed, err := h.store.AddToCart(c.Request().Context(), req.ProductID)
	if err != nil {
		log.Error("Failed to add to cart",
			zap.Stringer("product_id", req.ProductID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to save cart",
		})
	}

	log.Info("Add to cart",
		zap.Stringer("product_id", req.ProductID),
		zap.Bool("changed", changed),
		zap.Int("count", summary.Count))
	return c.JSON(http.StatusOK, cartResponse{CartSummary: summary, Changed: changed})
}

// AdjustCartItem changes the quantity of a line; reaching zero removes it
func (h *Handler) AdjustCartItem(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid product id",
		})
	}

	var req AdjustItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	summary, changed, err := h.store.AdjustQuantity(c.Request().Context(), id, req.Delta)
	if err != nil {
		log.Error("Failed to adjust cart item",
			zap.Stringer("product_id", id),
			zap.Int("delta", req.Delta),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to save cart",
		})
	}
	return c.JSON(http.StatusOK, cartResponse{CartSummary: summary, Changed: changed})
}

// RemoveCartItem deletes a line
func (h *Handler) RemoveCartItem(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid product id",
		})
	}

	summary, changed, err := h.store.RemoveFromCart(c.Request().Context(), id)
	if err != nil {
		log.Error("Failed to remove cart item",
			zap.Stringer("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to save cart",
		})
	}
	return c.JSON(http.StatusOK, cartResponse{CartSummary: summary, Changed: changed})
}

// Checkout returns the formatted order and the hand-off link, or 204 for an empty cart
func (h *Handler) Checkout(c echo.Context) error {
	handoff, ok := h.store.Checkout()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	logger.FromEcho(c).Info("Checkout link generated", zap.Int("length", len(handoff.URL)))
	return c.JSON(http.StatusOK, handoff)
}
