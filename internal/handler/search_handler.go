package handler

import (
	"net/http"

	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Search runs the q query. Queries under two characters return a cleared result.
func (h *Handler) Search(c echo.Context) error {
	res, err := h.store.Search(c.QueryParam("q"))
	if err != nil {
		return catalogError(c, err)
	}
	logger.FromEcho(c).Debug("Search",
		zap.String("query", res.Query),
		zap.String("status", string(res.Status)),
		zap.Int("count", len(res.Products)))
	return c.JSON(http.StatusOK, res)
}

// SelectSearchResult jumps to the category of the chosen product
func (h *Handler) SelectSearchResult(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid product id",
		})
	}

	page, err := h.store.SelectSearchResult(id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"view":       h.store.View(),
		"page":       page,
		"product_id": id,
	})
}
