package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StockInput struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

func (h *Handler) AddStock(c *gin.Context) {
	var input StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badBody(c, err)
		return
	}

	if _, err := h.Portfolio.AddOrUpdate(c.Request.Context(), c.Param("userId"), input.Symbol, input.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveStock(c *gin.Context) {
	var input StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badBody(c, err)
		return
	}

	if err := h.Portfolio.Remove(c.Request.Context(), c.Param("userId"), input.Symbol, input.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetStocks(c *gin.Context) {
	stocks, err := h.Portfolio.ListActive(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *Handler) GetPortfolioValue(c *gin.Context) {
	value, err := h.Portfolio.PortfolioValue(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, value)
}
