package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-portfolio/problem"
	"stock-portfolio/services"
)

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// GetQuote returns the live price for a symbol. Nothing is cached or stored.
func (h *Handler) GetQuote(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		problem.Abort(c, http.StatusBadRequest, "Bad Request", "Symbol must not be empty.")
		return
	}

	price, err := services.LookupPrice(c.Request.Context(), h.Prices, symbol)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteResponse{Symbol: symbol, Price: price})
}
