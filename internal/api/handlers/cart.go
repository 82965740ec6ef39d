package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/service"
)

// CartQuoter prices a cart without placing an order
type CartQuoter interface {
	Quote(ctx context.Context, items []pricing.LineItem) service.QuoteResult
}

// HandleQuoteCart handles POST /v1/cart/quote
func HandleQuoteCart(quotes CartQuoter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validationFailed(c, err)
			return
		}

		c.JSON(http.StatusOK, quotes.Quote(c.Request.Context(), req.Items))
	}
}
