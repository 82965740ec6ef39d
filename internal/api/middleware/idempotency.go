package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	idempotencyKeyContextKey     = "idempotency_key"
	idempotencyHashContextKey    = "idempotency_request_hash"
	idempotencyOrderIDContextKey = "idempotency_order_id"
	idempotencyBoundContextKey   = "idempotency_bound_order_id"
)

// IdempotencyMiddleware makes requests carrying the same Idempotency-Key create at most one order.
// The first request reserves the key; concurrent holders get 409 until it finishes, after which
// replays are routed to the bound order. Requires AuthMiddleware to have run. A nil store disables the check.
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || keys == nil {
			c.Next()
			return
		}

		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		existing, reserved, err := keys.Reserve(c.Request.Context(), user.ID, key, requestHash)
		if err != nil {
			// Proceed without replay protection rather than block checkout
			logger.Warn("Idempotency reservation failed", zap.Error(err))
			c.Next()
			return
		}

		if !reserved {
			switch {
			case existing.RequestHash != requestHash:
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "idempotency key already used with a different request",
				})
			case existing.IsPending():
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "a request with this idempotency key is still in progress",
				})
			default:
				c.Set(idempotencyKeyContextKey, key)
				c.Set(idempotencyHashContextKey, requestHash)
				c.Set(idempotencyOrderIDContextKey, existing.OrderID.String())
				c.Next()
			}
			return
		}

		c.Set(idempotencyKeyContextKey, key)
		c.Set(idempotencyHashContextKey, requestHash)

		c.Next()

		// The binding must be written even if the client has gone away
		ctx := context.WithoutCancel(c.Request.Context())
		if orderID, ok := boundOrderID(c); ok {
			if err := keys.Complete(ctx, &domain.IdempotencyKey{
				Key:         key,
				UserID:      user.ID,
				OrderID:     orderID,
				RequestHash: requestHash,
			}); err != nil {
				logger.Error("Failed to bind idempotency key to order",
					zap.String("order_id", orderID.String()),
					zap.Error(err),
				)
			}
			return
		}

		if err := keys.Release(ctx, user.ID, key, requestHash); err != nil {
			logger.Warn("Failed to release idempotency key", zap.Error(err))
		}
	}
}

// BindIdempotentOrder records the order created under the request's idempotency key
func BindIdempotentOrder(c *gin.Context, orderID uuid.UUID) {
	c.Set(idempotencyBoundContextKey, orderID)
}

func boundOrderID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(idempotencyBoundContextKey)
	if !exists {
		return uuid.Nil, false
	}
	orderID, ok := value.(uuid.UUID)
	return orderID, ok
}

// GetIdempotencyInfo returns the key, request hash and, for replays, the order the key is bound to
func GetIdempotencyInfo(c *gin.Context) (key, requestHash, existingOrderID string, isExisting bool) {
	key = c.GetString(idempotencyKeyContextKey)
	requestHash = c.GetString(idempotencyHashContextKey)
	existingOrderID = c.GetString(idempotencyOrderIDContextKey)
	return key, requestHash, existingOrderID, existingOrderID != ""
}
