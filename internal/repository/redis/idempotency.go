package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
)

const (
	idempotencyKeyPrefix  = "idempotency:"
	defaultIdempotencyTTL = 24 * time.Hour

	// A reservation outlives any single checkout; it expires on its own if the holder crashes
	reservationTTL = time.Minute
)

// ErrIdempotencyKeyTaken is returned by Complete when the key now belongs to another request
var ErrIdempotencyKeyTaken = errors.New("idempotency key is bound to another request")

type idempotencyKeyRepository struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient creates a redis client from config
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewIdempotencyKeyRepository creates a redis backed idempotency key store
func NewIdempotencyKeyRepository(client goredis.UniversalClient, ttl time.Duration, logger *zap.Logger) *idempotencyKeyRepository {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &idempotencyKeyRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func idempotencyRedisKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("%s%s:%s", idempotencyKeyPrefix, userID, key)
}

// Reserve writes a pending marker with SETNX. Exactly one caller wins a free key.
func (r *idempotencyKeyRepository) Reserve(ctx context.Context, userID uuid.UUID, key, requestHash string) (*domain.IdempotencyKey, bool, error) {
	redisKey := idempotencyRedisKey(userID, key)
	pending := &domain.IdempotencyKey{
		Key:         key,
		UserID:      userID,
		RequestHash: requestHash,
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return nil, false, err
	}

	// A second round covers a holder expiring between SETNX and GET
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := r.client.SetNX(ctx, redisKey, data, reservationTTL).Result()
		if err != nil {
			r.logger.Error("Failed to reserve idempotency key", zap.Error(err))
			return nil, false, err
		}
		if ok {
			return pending, true, nil
		}

		existing, err := decodeIdempotencyKey(r.client.Get(ctx, redisKey))
		if err != nil {
			r.logger.Error("Failed to read idempotency key", zap.Error(err))
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	return nil, false, fmt.Errorf("idempotency key %q is contended", key)
}

// Complete replaces the caller's pending marker with the order binding and the full TTL
func (r *idempotencyKeyRepository) Complete(ctx context.Context, key *domain.IdempotencyKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}

	redisKey := idempotencyRedisKey(key.UserID, key.Key)
	err = r.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := decodeIdempotencyKey(tx.Get(ctx, redisKey))
		if err != nil {
			return err
		}
		// An expired reservation nobody reclaimed can still be bound
		if current != nil && (!current.IsPending() || current.RequestHash != key.RequestHash) {
			return ErrIdempotencyKeyTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, redisKey, data, r.ttl)
			return nil
		})
		return err
	}, redisKey)
	if err != nil {
		r.logger.Error("Failed to bind idempotency key",
			zap.String("key", key.Key),
			zap.String("order_id", key.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Release deletes the caller's pending marker so the client can retry. Bound keys are left alone.
func (r *idempotencyKeyRepository) Release(ctx context.Context, userID uuid.UUID, key, requestHash string) error {
	redisKey := idempotencyRedisKey(userID, key)
	err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := decodeIdempotencyKey(tx.Get(ctx, redisKey))
		if err != nil {
			return err
		}
		if current == nil || !current.IsPending() || current.RequestHash != requestHash {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, redisKey)
			return nil
		})
		return err
	}, redisKey)
	if err != nil {
		r.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// decodeIdempotencyKey returns nil, nil for a missing key
func decodeIdempotencyKey(cmd *goredis.StringCmd) (*domain.IdempotencyKey, error) {
	data, err := cmd.Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored domain.IdempotencyKey
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return &stored, nil
}
