package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
)

const (
	settingsKey             = "settings:shipping"
	defaultSettingsCacheTTL = 30 * time.Second
)

// cachedSettingsRepository is a read-through cache in front of the settings store.
// Cache failures are logged and the underlying store is used instead.
type cachedSettingsRepository struct {
	next   repository.SettingsRepository
	client goredis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSettingsRepository wraps next with a redis cache
func NewCachedSettingsRepository(next repository.SettingsRepository, client goredis.UniversalClient, ttl time.Duration, logger *zap.Logger) repository.SettingsRepository {
	if ttl <= 0 {
		ttl = defaultSettingsCacheTTL
	}
	return &cachedSettingsRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *cachedSettingsRepository) GetOrCreate(ctx context.Context, defaults pricing.ShippingSettings) (*domain.Settings, error) {
	data, err := r.client.Get(ctx, settingsKey).Bytes()
	switch {
	case err == nil:
		var settings domain.Settings
		decodeErr := json.Unmarshal(data, &settings)
		if decodeErr == nil {
			return &settings, nil
		}
		r.logger.Warn("Discarding unreadable cached settings", zap.Error(decodeErr))
	case err != goredis.Nil:
		r.logger.Warn("Settings cache get failed", zap.Error(err))
	}

	settings, err := r.next.GetOrCreate(ctx, defaults)
	if err != nil {
		return nil, err
	}

	r.store(ctx, settings)
	return settings, nil
}

func (r *cachedSettingsRepository) UpdateShipping(ctx context.Context, shipping pricing.ShippingSettings) (*domain.Settings, error) {
	settings, err := r.next.UpdateShipping(ctx, shipping)
	if err != nil {
		return nil, err
	}

	if err := r.client.Del(ctx, settingsKey).Err(); err != nil {
		r.logger.Warn("Settings cache invalidation failed", zap.Error(err))
	}
	r.store(ctx, settings)
	return settings, nil
}

func (r *cachedSettingsRepository) store(ctx context.Context, settings *domain.Settings) {
	data, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, settingsKey, data, r.ttl).Err(); err != nil {
		r.logger.Warn("Settings cache set failed", zap.Error(err))
	}
}
