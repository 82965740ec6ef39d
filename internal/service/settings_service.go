package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

type SettingsService struct {
	settings repository.SettingsRepository
	defaults pricing.ShippingSettings
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewSettingsService creates a settings service. defaults seed the record the first time it is read.
func NewSettingsService(settings repository.SettingsRepository, defaults pricing.ShippingSettings, m *metrics.Metrics, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settings: settings,
		defaults: defaults,
		metrics:  m,
		logger:   logger,
	}
}

// Get returns the current settings, creating them on first read
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.settings.GetOrCreate(ctx, s.defaults)
}

// ForCheckout never fails: if the store cannot be read the built-in defaults are used
func (s *SettingsService) ForCheckout(ctx context.Context) pricing.ShippingSettings {
	settings, err := s.Get(ctx)
	if err != nil || settings == nil {
		s.logger.Warn("Using default shipping settings", zap.Error(err))
		s.metrics.ObserveSettingsFallback()
		return pricing.DefaultShippingSettings
	}
	return settings.Shipping
}

// UpdateShipping overwrites the shipping policy. Last write wins.
func (s *SettingsService) UpdateShipping(ctx context.Context, req UpdateShippingSettingsRequest) (*domain.Settings, error) {
	if req.FreeShippingThreshold == nil {
		return nil, &errors.ErrValidation{Field: "freeShippingThreshold", Message: "is required"}
	}
	if req.DefaultShippingCost == nil {
		return nil, &errors.ErrValidation{Field: "defaultShippingCost", Message: "is required"}
	}
	if req.FreeShippingThreshold.IsNegative() {
		return nil, &errors.ErrValidation{Field: "freeShippingThreshold", Message: "must not be negative"}
	}
	if req.DefaultShippingCost.IsNegative() {
		return nil, &errors.ErrValidation{Field: "defaultShippingCost", Message: "must not be negative"}
	}

	shipping := pricing.ShippingSettings{
		FreeShippingThreshold: req.FreeShippingThreshold.Round(pricing.CurrencyPlaces),
		ForcePaidShipping:     req.ForcePaidShipping,
		DefaultShippingCost:   req.DefaultShippingCost.Round(pricing.CurrencyPlaces),
	}

	settings, err := s.settings.UpdateShipping(ctx, shipping)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipping settings updated",
		zap.String("free_shipping_threshold", shipping.FreeShippingThreshold.String()),
		zap.Bool("force_paid_shipping", shipping.ForcePaidShipping),
		zap.String("default_shipping_cost", shipping.DefaultShippingCost.String()),
	)
	return settings, nil
}
