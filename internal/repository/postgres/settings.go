package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

// settingsID is the primary key of the singleton settings row
const settingsID = 1

type settingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) *settingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *settingsRepository) GetOrCreate(ctx context.Context, defaults pricing.ShippingSettings) (*domain.Settings, error) {
	insert := `
		INSERT INTO settings (id, free_shipping_threshold, force_paid_shipping, default_shipping_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, insert,
		settingsID,
		defaults.FreeShippingThreshold,
		defaults.ForcePaidShipping,
		defaults.DefaultShippingCost,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to seed settings", zap.Error(err))
		return nil, err
	}

	return r.get(ctx)
}

func (r *settingsRepository) UpdateShipping(ctx context.Context, shipping pricing.ShippingSettings) (*domain.Settings, error) {
	query := `
		INSERT INTO settings (id, free_shipping_threshold, force_paid_shipping, default_shipping_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET free_shipping_threshold = EXCLUDED.free_shipping_threshold,
		    force_paid_shipping = EXCLUDED.force_paid_shipping,
		    default_shipping_cost = EXCLUDED.default_shipping_cost,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		settingsID,
		shipping.FreeShippingThreshold,
		shipping.ForcePaidShipping,
		shipping.DefaultShippingCost,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update shipping settings", zap.Error(err))
		return nil, err
	}

	return r.get(ctx)
}

func (r *settingsRepository) get(ctx context.Context) (*domain.Settings, error) {
	query := `
		SELECT free_shipping_threshold, force_paid_shipping, default_shipping_cost, updated_at
		FROM settings
		WHERE id = $1
	`

	var settings domain.Settings
	err := r.db.QueryRowContext(ctx, query, settingsID).Scan(
		&settings.Shipping.FreeShippingThreshold,
		&settings.Shipping.ForcePaidShipping,
		&settings.Shipping.DefaultShippingCost,
		&settings.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to read settings", zap.Error(err))
		return nil, err
	}

	return &settings, nil
}
