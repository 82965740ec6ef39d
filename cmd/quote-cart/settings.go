package main

import (
	"context"
	"errors"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

var errNoDatabase = errors.New("no database connection")

// unavailableSettings stands in for the settings store when the database cannot be reached
type unavailableSettings struct{}

func (unavailableSettings) GetOrCreate(context.Context, pricing.ShippingSettings) (*domain.Settings, error) {
	return nil, errNoDatabase
}

func (unavailableSettings) UpdateShipping(context.Context, pricing.ShippingSettings) (*domain.Settings, error) {
	return nil, errNoDatabase
}
