package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	"github.com/jafarshop/storefront/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/quote-cart/main.go <cart.json>")
		fmt.Println(`Example cart.json: {"items": [{"price": 450, "variantPrice": 520, "quantity": 2}]}`)
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read cart: %v\n", err)
		os.Exit(1)
	}

	var cart service.QuoteRequest
	if err := json.Unmarshal(raw, &cart); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse cart: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	settingsSource := "database"
	var settings *service.SettingsService

	// Without a database the quote still works, priced with the built-in shipping defaults
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Warn("Database unavailable", zap.Error(err))
		settingsSource = "built-in defaults"
		settings = service.NewSettingsService(unavailableSettings{}, cfg.Pricing.DefaultShipping, nil, logger)
	} else {
		defer db.Close()
		settings = service.NewSettingsService(postgres.NewSettingsRepository(db, logger), cfg.Pricing.DefaultShipping, nil, logger)
	}

	quote := service.NewQuoteService(settings, cfg.Pricing.GST).Quote(context.Background(), cart.Items)

	fmt.Printf("Shipping settings: %s\n\n", settingsSource)
	fmt.Printf("Subtotal:     %s\n", quote.Subtotal.StringFixed(pricing.CurrencyPlaces))
	fmt.Printf("GST rate:     %d%%\n", quote.GSTBreakdown.GSTPercentage)
	fmt.Printf("  Base:       %s\n", quote.GSTBreakdown.BaseAmount.StringFixed(pricing.CurrencyPlaces))
	fmt.Printf("  GST:        %s\n", quote.GSTBreakdown.GSTAmount.StringFixed(pricing.CurrencyPlaces))
	fmt.Printf("Shipping:     %s (%s)\n", quote.Shipping.ShippingCost.StringFixed(pricing.CurrencyPlaces), quote.Shipping.Reason)
	fmt.Printf("Grand total:  %s\n", quote.GrandTotal.StringFixed(pricing.CurrencyPlaces))
}
