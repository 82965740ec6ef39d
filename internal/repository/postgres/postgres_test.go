package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

func setupTestDB(t *testing.T) *sql.DB {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	return db
}

func createTestUser(t *testing.T, repos *userRepository) *domain.User {
	lookup, hash, err := HashAPIKey("secret-key")
	require.NoError(t, err)

	user := &domain.User{
		Name:         "Asha",
		Email:        "asha@example.com",
		APIKeyLookup: lookup,
		APIKeyHash:   hash,
	}
	require.NoError(t, repos.Create(context.Background(), user))
	return user
}

func TestPostgresRepositories(t *testing.T) {
	db := setupTestDB(t)
	logger := zap.NewNop()
	ctx := context.Background()

	users := NewUserRepository(db, logger)
	orders := NewOrderRepository(db, logger)
	settings := NewSettingsRepository(db, logger)

	user := createTestUser(t, users)

	t.Run("api key lookup", func(t *testing.T) {
		found, err := users.GetByAPIKey(ctx, "secret-key")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = users.GetByAPIKey(ctx, "wrong-key")
		var unauthorized *errors.ErrUnauthorized
		assert.ErrorAs(t, err, &unauthorized)
	})

	t.Run("settings seeded once then updated", func(t *testing.T) {
		first, err := settings.GetOrCreate(ctx, pricing.DefaultShippingSettings)
		require.NoError(t, err)
		assert.True(t, first.Shipping.FreeShippingThreshold.Equal(decimal.NewFromInt(999)))

		updated, err := settings.UpdateShipping(ctx, pricing.ShippingSettings{
			FreeShippingThreshold: decimal.NewFromInt(1500),
			ForcePaidShipping:     true,
			DefaultShippingCost:   decimal.NewFromInt(75),
		})
		require.NoError(t, err)
		assert.True(t, updated.Shipping.ForcePaidShipping)

		again, err := settings.GetOrCreate(ctx, pricing.DefaultShippingSettings)
		require.NoError(t, err)
		assert.True(t, again.Shipping.FreeShippingThreshold.Equal(decimal.NewFromInt(1500)))
		assert.True(t, again.Shipping.DefaultShippingCost.Equal(decimal.NewFromInt(75)))
	})

	t.Run("order round trip", func(t *testing.T) {
		variant := decimal.NewFromInt(120)
		size := "M"
		items := []domain.OrderItem{
			{ProductID: "p-1", Name: "Kurta", Price: decimal.NewFromInt(100), VariantPrice: &variant, Quantity: 2, Size: &size},
			{ProductID: "p-2", Name: "Scarf", Price: decimal.NewFromInt(300), Quantity: 1},
		}
		order := &domain.Order{
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: domain.ShippingAddress{FullName: "Asha", Street: "1 MG Road", City: "Pune", PostalCode: "411001", Country: "IN"},
			PaymentMethod:   domain.PaymentMethodCOD,
			TotalPrice:      decimal.NewFromInt(540),
			ShippingPrice:   decimal.NewFromInt(50),
			GSTBreakdown:    pricing.ComputeCartGST(domain.OrderLineItems(items)),
			Status:          domain.OrderStatusPending,
		}
		order.TaxPrice = order.GSTBreakdown.GSTAmount
		require.NoError(t, orders.Create(ctx, order))

		got, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "540.00", got.GSTBreakdown.TotalAmount.StringFixed(2))
		assert.Equal(t, 5, got.GSTBreakdown.GSTPercentage)
		assert.Equal(t, "Pune", got.ShippingAddress.City)

		var withVariant domain.OrderItem
		for _, item := range got.Items {
			if item.ProductID == "p-1" {
				withVariant = item
			}
		}
		require.NotNil(t, withVariant.VariantPrice)
		assert.True(t, withVariant.VariantPrice.Equal(variant))
		assert.Equal(t, "M", *withVariant.Size)
		assert.Nil(t, withVariant.Color)

		list, err := orders.ListByUserID(ctx, user.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		now := time.Now()
		require.NoError(t, orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusDelivered, now))
		delivered, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusDelivered, delivered.Status)
		assert.NotNil(t, delivered.DeliveredAt)

		status := domain.OrderStatusDelivered
		filtered, err := orders.List(ctx, &status, 10, 0)
		require.NoError(t, err)
		assert.Len(t, filtered, 1)
	})

	t.Run("competing status updates", func(t *testing.T) {
		order := &domain.Order{
			UserID:        user.ID,
			Items:         []domain.OrderItem{{ProductID: "p-3", Name: "Dupatta", Price: decimal.NewFromInt(200), Quantity: 1}},
			PaymentMethod: domain.PaymentMethodOnline,
			TotalPrice:    decimal.NewFromInt(200),
			Status:        domain.OrderStatusProcessing,
		}
		require.NoError(t, orders.Create(ctx, order))

		targets := []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusCancelled}
		results := make([]error, len(targets))
		var wg sync.WaitGroup
		for i, to := range targets {
			wg.Add(1)
			go func(i int, to domain.OrderStatus) {
				defer wg.Done()
				results[i] = orders.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing, to, time.Now())
			}(i, to)
		}
		wg.Wait()

		var winner domain.OrderStatus
		failures := 0
		for i, err := range results {
			if err == nil {
				winner = targets[i]
				continue
			}
			failures++
			var transition *errors.ErrInvalidStateTransition
			require.ErrorAs(t, err, &transition)
			assert.NotEqual(t, domain.OrderStatusProcessing, transition.From)
		}
		assert.Equal(t, 1, failures)

		got, err := orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, winner, got.Status)
	})

	t.Run("stale status update", func(t *testing.T) {
		order := &domain.Order{
			UserID:        user.ID,
			Items:         []domain.OrderItem{{ProductID: "p-4", Name: "Stole", Price: decimal.NewFromInt(150), Quantity: 1}},
			PaymentMethod: domain.PaymentMethodCOD,
			TotalPrice:    decimal.NewFromInt(150),
			Status:        domain.OrderStatusCancelled,
		}
		require.NoError(t, orders.Create(ctx, order))

		err := orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing, time.Now())
		var transition *errors.ErrInvalidStateTransition
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, domain.OrderStatusCancelled, transition.From)

		err = orders.UpdateStatus(ctx, uuid.New(), domain.OrderStatusPending, domain.OrderStatusProcessing, time.Now())
		var notFound *errors.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("record order analytics", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, users.RecordOrder(ctx, user.ID, decimal.RequireFromString("540.50"), at))
		require.NoError(t, users.RecordOrder(ctx, user.ID, decimal.NewFromInt(100), at))

		got, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalOrders)
		assert.Equal(t, "640.50", got.TotalSpent.StringFixed(2))
		require.NotNil(t, got.LastOrderDate)

		err = users.RecordOrder(ctx, uuid.New(), decimal.NewFromInt(1), at)
		var notFound *errors.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := orders.GetByID(ctx, uuid.New())
		var notFound *errors.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}
