package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const orderColumns = `id, user_id, shipping_address, payment_method, total_price, shipping_price, tax_price,
		gst_total_amount, gst_base_amount, gst_amount, gst_rate, gst_percentage,
		status, delivered_at, created_at, updated_at`

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin order transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	gst := order.GSTBreakdown
	_, err = tx.ExecContext(ctx, orderQuery,
		order.ID,
		order.UserID,
		address,
		order.PaymentMethod,
		order.TotalPrice,
		order.ShippingPrice,
		order.TaxPrice,
		gst.TotalAmount,
		gst.BaseAmount,
		gst.GSTAmount,
		gst.GSTRate,
		gst.GSTPercentage,
		order.Status,
		order.DeliveredAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.Error(err))
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, image, price, variant_price, quantity, size, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		item.CreatedAt = order.CreatedAt

		_, err := tx.ExecContext(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Image,
			item.Price,
			nullDecimal(item.VariantPrice),
			item.Quantity,
			item.Size,
			item.Color,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert order item", zap.Error(err), zap.String("product_id", item.ProductID))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *orderRepository) List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	if status == nil {
		query := `
			SELECT ` + orderColumns + `
			FROM orders
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		return r.list(ctx, query, limit, offset)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, *status, limit, offset)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $2,
		    delivered_at = CASE WHEN $2 = 'Delivered' THEN $3 ELSE delivered_at END,
		    updated_at = $3
		WHERE id = $1 AND status = $4
	`

	res, err := r.db.ExecContext(ctx, query, id, to, at, from)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Either the order is gone or another writer moved it first
	var current domain.OrderStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to re-read order status", zap.Error(err))
		return err
	}

	return &errors.ErrInvalidStateTransition{From: current, To: to}
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID.String()
		byID[order.ID] = order
		order.Items = []domain.OrderItem{}
	}

	query := `
		SELECT id, order_id, product_id, name, image, price, variant_price, quantity, size, color, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to load order items", zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var image, size, color sql.NullString
		var variantPrice decimal.NullDecimal

		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&image,
			&item.Price,
			&variantPrice,
			&item.Quantity,
			&size,
			&color,
			&item.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan order item", zap.Error(err))
			return err
		}

		item.Image = nullString(image)
		item.Size = nullString(size)
		item.Color = nullString(color)
		if variantPrice.Valid {
			item.VariantPrice = &variantPrice.Decimal
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var address []byte
	var deliveredAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&address,
		&order.PaymentMethod,
		&order.TotalPrice,
		&order.ShippingPrice,
		&order.TaxPrice,
		&order.GSTBreakdown.TotalAmount,
		&order.GSTBreakdown.BaseAmount,
		&order.GSTBreakdown.GSTAmount,
		&order.GSTBreakdown.GSTRate,
		&order.GSTBreakdown.GSTPercentage,
		&order.Status,
		&deliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}

	return &order, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
