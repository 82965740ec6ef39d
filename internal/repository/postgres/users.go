package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const userColumns = `id, name, email, api_key_lookup, api_key_hash, is_admin,
		total_orders, total_spent, last_order_date, created_at, updated_at`

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// APIKeyLookup is the indexed sha256 digest used to find a user before the bcrypt check
func APIKeyLookup(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// HashAPIKey returns the lookup digest and bcrypt hash stored for a new API key
func HashAPIKey(apiKey string) (lookup string, hash string, err error) {
	h, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return APIKeyLookup(apiKey), string(h), nil
}

func (r *userRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_key_lookup = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, APIKeyLookup(apiKey)))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	if err != nil {
		r.logger.Error("Failed to query user by API key", zap.Error(err))
		return nil, err
	}

	// Verify API key against stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}

	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get user by ID", zap.Error(err))
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, api_key_lookup, api_key_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.APIKeyLookup,
		user.APIKeyHash,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}

	return nil
}

func (r *userRepository) RecordOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, at time.Time) error {
	query := `
		UPDATE users
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    last_order_date = $3,
		    updated_at = $3
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, amount, at)
	if err != nil {
		r.logger.Error("Failed to record order on user", zap.Error(err), zap.String("user_id", id.String()))
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var lastOrder sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.APIKeyLookup,
		&user.APIKeyHash,
		&user.IsAdmin,
		&user.TotalOrders,
		&user.TotalSpent,
		&lastOrder,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastOrder.Valid {
		user.LastOrderDate = &lastOrder.Time
	}

	return &user, nil
}
