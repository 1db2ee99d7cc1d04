package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"kasir/internal/domain"
)

// ErrNotFound is returned when an entity does not exist
var ErrNotFound = errors.New("not found")

// ProductFilter narrows product listings
type ProductFilter struct {
	NameSubstring string
	Category      string
}

// ProductRepository stores the catalog
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int, error)
}

// CustomerTypeRepository stores the discount classes
type CustomerTypeRepository interface {
	Create(ctx context.Context, t *domain.CustomerType) error
	GetByName(ctx context.Context, name string) (*domain.CustomerType, error)
	List(ctx context.Context) ([]domain.CustomerType, error)
}

// UserRepository stores cashier and admin accounts
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TransactionRepository stores committed sales
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, limit int) ([]domain.Transaction, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Transaction, error)
	Count(ctx context.Context) (int, error)
}

// TxManager is the transaction boundary abstraction. The in-memory store
// implements it with a global write lock; Mongo serializes writers.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
