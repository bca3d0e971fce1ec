package repository

import (
	"context"
	"errors"

	"github.com/holocommerce/storefront/internal/domain"
)

// Common errors returned by the repositories
var (
	// ErrStoreUnavailable means the document store is not configured, unreachable,
	// or currently short-circuited by the breaker.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrProductNotFound covers both unknown and malformed product keys.
	ErrProductNotFound = errors.New("product not found")

	ErrCartNotFound = errors.New("cart not found")
)

// ProductRepository defines read access to the catalog plus the bulk insert used for seeding.
// Consumers define this interface, not the MongoDB implementation
type ProductRepository interface {
	// Find returns the products matching filter, sorted and truncated to filter.Limit.
	Find(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)

	// GetByID returns ErrProductNotFound when id is not a valid store key or matches nothing.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// DistinctCategories returns each category value present in the catalog once.
	DistinctCategories(ctx context.Context) ([]string, error)

	Count(ctx context.Context) (int64, error)

	// InsertMany stores products and returns the generated ids in input order.
	InsertMany(ctx context.Context, products []*domain.Product) ([]string, error)
}

// CartRepository defines the session cart operations.
type CartRepository interface {
	// GetBySession returns ErrCartNotFound when the session has no cart.
	GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error)

	// ReplaceItems overwrites the session's items, creating the cart if needed.
	// It is a single atomic operation on the store.
	ReplaceItems(ctx context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error)
}

// State tells whether the store can currently serve requests.
type State int

const (
	StateReady State = iota
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}
