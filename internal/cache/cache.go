package cache

import (
	"context"
	"errors"

	"github.com/holocommerce/storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Set stores cart unless the cached entry carries a later UpdatedAt.
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type CategoryCache interface {
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop is used when no Redis address is configured; every read misses.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }

func (Noop) Set(context.Context, string, *domain.Cart) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) GetCategories(context.Context) ([]string, error) { return nil, ErrCacheMiss }

func (Noop) SetCategories(context.Context, []string) error { return nil }
