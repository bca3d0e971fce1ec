package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// classify tags connectivity failures with ErrStoreUnavailable and keeps the original cause.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if isConnectivityError(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func isConnectivityError(err error) bool {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, topology.ErrServerSelectionTimeout) {
		return true
	}
	var sse topology.ServerSelectionError
	return errors.As(err, &sse)
}

type BreakerConfig struct {
	// MaxFailures consecutive unavailability errors open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Breaker short-circuits store calls after repeated connectivity failures.
// Only ErrStoreUnavailable counts as a failure; not-found results are successes.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewBreaker(cfg BreakerConfig, logger *log.Entry) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrStoreUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(log.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("store breaker state changed")
			}
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// Open reports whether calls are currently being rejected.
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	v, err := b.cb.Execute(func() (any, error) {
		res, err := fn()
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if err != nil {
		return zero, err
	}

	res, ok := v.(T)
	if !ok {
		return zero, nil
	}
	return res, nil
}

type guardedProductRepository struct {
	next    ProductRepository
	breaker *Breaker
}

// GuardProducts routes every call of next through the breaker.
func GuardProducts(next ProductRepository, breaker *Breaker) ProductRepository {
	return &guardedProductRepository{next: next, breaker: breaker}
}

func (g *guardedProductRepository) Find(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	return execute(g.breaker, func() ([]*domain.Product, error) {
		return g.next.Find(ctx, filter)
	})
}

func (g *guardedProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return execute(g.breaker, func() (*domain.Product, error) {
		return g.next.GetByID(ctx, id)
	})
}

func (g *guardedProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	return execute(g.breaker, func() ([]string, error) {
		return g.next.DistinctCategories(ctx)
	})
}

func (g *guardedProductRepository) Count(ctx context.Context) (int64, error) {
	return execute(g.breaker, func() (int64, error) {
		return g.next.Count(ctx)
	})
}

func (g *guardedProductRepository) InsertMany(ctx context.Context, products []*domain.Product) ([]string, error) {
	return execute(g.breaker, func() ([]string, error) {
		return g.next.InsertMany(ctx, products)
	})
}

type guardedCartRepository struct {
	next    CartRepository
	breaker *Breaker
}

// GuardCarts routes every call of next through the breaker.
func GuardCarts(next CartRepository, breaker *Breaker) CartRepository {
	return &guardedCartRepository{next: next, breaker: breaker}
}

func (g *guardedCartRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return execute(g.breaker, func() (*domain.Cart, error) {
		return g.next.GetBySession(ctx, sessionID)
	})
}

func (g *guardedCartRepository) ReplaceItems(ctx context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error) {
	return execute(g.breaker, func() (*domain.Cart, error) {
		return g.next.ReplaceItems(ctx, sessionID, items)
	})
}
