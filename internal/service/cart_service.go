package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holocommerce/storefront/internal/cache"
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/repository"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo     repository.CartRepository
	cache    cache.CartCache
	recorder DegradeRecorder
	logger   *log.Entry
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache, recorder DegradeRecorder, logger *log.Entry) *CartService {
	return &CartService{
		repo:     repo,
		cache:    cartCache,
		recorder: recorder,
		logger:   logger.WithField("component", "cart"),
	}
}

// cartLoadTimeout bounds a shared cart load, which outlives the caller that started it.
const cartLoadTimeout = 10 * time.Second

// GetCart never reports a missing cart: sessions without one, and reads while the
// store is unavailable, get the empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key.
	// The load is detached from the first caller so its cancellation does not fail the others.
	ch := s.sfg.DoChan(sessionID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartLoadTimeout)
		defer cancel()
		return s.loadCart(loadCtx, sessionID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Cart), nil
	}
}

func (s *CartService) loadCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).Warn("cart cache get failed")
	}

	cart, err = s.repo.GetBySession(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.EmptyCart(sessionID), nil
	}
	if errors.Is(err, repository.ErrStoreUnavailable) {
		s.recorder.DegradedResponse("get_cart")
		s.logger.WithError(err).Warn("store unavailable, serving empty cart")
		return domain.EmptyCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	// The cache keeps whichever cart has the later UpdatedAt, so this fill
	// cannot bring back items an upsert already replaced.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if errSet := s.cache.Set(ctx, sessionID, cart); errSet != nil {
			s.logger.WithError(errSet).Warn("cart cache set failed")
		}
	}()

	return cart, nil
}

// UpsertCart replaces the session's whole item list. Writes fail hard: an
// unavailable store surfaces as repository.ErrStoreUnavailable. Session and
// product ids are opaque and stored as sent.
func (s *CartService) UpsertCart(ctx context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error) {
	cart, err := s.repo.ReplaceItems(ctx, sessionID, append([]domain.CartItem{}, items...))
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("cart upsert failed")
		return nil, fmt.Errorf("upsert cart: %w", err)
	}

	s.refreshCache(sessionID, cart)
	return cart, nil
}

// refreshCache stores the written cart. If that fails the entry is dropped so
// reads fall through to the store.
func (s *CartService) refreshCache(sessionID string, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, sessionID, cart)
	if err == nil {
		return
	}
	s.logger.WithError(err).Warn("cart cache refresh failed")
	if errDel := s.cache.Delete(ctx, sessionID); errDel != nil {
		s.logger.WithError(errDel).Warn("cart cache invalidate failed")
	}
}
