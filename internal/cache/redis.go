package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	categoriesKey = "catalog:categories"
	// setAttempts bounds the optimistic retries when a key changes under WATCH.
	setAttempts = 3
)

// cartEntry is the cached form of a cart; unlike the API body it keeps updated_at.
type cartEntry struct {
	ID        string            `json:"id,omitempty"`
	SessionID string            `json:"session_id"`
	Items     []domain.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toEntry(c *domain.Cart) cartEntry {
	return cartEntry{ID: c.ID, SessionID: c.SessionID, Items: c.Items, UpdatedAt: c.UpdatedAt}
}

func (e cartEntry) cart() *domain.Cart {
	items := e.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return &domain.Cart{ID: e.ID, SessionID: e.SessionID, Items: items, UpdatedAt: e.UpdatedAt}
}

func NewRedisCache(client *redis.Client, cartTTL, categoryTTL time.Duration) *RedisCache {
	if cartTTL <= 0 {
		cartTTL = 15 * time.Minute
	}
	if categoryTTL <= 0 {
		categoryTTL = time.Minute
	}
	return &RedisCache{
		client:      client,
		baseTTL:     cartTTL,
		categoryTTL: categoryTTL,
	}
}

type RedisCache struct {
	client      *redis.Client
	baseTTL     time.Duration
	categoryTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cacheKey(sessionID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry cartEntry
	if err2 := json.Unmarshal(data, &entry); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return entry.cart(), nil
}

// Set writes cart under WATCH so a slower writer holding an older cart cannot
// replace a newer entry.
func (r RedisCache) Set(ctx context.Context, sessionID string, cart *domain.Cart) error {
	key := cacheKey(sessionID)
	jsonCart, err := json.Marshal(toEntry(cart))
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter

	write := func(tx *redis.Tx) error {
		current, errGet := tx.Get(ctx, key).Bytes()
		if errGet != nil && !errors.Is(errGet, redis.Nil) {
			return errGet
		}
		if errGet == nil {
			var cached cartEntry
			if json.Unmarshal(current, &cached) == nil && cached.UpdatedAt.After(cart.UpdatedAt) {
				return nil
			}
		}

		_, errTx := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(jsonCart), ttl)
			return nil
		})
		return errTx
	}

	for i := 0; i < setAttempts; i++ {
		err = r.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, sessionID string) error {
	key := cacheKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func (r RedisCache) GetCategories(ctx context.Context) ([]string, error) {
	data, err := r.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories failed: %w", err)
	}
	return categories, nil
}

func (r RedisCache) SetCategories(ctx context.Context, categories []string) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories failed: %w", err)
	}
	if err := r.client.Set(ctx, categoriesKey, string(data), r.categoryTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
