package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holocommerce/storefront/internal/cache"
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/repository"
	log "github.com/sirupsen/logrus"
)

func testLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

// memoryProducts evaluates ProductFilter the way the Mongo predicate does.
type memoryProducts struct {
	mu    sync.Mutex
	items []*domain.Product
	err   error
	calls int
}

func newMemoryProducts(products ...*domain.Product) *memoryProducts {
	m := &memoryProducts{}
	_, _ = m.InsertMany(context.Background(), products)
	return m
}

func (m *memoryProducts) Find(_ context.Context, f repository.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	var out []*domain.Product
	for _, p := range m.items {
		if matches(p, f) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case repository.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case repository.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case repository.SortRatingDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(p *domain.Product, f repository.ProductFilter) bool {
	if f.Text != "" {
		term := strings.ToLower(f.Text)
		hit := strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
		for _, tag := range p.Tags {
			hit = hit || strings.Contains(strings.ToLower(tag), term)
		}
		if !hit {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}

func (m *memoryProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.items {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memoryProducts) DistinctCategories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range m.items {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (m *memoryProducts) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.items)), nil
}

func (m *memoryProducts) InsertMany(_ context.Context, products []*domain.Product) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, len(products))
	for i, p := range products {
		cp := *p
		cp.ID = fmt.Sprintf("%024x", len(m.items)+1)
		m.items = append(m.items, &cp)
		ids[i] = cp.ID
	}
	return ids, nil
}

type mockCartRepository struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	err     error
	reads   int
	version int

	// gate, when set, holds GetBySession until closed; started is signalled on entry.
	gate    chan struct{}
	started chan struct{}
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: map[string]*domain.Cart{}}
}

func (m *mockCartRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if m.gate != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
		<-m.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCartRepository) ReplaceItems(_ context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[sessionID]
	if !ok {
		c = &domain.Cart{ID: fmt.Sprintf("%024x", len(m.carts)+1), SessionID: sessionID}
		m.carts[sessionID] = c
	}
	m.version++
	c.Items = append([]domain.CartItem{}, items...)
	c.UpdatedAt = time.Unix(0, 0).Add(time.Duration(m.version) * time.Millisecond)
	cp := *c
	return &cp, nil
}

type mockCache struct {
	m          sync.RWMutex
	carts      map[string]*domain.Cart
	categories []string
	err        error
	deletes    int
	sets       int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}}
}

func (c *mockCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	cart, ok := c.carts[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *mockCache) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.sets++
	if c.err != nil {
		return c.err
	}
	if cached, ok := c.carts[sessionID]; ok && cached.UpdatedAt.After(cart.UpdatedAt) {
		return nil
	}
	c.carts[sessionID] = cart
	return nil
}

// evict drops an entry the way a TTL expiry would.
func (c *mockCache) evict(sessionID string) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.carts, sessionID)
}

func (c *mockCache) setCount() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.sets
}

func (c *mockCache) Delete(_ context.Context, sessionID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	delete(c.carts, sessionID)
	return c.err
}

func (c *mockCache) cached(sessionID string) *domain.Cart {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.carts[sessionID]
}

func (c *mockCache) GetCategories(context.Context) ([]string, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	if c.categories == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.categories, nil
}

func (c *mockCache) SetCategories(_ context.Context, categories []string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.categories = categories
	return c.err
}

type countingRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (r *countingRecorder) DegradedResponse(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	r.ops[operation]++
}

func (r *countingRecorder) count(operation string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[operation]
}

// gatedCache holds the next Set after hold is armed until release is closed.
type gatedCache struct {
	*mockCache
	hold    atomic.Bool
	held    chan struct{}
	release chan struct{}
}

func newGatedCache(inner *mockCache) *gatedCache {
	return &gatedCache{
		mockCache: inner,
		held:      make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gatedCache) Set(ctx context.Context, sessionID string, cart *domain.Cart) error {
	if g.hold.CompareAndSwap(true, false) {
		g.held <- struct{}{}
		<-g.release
	}
	return g.mockCache.Set(ctx, sessionID, cart)
}
