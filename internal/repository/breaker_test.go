package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	calls int
	err   error
	items []*domain.Product
}

func (s *stubProducts) Find(context.Context, ProductFilter) ([]*domain.Product, error) {
	s.calls++
	return s.items, s.err
}

func (s *stubProducts) GetByID(context.Context, string) (*domain.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items[0], nil
}

func (s *stubProducts) DistinctCategories(context.Context) ([]string, error) {
	s.calls++
	return nil, s.err
}

func (s *stubProducts) Count(context.Context) (int64, error) {
	s.calls++
	return int64(len(s.items)), s.err
}

func (s *stubProducts) InsertMany(context.Context, []*domain.Product) ([]string, error) {
	s.calls++
	return nil, s.err
}

func TestBreaker_PassesResultsThrough(t *testing.T) {
	stub := &stubProducts{items: []*domain.Product{{ID: "a"}, {ID: "b"}}}
	repo := GuardProducts(stub, NewBreaker(BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}, nil))

	items, err := repo.Find(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBreaker_OpensAfterUnavailableErrors(t *testing.T) {
	stub := &stubProducts{err: ErrStoreUnavailable}
	breaker := NewBreaker(BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}, nil)
	repo := GuardProducts(stub, breaker)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.Find(ctx, ProductFilter{})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	}
	assert.True(t, breaker.Open())

	_, err := repo.Find(ctx, ProductFilter{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 2, stub.calls, "open breaker must not reach the store")
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	stub := &stubProducts{err: ErrProductNotFound}
	breaker := NewBreaker(BreakerConfig{MaxFailures: 1, OpenTimeout: time.Minute}, nil)
	repo := GuardProducts(stub, breaker)

	for i := 0; i < 3; i++ {
		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	}
	assert.False(t, breaker.Open())
	assert.Equal(t, 3, stub.calls)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrStoreUnavailable)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), context.DeadlineExceeded)

	plain := errors.New("decode failed")
	assert.Equal(t, plain, classify(plain))
	assert.NotErrorIs(t, classify(plain), ErrStoreUnavailable)
}
