package repository

import (
	"context"
	"fmt"

	"github.com/holocommerce/storefront/internal/domain"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the document store handle shared by the services. A Store built by
// NewUnavailableStore (or one whose breaker is open) reports StateUnavailable and
// its repositories fail with ErrStoreUnavailable.
type Store struct {
	db       *mongo.Database
	breaker  *Breaker
	products ProductRepository
	carts    CartRepository
	indexer  interface{ CreateIndexes(context.Context) error }
}

type OpenOptions struct {
	Mongo   MongoOptions
	Breaker BreakerConfig
}

// Open connects to MongoDB. It never fails: a missing URI or a failed connection
// yields an unavailable store so the read paths keep serving degraded results.
func Open(ctx context.Context, opts OpenOptions, logger *log.Entry) *Store {
	if opts.Mongo.URI == "" {
		logger.Warn("DATABASE_URL not set, running without document store")
		return NewUnavailableStore()
	}

	db, err := ConnectMongoDB(ctx, opts.Mongo)
	if err != nil {
		logger.WithError(err).Warn("document store unreachable, running degraded")
		return NewUnavailableStore()
	}

	logger.WithField("database", opts.Mongo.Database).Info("connected to MongoDB")
	return NewStore(db, NewBreaker(opts.Breaker, logger))
}

func NewStore(db *mongo.Database, breaker *Breaker) *Store {
	carts := NewMongoCartRepository(db)
	return &Store{
		db:       db,
		breaker:  breaker,
		products: GuardProducts(NewMongoProductRepository(db), breaker),
		carts:    GuardCarts(carts, breaker),
		indexer:  carts.(*mongoCartRepository),
	}
}

func NewUnavailableStore() *Store {
	return &Store{
		products: unavailableProducts{},
		carts:    unavailableCarts{},
	}
}

func (s *Store) State() State {
	if s.db == nil || (s.breaker != nil && s.breaker.Open()) {
		return StateUnavailable
	}
	return StateReady
}

func (s *Store) Products() ProductRepository { return s.products }

func (s *Store) Carts() CartRepository { return s.carts }

// EnsureIndexes creates the unique session index on the cart collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.indexer == nil {
		return ErrStoreUnavailable
	}
	return s.indexer.CreateIndexes(ctx)
}

// Diagnostics describes the store for the diagnostic endpoint.
type Diagnostics struct {
	State        State
	DatabaseName string
	Collections  []string
}

// Diagnose lists up to ten collection names. An error means the database is
// reachable by configuration but the listing failed.
func (s *Store) Diagnose(ctx context.Context) (*Diagnostics, error) {
	d := &Diagnostics{State: s.State(), Collections: []string{}}
	if s.db == nil {
		return d, nil
	}
	d.DatabaseName = s.db.Name()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return d, classify(fmt.Errorf("failed to list collections: %w", err))
	}
	if len(names) > 10 {
		names = names[:10]
	}
	d.Collections = names
	return d, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return classify(fmt.Errorf("failed to ping MongoDB: %w", err))
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Client().Disconnect(ctx)
}

type unavailableProducts struct{}

func (unavailableProducts) Find(context.Context, ProductFilter) ([]*domain.Product, error) {
	return nil, ErrStoreUnavailable
}

func (unavailableProducts) GetByID(context.Context, string) (*domain.Product, error) {
	return nil, ErrStoreUnavailable
}

func (unavailableProducts) DistinctCategories(context.Context) ([]string, error) {
	return nil, ErrStoreUnavailable
}

func (unavailableProducts) Count(context.Context) (int64, error) {
	return 0, ErrStoreUnavailable
}

func (unavailableProducts) InsertMany(context.Context, []*domain.Product) ([]string, error) {
	return nil, ErrStoreUnavailable
}

type unavailableCarts struct{}

func (unavailableCarts) GetBySession(context.Context, string) (*domain.Cart, error) {
	return nil, ErrStoreUnavailable
}

func (unavailableCarts) ReplaceItems(context.Context, string, []domain.CartItem) (*domain.Cart, error) {
	return nil, ErrStoreUnavailable
}
