package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const productCollection = "product"

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection(productCollection),
	}
}

func (m *mongoProductRepository) Find(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	cursor, err := m.collection.Find(ctx, filter.BSON(), filter.findOptions())
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query products: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify(fmt.Errorf("failed to decode products: %w", err))
	}

	products := make([]*domain.Product, len(docs))
	for i := range docs {
		products[i] = toProduct(&docs[i])
	}
	return products, nil
}

func (m *mongoProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var doc productDocument
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, classify(fmt.Errorf("failed to get product: %w", err))
	}

	return toProduct(&doc), nil
}

func (m *mongoProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := m.collection.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list categories: %w", err))
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func (m *mongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, classify(fmt.Errorf("failed to count products: %w", err))
	}
	return n, nil
}

func (m *mongoProductRepository) InsertMany(ctx context.Context, products []*domain.Product) ([]string, error) {
	if len(products) == 0 {
		return []string{}, nil
	}

	now := time.Now()
	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = fromProduct(p, now)
	}

	res, err := m.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to insert products: %w", err))
	}

	ids := make([]string, 0, len(res.InsertedIDs))
	for _, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}
	return ids, nil
}
