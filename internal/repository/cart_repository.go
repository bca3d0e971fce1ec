package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartCollection = "cart"

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection(cartCollection),
	}
}

func (m *mongoCartRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, classify(fmt.Errorf("failed to get cart: %w", err))
	}

	return toCart(&doc), nil
}

// ReplaceItems overwrites the whole items list in one find-and-modify, so two first
// writes for the same session converge on a single document.
func (m *mongoCartRepository) ReplaceItems(ctx context.Context, sessionID string, items []domain.CartItem) (*domain.Cart, error) {
	now := time.Now()

	filter := bson.M{"session_id": sessionID}
	update := bson.M{
		"$set": bson.M{
			"items":      fromCartItems(items),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc cartDocument
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race against the unique session index; the retry matches the winner
		err = m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to upsert cart: %w", err))
	}

	return toCart(&doc), nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return classify(fmt.Errorf("failed to create indexes: %w", err))
	}

	return nil
}
