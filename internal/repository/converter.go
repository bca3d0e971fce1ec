package repository

import (
	"time"

	"github.com/holocommerce/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	InStock     bool               `bson:"in_stock"`
	Image       string             `bson:"image"`
	Gallery     []string           `bson:"gallery"`
	Colors      []string           `bson:"colors"`
	Materials   []string           `bson:"materials"`
	Rating      float64            `bson:"rating"`
	Featured    bool               `bson:"featured"`
	ModelURL    *string            `bson:"model_url"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty"`
}

type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SessionID string             `bson:"session_id"`
	Items     []cartItemDocument `bson:"items"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty"`
}

type cartItemDocument struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

// toProduct is the single place where the store key becomes the public id.
func toProduct(d *productDocument) *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		InStock:     d.InStock,
		Image:       d.Image,
		Gallery:     nonNil(d.Gallery),
		Colors:      nonNil(d.Colors),
		Materials:   nonNil(d.Materials),
		Rating:      d.Rating,
		Featured:    d.Featured,
		ModelURL:    d.ModelURL,
		Tags:        nonNil(d.Tags),
	}
}

func fromProduct(p *domain.Product, now time.Time) *productDocument {
	return &productDocument{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		InStock:     p.InStock,
		Image:       p.Image,
		Gallery:     nonNil(p.Gallery),
		Colors:      nonNil(p.Colors),
		Materials:   nonNil(p.Materials),
		Rating:      p.Rating,
		Featured:    p.Featured,
		ModelURL:    p.ModelURL,
		Tags:        nonNil(p.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func toCart(d *cartDocument) *domain.Cart {
	items := make([]domain.CartItem, len(d.Items))
	for i, item := range d.Items {
		items[i] = domain.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return &domain.Cart{
		ID:        d.ID.Hex(),
		SessionID: d.SessionID,
		Items:     items,
		UpdatedAt: d.UpdatedAt,
	}
}

func fromCartItems(items []domain.CartItem) []cartItemDocument {
	docs := make([]cartItemDocument, len(items))
	for i, item := range items {
		docs[i] = cartItemDocument{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return docs
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
