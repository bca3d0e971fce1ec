package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SortOrder string

const (
	SortNatural    SortOrder = ""
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc"
)

// ParseSortOrder maps unknown values to SortNatural.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(s); o {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return o
	default:
		return SortNatural
	}
}

// ProductFilter is the catalog predicate. Nil or empty fields are not applied.
type ProductFilter struct {
	Text     string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Featured *bool
	Sort     SortOrder
	Limit    int
}

// BSON builds the conjunctive store predicate. The text term is a literal,
// case-insensitive substring matched against title, description or any tag.
func (f ProductFilter) BSON() bson.M {
	filter := bson.M{}

	if f.Text != "" {
		pattern := regexp.QuoteMeta(f.Text)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	if f.Category != "" {
		filter["category"] = f.Category
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	return filter
}

// SortSpec returns nil for natural order. Ties fall back to _id, which follows insertion order.
func (f ProductFilter) SortSpec() bson.D {
	switch f.Sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case SortRatingDesc:
		return bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return nil
	}
}

func (f ProductFilter) findOptions() *options.FindOptions {
	opts := options.Find()
	if sort := f.SortSpec(); sort != nil {
		opts.SetSort(sort)
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return opts
}
