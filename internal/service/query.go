package service

import (
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/repository"
)

const (
	DefaultLimit = 50
	MinLimit     = 1
	MaxLimit     = 200
)

// ProductQuery carries the listing parameters. Nil pointers mean "not given".
type ProductQuery struct {
	Q        string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Featured *bool
	Sort     string
	Limit    *int
}

// ProductPage is the listing result. Total is the number of items returned, after the limit.
type ProductPage struct {
	Items []*domain.Product `json:"items"`
	Total int               `json:"total"`
}

func (q ProductQuery) Validate() error {
	if q.Limit != nil && (*q.Limit < MinLimit || *q.Limit > MaxLimit) {
		return invalid("limit", "must be between %d and %d", MinLimit, MaxLimit)
	}
	if q.MinPrice != nil && *q.MinPrice < 0 {
		return invalid("min_price", "must be greater than or equal to 0")
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		return invalid("max_price", "must be greater than or equal to 0")
	}
	return nil
}

// Filter converts a validated query. An inverted price range is kept as is and matches nothing.
func (q ProductQuery) Filter() repository.ProductFilter {
	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	return repository.ProductFilter{
		Text:     q.Q,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Featured: q.Featured,
		Sort:     repository.ParseSortOrder(q.Sort),
		Limit:    limit,
	}
}
