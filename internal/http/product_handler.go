package http

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/service"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	ListProducts(ctx context.Context, q service.ProductQuery) (*service.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(catalog Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.catalog.ListProducts(ctx, q)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// parseProductQuery reads the listing parameters. Empty values count as absent;
// values that do not parse are validation errors.
func parseProductQuery(values url.Values) (service.ProductQuery, error) {
	q := service.ProductQuery{
		Q:        values.Get("q"),
		Category: values.Get("category"),
		Sort:     values.Get("sort"),
	}

	var err error
	if q.MinPrice, err = parseFloat(values, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parseFloat(values, "max_price"); err != nil {
		return q, err
	}
	if q.Featured, err = parseBool(values, "featured"); err != nil {
		return q, err
	}
	if raw := values.Get("limit"); raw != "" {
		n, errAtoi := strconv.Atoi(raw)
		if errAtoi != nil {
			return q, &service.ValidationError{Field: "limit", Message: "must be an integer"}
		}
		q.Limit = &n
	}
	return q, nil
}

func parseFloat(values url.Values, key string) (*float64, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &service.ValidationError{Field: key, Message: "must be a number"}
	}
	return &f, nil
}

// parseBool accepts the usual boolean spellings in any letter case:
// true/false, 1/0, t/f, yes/no, y/n, on/off.
func parseBool(values url.Values, key string) (*bool, error) {
	raw := strings.ToLower(strings.TrimSpace(values.Get(key)))
	if raw == "" {
		return nil, nil
	}
	var b bool
	switch raw {
	case "yes", "y", "on":
		b = true
	case "no", "n", "off":
		b = false
	default:
		var err error
		if b, err = strconv.ParseBool(raw); err != nil {
			return nil, &service.ValidationError{Field: key, Message: "must be a boolean"}
		}
	}
	return &b, nil
}
