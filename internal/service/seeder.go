package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/holocommerce/storefront/internal/domain"
	"github.com/holocommerce/storefront/internal/repository"
	log "github.com/sirupsen/logrus"
)

// Seeder fills an empty catalog with the demo products.
type Seeder struct {
	products repository.ProductRepository
	catalog  func() []*domain.Product
	logger   *log.Entry
}

func NewSeeder(products repository.ProductRepository, logger *log.Entry) *Seeder {
	return &Seeder{
		products: products,
		catalog:  DemoProducts,
		logger:   logger.WithField("component", "seeder"),
	}
}

// Seed inserts the demo catalog only when the product collection is empty and
// returns how many products were written. An unavailable store is skipped silently.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	n, err := s.products.Count(ctx)
	if errors.Is(err, repository.ErrStoreUnavailable) {
		s.logger.Info("store unavailable, skipping catalog seed")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		s.logger.WithField("products", n).Debug("catalog already populated")
		return 0, nil
	}

	catalog := s.catalog()
	for _, p := range catalog {
		if !p.Valid() {
			return 0, fmt.Errorf("seed product %q: price must be >= 0 and rating within [%d, %d]",
				p.Title, domain.MinRating, domain.MaxRating)
		}
	}

	ids, err := s.products.InsertMany(ctx, catalog)
	if err != nil {
		return 0, fmt.Errorf("insert demo products: %w", err)
	}

	s.logger.WithField("products", len(ids)).Info("seeded demo catalog")
	return len(ids), nil
}

const unsplash = "https://images.unsplash.com/"

func photo(id string) string {
	return unsplash + id + "?q=80&w=1600&auto=format&fit=crop"
}

// DemoProducts returns a fresh copy of the demo catalog.
func DemoProducts() []*domain.Product {
	return []*domain.Product{
		{
			Title:       "Aether Chrono X1",
			Description: "Premium titanium watch with sapphire crystal, neon lume, and quantum-precision movement.",
			Price:       1299.0,
			Category:    "Watches",
			InStock:     true,
			Image:       photo("photo-1518544801976-3e188ae4fab1"),
			Gallery: []string{
				photo("photo-1524805444758-089113d48a6f"),
				photo("photo-1516826957135-700dedea698c"),
			},
			Colors:    []string{"titanium", "onyx"},
			Materials: []string{"titanium", "sapphire"},
			Rating:    4.9,
			Featured:  true,
			Tags:      []string{"chrono", "luxury", "neon"},
		},
		{
			Title:       "Nebula Wallet Pro",
			Description: "Slim carbon-fiber wallet with RFID shield and magnetic quick-access.",
			Price:       189.0,
			Category:    "Wallets",
			InStock:     true,
			Image:       photo("photo-1610701592028-0b4f6a9817d4"),
			Gallery:     []string{},
			Colors:      []string{"carbon", "silver"},
			Materials:   []string{"carbon fiber", "aluminum"},
			Rating:      4.7,
			Featured:    true,
			Tags:        []string{"rfid", "slim"},
		},
		{
			Title:       "Flux Rings Set",
			Description: "Stackable rings with iridescent finish and subtle lumen edge.",
			Price:       129.0,
			Category:    "Jewelry",
			InStock:     true,
			Image:       photo("photo-1522335789203-aabd1fc54bc9"),
			Gallery:     []string{},
			Colors:      []string{"violet", "steel"},
			Materials:   []string{"steel"},
			Rating:      4.6,
			Featured:    false,
			Tags:        []string{"rings", "iridescent"},
		},
		{
			Title:       "Spectra AR Shades",
			Description: "Next-gen eyewear with polarized optics and AR-ready frame.",
			Price:       349.0,
			Category:    "Eyewear",
			InStock:     true,
			Image:       photo("photo-1511499767150-a48a237f0083"),
			Gallery:     []string{},
			Colors:      []string{"black", "smoke"},
			Materials:   []string{"polycarbonate"},
			Rating:      4.5,
			Featured:    true,
			Tags:        []string{"ar", "polarized"},
		},
		{
			Title:       "Pulse Band S",
			Description: "Holographic wearable with health telemetry and soft neon glow.",
			Price:       499.0,
			Category:    "Wearables",
			InStock:     true,
			Image:       photo("photo-1526401485004-2fda9f4fced4"),
			Gallery:     []string{},
			Colors:      []string{"teal", "violet"},
			Materials:   []string{"silicone", "aluminum"},
			Rating:      4.4,
			Featured:    false,
			Tags:        []string{"health", "wearable"},
		},
		{
			Title:       "Ion Dock +",
			Description: "Minimal magnetic charger with soft white halo illumination.",
			Price:       89.0,
			Category:    "Tech",
			InStock:     true,
			Image:       photo("photo-1517495306984-937b1812c8a7"),
			Gallery:     []string{},
			Colors:      []string{"white", "graphite"},
			Materials:   []string{"aluminum"},
			Rating:      4.3,
			Featured:    false,
			Tags:        []string{"charger", "dock"},
		},
	}
}
