package services

import (
	"context"
	"log"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
	"github.com/lightmyfireadmin/plombipro-app/internal/scraper"
)

// CatalogScraper reads a supplier site into products.
type CatalogScraper interface {
	ScrapeSite(ctx context.Context, site scraper.Site) ([]models.Product, error)
}

// ICatalogService refreshes supplier catalogues.
type ICatalogService interface {
	Refresh(ctx context.Context, site scraper.Site) (int, error)
}

type catalogService struct {
	scraper  CatalogScraper
	products repository.IProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(s CatalogScraper, products repository.IProductRepository) ICatalogService {
	return &catalogService{scraper: s, products: products}
}

// Refresh scrapes the site and upserts every product. It returns the number
// of rows written.
func (s *catalogService) Refresh(ctx context.Context, site scraper.Site) (int, error) {
	products, err := s.scraper.ScrapeSite(ctx, site)
	if err != nil {
		return 0, err
	}

	written := 0
	for i := range products {
		if err := s.products.Upsert(ctx, &products[i]); err != nil {
			log.Printf("Catalog: %v", err)
			continue
		}
		written++
	}
	log.Printf("Catalog: %s refreshed, %d of %d products written", site.Source, written, len(products))
	return written, nil
}
