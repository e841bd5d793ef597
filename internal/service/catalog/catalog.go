// Package catalog manages the offered cleaning services and their prices.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
)

type CreateParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

type CatalogService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CatalogService {
	return &CatalogService{storage: storage}
}

func (s *CatalogService) CreateService(ctx context.Context, p CreateParams) (models.Service, error) {
	return s.storage.Service().CreateService(ctx, repository.CreateServiceParams{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	})
}

func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.storage.Service().ListServices(ctx)
}
