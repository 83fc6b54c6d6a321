package repository

import (
	"context"

	"github.com/meowfish/shop-api/internal/domain"
)

type ListProductsInput struct {
	Page     int
	PageSize int
	OrderBy  string // whitelisted column name
	Desc     bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, input ListProductsInput) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}
