package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// notificationEnqueuer is the subset of the queue the product usecase needs.
// Defined here (point of use) so tests can inject a fake.
type notificationEnqueuer interface {
	Enqueue(ctx context.Context, targetID int64, kind domain.NotificationKind) (string, error)
}

type ProductUsecase struct {
	products repository.ProductRepository
	queue    notificationEnqueuer
	logger   *slog.Logger
}

func NewProductUsecase(products repository.ProductRepository, queue notificationEnqueuer, logger *slog.Logger) *ProductUsecase {
	return &ProductUsecase{
		products: products,
		queue:    queue,
		logger:   logger.With("component", "product_usecase"),
	}
}

// titleCase normalizes product names on write. A Caser is stateful and not
// safe for concurrent use, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

type ProductInput struct {
	Name         string
	UnitPrice    float64
	UnitsInStock int
	Type         domain.ProductType
}

// Create inserts the product and enqueues a creation notification. The run ID
// is returned alongside the product; an enqueue failure is logged but does not
// fail the creation — the notification is fire-and-forget.
func (u *ProductUsecase) Create(ctx context.Context, input ProductInput) (*domain.Product, string, error) {
	product := &domain.Product{
		Name:         titleCase(input.Name),
		UnitPrice:    input.UnitPrice,
		UnitsInStock: input.UnitsInStock,
		Type:         input.Type,
	}
	if product.Type == "" {
		product.Type = domain.ProductOther
	}

	created, err := u.products.Create(ctx, product)
	if err != nil {
		return nil, "", fmt.Errorf("create product: %w", err)
	}

	runID, err := u.queue.Enqueue(ctx, created.ID, domain.NotificationProduct)
	if err != nil {
		u.logger.ErrorContext(ctx, "enqueue product notification", "product_id", created.ID, "error", err)
		runID = ""
	}

	return created, runID, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (u *ProductUsecase) List(ctx context.Context, input repository.ListProductsInput) ([]*domain.Product, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize < 1 {
		input.PageSize = 3
	}

	products, err := u.products.List(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (u *ProductUsecase) Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		ID:           id,
		Name:         titleCase(input.Name),
		UnitPrice:    input.UnitPrice,
		UnitsInStock: input.UnitsInStock,
		Type:         input.Type,
	}
	if product.Type == "" {
		product.Type = domain.ProductOther
	}

	updated, err := u.products.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
