package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, unit_price, units_in_stock, type, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, unit_price, units_in_stock, type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query, p.Name, p.UnitPrice, p.UnitsInStock, p.Type)
	return scanProduct(row)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// orderColumns whitelists sortable columns so the ORDER BY clause is never
// built from raw user input.
var orderColumns = map[string]string{
	"product_id":     "id",
	"product_name":   "name",
	"unit_price":     "unit_price",
	"units_in_stock": "units_in_stock",
}

func (r *ProductRepository) List(ctx context.Context, input repository.ListProductsInput) ([]*domain.Product, error) {
	col, ok := orderColumns[input.OrderBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if input.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM products ORDER BY %s %s, id %s OFFSET $1 LIMIT $2`,
		productColumns, col, dir, dir)

	rows, err := r.pool.Query(ctx, query, (input.Page-1)*input.PageSize, input.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET    name           = $2,
		       unit_price     = $3,
		       units_in_stock = $4,
		       type           = $5,
		       updated_at     = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.UnitPrice, p.UnitsInStock, p.Type)
	return scanProduct(row)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.UnitPrice, &p.UnitsInStock, &p.Type,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}
