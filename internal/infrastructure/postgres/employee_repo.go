package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowfish/shop-api/internal/domain"
)

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_manager,
		       hire_date, created_at, updated_at
		FROM employees
		WHERE email = $1`

	row := r.pool.QueryRow(ctx, query, email)
	return scanEmployee(row)
}

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee, hireDate time.Time) (*domain.Employee, error) {
	if hireDate.IsZero() {
		hireDate = time.Now()
	}

	query := `
		INSERT INTO employees (email, password_hash, first_name, last_name, is_manager, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, password_hash, first_name, last_name, is_manager,
		          hire_date, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query,
		e.Email,
		e.PasswordHash,
		e.FirstName,
		e.LastName,
		e.IsManager,
		hireDate,
	)
	return scanEmployee(row)
}

func (r *EmployeeRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("employee exists: %w", err)
	}
	return exists, nil
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID, &e.Email, &e.PasswordHash, &e.FirstName, &e.LastName,
		&e.IsManager, &e.HireDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &e, nil
}
