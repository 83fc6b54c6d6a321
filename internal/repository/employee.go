package repository

import (
	"context"
	"time"

	"github.com/meowfish/shop-api/internal/domain"
)

// Usecases depend on interfaces, not concrete implementations, so the DB can
// be swapped and tests can inject fakes.
type EmployeeRepository interface {
	// FindByEmail returns domain.ErrEmployeeNotFound when no row matches.
	FindByEmail(ctx context.Context, email string) (*domain.Employee, error)

	// Create inserts a new employee. hireDate defaults to today when zero.
	Create(ctx context.Context, e *domain.Employee, hireDate time.Time) (*domain.Employee, error)

	// Exists reports whether an employee with the email is already present.
	Exists(ctx context.Context, email string) (bool, error)
}
