package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/meowfish/shop-api/internal/auth"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
)

type AuthUsecase struct {
	employees repository.EmployeeRepository
	tokens    *auth.TokenService
}

func NewAuthUsecase(employees repository.EmployeeRepository, tokens *auth.TokenService) *AuthUsecase {
	return &AuthUsecase{
		employees: employees,
		tokens:    tokens,
	}
}

// Authenticate verifies the email/password pair. Unknown email and wrong
// password share one failure path: both return ErrInvalidCredentials, so a
// caller can never probe which half was wrong.
func (u *AuthUsecase) Authenticate(ctx context.Context, email, password string) (*domain.Employee, error) {
	employee, err := u.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}

	if !auth.VerifyPassword(password, employee.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return employee, nil
}

// Login authenticates and issues an access token with the long login TTL.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	employee, err := u.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := u.tokens.Issue(employee, u.tokens.LoginTTL())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// CurrentEmployee validates the token and resolves its subject back to an
// employee record. A token whose subject does not resolve fails the same way
// as an invalid token.
func (u *AuthUsecase) CurrentEmployee(ctx context.Context, rawToken string) (*domain.Employee, error) {
	claims, err := u.tokens.Validate(rawToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	employee, err := u.employees.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	return employee, nil
}

// ValidateToken exposes claim validation for the middleware layer.
func (u *AuthUsecase) ValidateToken(rawToken string) (*auth.Claims, error) {
	return u.tokens.Validate(rawToken)
}
