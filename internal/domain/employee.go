package domain

import (
	"errors"
	"time"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrInvalidCredentials is the single failure for login: unknown email and
	// wrong password must be indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrNotManager         = errors.New("only managers can access this endpoint")
)

type Employee struct {
	ID           int64
	Email        string
	PasswordHash string // never serialized or logged
	FirstName    string
	LastName     string
	IsManager    bool
	HireDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
