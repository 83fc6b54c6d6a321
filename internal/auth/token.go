package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/meowfish/shop-api/internal/domain"
)

// Claims is the payload carried by every access token. Subject is the
// employee's email.
type Claims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	IsManager bool   `json:"is_manager"`
	jwt.RegisteredClaims
}

// TokenService signs and validates access tokens. The secret and signing
// method are fixed at construction and never change for the process lifetime.
type TokenService struct {
	secret   []byte
	shortTTL time.Duration
	longTTL  time.Duration
}

func NewTokenService(secret []byte, shortTTL, longTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   secret,
		shortTTL: shortTTL,
		longTTL:  longTTL,
	}
}

// LoginTTL is the lifetime used for tokens issued by the interactive login
// endpoint (longer than the default access TTL).
func (s *TokenService) LoginTTL() time.Duration {
	return s.longTTL
}

// Issue signs a token for the employee. ttl <= 0 falls back to the default
// access TTL.
func (s *TokenService) Issue(employee *domain.Employee, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.shortTTL
	}

	now := time.Now()
	claims := Claims{
		FirstName: employee.FirstName,
		LastName:  employee.LastName,
		IsManager: employee.IsManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employee.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token. Every failure mode — bad signature,
// wrong algorithm, expiry, malformed payload, missing subject — collapses into
// domain.ErrTokenInvalid so the caller cannot tell them apart.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
