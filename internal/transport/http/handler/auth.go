package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/transport/http/middleware"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (string, error)
	CurrentEmployee(ctx context.Context, rawToken string) (*domain.Employee, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

// loginRequest is form-encoded, OAuth2 password-flow style.
type loginRequest struct {
	Username string `form:"username" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /auth/login
// One uniform 401 for unknown email and wrong password alike.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authUsecase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": errIncorrectCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

type employeeInfoResponse struct {
	ID        int64  `json:"employee_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsManager bool   `json:"is_manager"`
}

// GET /auth/employee-info
// Resolves the token subject back to the stored employee record.
func (h *AuthHandler) EmployeeInfo(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)

	employee, err := h.authUsecase.CurrentEmployee(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": errCouldNotValidate})
			return
		}
		h.logger.Error("employee info", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, employeeInfoResponse{
		ID:        employee.ID,
		Email:     employee.Email,
		FirstName: employee.FirstName,
		LastName:  employee.LastName,
		IsManager: employee.IsManager,
	})
}

// GET /auth/user-info
// Echoes the already-validated claims without touching the database.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": errCouldNotValidate})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sub":        claims.Subject,
		"first_name": claims.FirstName,
		"last_name":  claims.LastName,
		"is_manager": claims.IsManager,
		"exp":        claims.ExpiresAt.Unix(),
	})
}
