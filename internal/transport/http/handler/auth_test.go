package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/meowfish/shop-api/internal/auth"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/transport/http/handler"
	"github.com/meowfish/shop-api/internal/transport/http/middleware"
)

// ---- fakes ----

type fakeAuthUsecase struct {
	token    string
	employee *domain.Employee
	loginErr error
	infoErr  error

	gotEmail    string
	gotPassword string
	gotToken    string
}

func (f *fakeAuthUsecase) Login(_ context.Context, email, password string) (string, error) {
	f.gotEmail = email
	f.gotPassword = password
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuthUsecase) CurrentEmployee(_ context.Context, rawToken string) (*domain.Employee, error) {
	f.gotToken = rawToken
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.employee, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newAuthRouter(uc *fakeAuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewAuthHandler(uc, testLogger())

	r := gin.New()
	r.POST("/auth/login", h.Login)
	// Stand-in for the auth middleware: tests set the context keys directly.
	r.GET("/auth/employee-info", func(c *gin.Context) {
		c.Set(middleware.TokenKey, c.GetHeader("X-Test-Token"))
	}, h.EmployeeInfo)
	r.GET("/auth/user-info", h.UserInfo)
	return r
}

func postLogin(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	uc := &fakeAuthUsecase{token: "signed.jwt.token"}
	r := newAuthRouter(uc)

	w := postLogin(t, r, url.Values{
		"username": {"admin@meowfish.org"},
		"password": {"pw2023"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.AccessToken != "signed.jwt.token" {
		t.Errorf("access_token = %q", body.AccessToken)
	}
	if body.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", body.TokenType)
	}
	if uc.gotEmail != "admin@meowfish.org" || uc.gotPassword != "pw2023" {
		t.Errorf("usecase called with (%q, %q)", uc.gotEmail, uc.gotPassword)
	}
}

func TestLogin_InvalidCredentials_Unauthorized(t *testing.T) {
	uc := &fakeAuthUsecase{loginErr: domain.ErrInvalidCredentials}
	r := newAuthRouter(uc)

	w := postLogin(t, r, url.Values{
		"username": {"nobody@meowfish.org"},
		"password": {"guess"},
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["error"] != "Incorrect username or password" {
		t.Errorf("error = %q, want %q", body["error"], "Incorrect username or password")
	}
}

func TestLogin_MissingFields_BadRequest(t *testing.T) {
	r := newAuthRouter(&fakeAuthUsecase{token: "unused"})

	cases := map[string]url.Values{
		"no username":     {"password": {"pw"}},
		"no password":     {"username": {"a@b.com"}},
		"empty form":      {},
		"malformed email": {"username": {"not-an-email"}, "password": {"pw"}},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			w := postLogin(t, r, form)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLogin_UsecaseError_InternalServerError(t *testing.T) {
	uc := &fakeAuthUsecase{loginErr: errors.New("connection refused")}
	r := newAuthRouter(uc)

	w := postLogin(t, r, url.Values{
		"username": {"admin@meowfish.org"},
		"password": {"pw2023"},
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Error("internal error details leaked to the response body")
	}
}

// ---- EmployeeInfo ----

func TestEmployeeInfo_ReturnsStoredEmployee(t *testing.T) {
	uc := &fakeAuthUsecase{employee: &domain.Employee{
		ID:        7,
		Email:     "admin@meowfish.org",
		FirstName: "Louis",
		LastName:  "Huang",
		IsManager: true,
	}}
	r := newAuthRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/auth/employee-info", nil)
	req.Header.Set("X-Test-Token", "the-raw-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if uc.gotToken != "the-raw-token" {
		t.Errorf("usecase saw token %q", uc.gotToken)
	}

	var body struct {
		ID        int64  `json:"employee_id"`
		Email     string `json:"email"`
		IsManager bool   `json:"is_manager"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.ID != 7 || body.Email != "admin@meowfish.org" || !body.IsManager {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestEmployeeInfo_StaleToken_Unauthorized(t *testing.T) {
	uc := &fakeAuthUsecase{infoErr: domain.ErrTokenInvalid}
	r := newAuthRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/auth/employee-info", nil)
	req.Header.Set("X-Test-Token", "stale")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}
}

// ---- UserInfo ----

func TestUserInfo_EchoesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewAuthHandler(&fakeAuthUsecase{}, testLogger())

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	claims := &auth.Claims{
		FirstName: "Alice",
		LastName:  "Maxwell",
		IsManager: false,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	r := gin.New()
	r.GET("/auth/user-info", func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, claims)
	}, h.UserInfo)

	req := httptest.NewRequest(http.MethodGet, "/auth/user-info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var body struct {
		Sub       string `json:"sub"`
		FirstName string `json:"first_name"`
		IsManager bool   `json:"is_manager"`
		Exp       int64  `json:"exp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Sub != "2" || body.FirstName != "Alice" || body.IsManager {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Exp != exp.Unix() {
		t.Errorf("exp = %d, want %d", body.Exp, exp.Unix())
	}
}

func TestUserInfo_NoClaims_Unauthorized(t *testing.T) {
	r := newAuthRouter(&fakeAuthUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/auth/user-info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
