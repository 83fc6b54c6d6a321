package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
	"github.com/meowfish/shop-api/internal/transport/http/handler"
	"github.com/meowfish/shop-api/internal/usecase"
)

// ---- fakes ----

type fakeProductUsecase struct {
	product *domain.Product
	list    []*domain.Product
	runID   string
	err     error

	gotCreate usecase.ProductInput
	gotList   repository.ListProductsInput
	gotID     int64
	deleted   int64
}

func (f *fakeProductUsecase) Create(_ context.Context, input usecase.ProductInput) (*domain.Product, string, error) {
	f.gotCreate = input
	if f.err != nil {
		return nil, "", f.err
	}
	return f.product, f.runID, nil
}

func (f *fakeProductUsecase) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductUsecase) List(_ context.Context, input repository.ListProductsInput) ([]*domain.Product, error) {
	f.gotList = input
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeProductUsecase) Update(_ context.Context, id int64, input usecase.ProductInput) (*domain.Product, error) {
	f.gotID = id
	f.gotCreate = input
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductUsecase) Delete(_ context.Context, id int64) error {
	f.deleted = id
	return f.err
}

func newProductRouter(uc *fakeProductUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewProductHandler(uc, testLogger())

	r := gin.New()
	r.POST("/products", h.Create)
	r.GET("/products", h.List)
	r.GET("/products/:id", h.GetByID)
	r.PUT("/products/:id", h.Update)
	r.DELETE("/products/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var iphone = &domain.Product{
	ID:           1,
	Name:         "Iphone 15",
	UnitPrice:    999.99,
	UnitsInStock: 10,
	Type:         domain.ProductPhone,
}

// ---- Create ----

func TestCreateProduct_ReturnsProductAndRunID(t *testing.T) {
	uc := &fakeProductUsecase{product: iphone, runID: "run-123"}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodPost, "/products",
		`{"product_name": "iphone 15", "unit_price": 999.99, "units_in_stock": 10, "type": "phone"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var body struct {
		ID                int64   `json:"product_id"`
		Name              string  `json:"product_name"`
		UnitPrice         float64 `json:"unit_price"`
		NotificationRunID string  `json:"notification_run_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.ID != 1 || body.Name != "Iphone 15" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.NotificationRunID != "run-123" {
		t.Errorf("notification_run_id = %q, want run-123", body.NotificationRunID)
	}
	if uc.gotCreate.Name != "iphone 15" {
		t.Errorf("usecase got name %q, want raw request value", uc.gotCreate.Name)
	}
}

func TestCreateProduct_EnqueueFailed_RunIDOmitted(t *testing.T) {
	uc := &fakeProductUsecase{product: iphone, runID: ""}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodPost, "/products",
		`{"product_name": "iphone 15", "unit_price": 999.99}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if strings.Contains(w.Body.String(), "notification_run_id") {
		t.Error("empty notification_run_id should be omitted from the response")
	}
}

func TestCreateProduct_InvalidBody_BadRequest(t *testing.T) {
	r := newProductRouter(&fakeProductUsecase{product: iphone})

	cases := map[string]string{
		"missing name":   `{"unit_price": 10}`,
		"zero price":     `{"product_name": "x", "unit_price": 0}`,
		"negative price": `{"product_name": "x", "unit_price": -5}`,
		"negative stock": `{"product_name": "x", "unit_price": 10, "units_in_stock": -1}`,
		"unknown type":   `{"product_name": "x", "unit_price": 10, "type": "laptop"}`,
		"not json":       `product_name=x`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/products", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
		})
	}
}

// ---- GetByID ----

func TestGetProduct_Found(t *testing.T) {
	uc := &fakeProductUsecase{product: iphone}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodGet, "/products/1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if uc.gotID != 1 {
		t.Errorf("usecase got id %d, want 1", uc.gotID)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	uc := &fakeProductUsecase{err: domain.ErrProductNotFound}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodGet, "/products/99", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetProduct_NonNumericID_BadRequest(t *testing.T) {
	r := newProductRouter(&fakeProductUsecase{product: iphone})

	w := doJSON(t, r, http.MethodGet, "/products/abc", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// ---- List ----

func TestListProducts_Defaults(t *testing.T) {
	uc := &fakeProductUsecase{list: []*domain.Product{iphone}}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodGet, "/products", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	want := repository.ListProductsInput{Page: 1, PageSize: 3, OrderBy: "product_id", Desc: false}
	if uc.gotList != want {
		t.Errorf("list input = %+v, want %+v", uc.gotList, want)
	}
}

func TestListProducts_ExplicitQuery(t *testing.T) {
	uc := &fakeProductUsecase{list: nil}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodGet, "/products?page=2&page_size=10&order_by=unit_price&direction=desc", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	want := repository.ListProductsInput{Page: 2, PageSize: 10, OrderBy: "unit_price", Desc: true}
	if uc.gotList != want {
		t.Errorf("list input = %+v, want %+v", uc.gotList, want)
	}

	// Empty page still serializes as a JSON array.
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestListProducts_RejectsUnknownOrderColumn(t *testing.T) {
	r := newProductRouter(&fakeProductUsecase{})

	w := doJSON(t, r, http.MethodGet, "/products?order_by=password", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

// ---- Update / Delete ----

func TestUpdateProduct_NotFound(t *testing.T) {
	uc := &fakeProductUsecase{err: domain.ErrProductNotFound}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodPut, "/products/99",
		`{"product_name": "x", "unit_price": 10}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteProduct_NoContent(t *testing.T) {
	uc := &fakeProductUsecase{}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodDelete, "/products/7", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if uc.deleted != 7 {
		t.Errorf("deleted id = %d, want 7", uc.deleted)
	}
}

func TestDeleteProduct_NotFound(t *testing.T) {
	uc := &fakeProductUsecase{err: domain.ErrProductNotFound}
	r := newProductRouter(uc)

	w := doJSON(t, r, http.MethodDelete, "/products/99", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
