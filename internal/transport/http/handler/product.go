package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
	"github.com/meowfish/shop-api/internal/usecase"
)

type productUsecaser interface {
	Create(ctx context.Context, input usecase.ProductInput) (*domain.Product, string, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, input repository.ListProductsInput) ([]*domain.Product, error)
	Update(ctx context.Context, id int64, input usecase.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	productUsecase productUsecaser
	logger         *slog.Logger
}

func NewProductHandler(productUsecase productUsecaser, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		logger:         logger.With("component", "product_handler"),
	}
}

type productRequest struct {
	Name         string             `json:"product_name"   binding:"required"`
	UnitPrice    float64            `json:"unit_price"     binding:"required,gt=0"`
	UnitsInStock int                `json:"units_in_stock" binding:"gte=0"`
	Type         domain.ProductType `json:"type"           binding:"omitempty,oneof=phone accessory other"`
}

type productResponse struct {
	ID           int64              `json:"product_id"`
	Name         string             `json:"product_name"`
	UnitPrice    float64            `json:"unit_price"`
	UnitsInStock int                `json:"units_in_stock"`
	Type         domain.ProductType `json:"type"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type createProductResponse struct {
	productResponse
	// Run ID of the async creation notification; empty if the enqueue failed.
	NotificationRunID string `json:"notification_run_id,omitempty"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		UnitsInStock: p.UnitsInStock,
		Type:         p.Type,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// POST /products — manager only.
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, runID, err := h.productUsecase.Create(c.Request.Context(), usecase.ProductInput{
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		UnitsInStock: req.UnitsInStock,
		Type:         req.Type,
	})
	if err != nil {
		h.logger.Error("create product", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, createProductResponse{
		productResponse:   toProductResponse(product),
		NotificationRunID: runID,
	})
}

// GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.productUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProductNotFound})
			return
		}
		h.logger.Error("get product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

type listProductsQuery struct {
	Page      int    `form:"page,default=1"       binding:"min=1"`
	PageSize  int    `form:"page_size,default=3"  binding:"min=1,max=100"`
	OrderBy   string `form:"order_by,default=product_id" binding:"oneof=product_id product_name unit_price units_in_stock"`
	Direction string `form:"direction,default=asc" binding:"oneof=asc desc"`
}

// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.productUsecase.List(c.Request.Context(), repository.ListProductsInput{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		Desc:     q.Direction == "desc",
	})
	if err != nil {
		h.logger.Error("list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// PUT /products/:id — manager only.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productUsecase.Update(c.Request.Context(), id, usecase.ProductInput{
		Name:         req.Name,
		UnitPrice:    req.UnitPrice,
		UnitsInStock: req.UnitsInStock,
		Type:         req.Type,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProductNotFound})
			return
		}
		h.logger.Error("update product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// DELETE /products/:id — manager only.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.productUsecase.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProductNotFound})
			return
		}
		h.logger.Error("delete product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
