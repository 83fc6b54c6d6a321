package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meowfish/shop-api/internal/transport/http/handler"
	"github.com/meowfish/shop-api/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	authMW gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "shop-api: demo e-commerce backend"})
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/employee-info", authMW, authHandler.EmployeeInfo)
	auth.GET("/user-info", authMW, authHandler.UserInfo)

	managerOnly := middleware.RequireManager()

	products := v1.Group("/products", authMW)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.GetByID)
	products.POST("", managerOnly, productHandler.Create)
	products.PUT("/:id", managerOnly, productHandler.Update)
	products.DELETE("/:id", managerOnly, productHandler.Delete)

	return r
}
