package api

import (
	"context"
	"net/http"
	"time"

	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/payment"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CatalogService interface {
	List(ctx context.Context) ([]models.Product, int64, error)
	Page(ctx context.Context, page int) ([]models.Product, error)
	Filter(ctx context.Context, checked []string, radio []float64) ([]models.Product, error)
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	Related(ctx context.Context, productID, categoryID string) ([]models.Product, *models.Category, error)
	Count(ctx context.Context) (int64, error)
	BySlug(ctx context.Context, slug string) (*models.Product, *models.Category, error)
	Photo(ctx context.Context, productID string) (*models.Photo, error)
	CategoryProducts(ctx context.Context, slug string) (*models.Category, []models.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID string, in catalog.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID, name string) (*models.Category, error)
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type OrderService interface {
	Create(ctx context.Context, buyerID primitive.ObjectID, cart []string, payment models.PaymentResult) (*models.Order, error)
	ListForBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]order.View, error)
	ListAll(ctx context.Context) ([]order.View, error)
	UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error)
	PriceCart(ctx context.Context, cart []string) (float64, error)
}

type AccountService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ForgotPassword(ctx context.Context, email, answer, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (*models.User, error)
}

// Server is the HTTP face of the store.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	tokens   *auth.TokenManager
	catalog  CatalogService
	orders   OrderService
	accounts AccountService
	gateway  payment.Gateway
}

func NewServer(cfg *config.Config, logger *zap.Logger, tokens *auth.TokenManager, catalogSvc CatalogService, orderSvc OrderService, accountSvc AccountService, gw payment.Gateway) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		tokens:   tokens,
		catalog:  catalogSvc,
		orders:   orderSvc,
		accounts: accountSvc,
		gateway:  gw,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	signedIn := auth.RequireSignIn(s.tokens)
	adminOnly := auth.RequireAdmin()

	v1 := s.router.Group("/api/v1")
	{
		product := v1.Group("/product")
		{
			product.POST("/create-product", signedIn, adminOnly, s.createProduct)
			product.PUT("/update-product/:pid", signedIn, adminOnly, s.updateProduct)
			product.DELETE("/delete-product/:pid", signedIn, adminOnly, s.deleteProduct)
			product.GET("/get-product", s.listProducts)
			product.GET("/get-product/:slug", s.getProduct)
			product.GET("/product-photo/:pid", s.productPhoto)
			product.GET("/product-list/:page", s.productList)
			product.GET("/product-count", s.productCount)
			product.POST("/product-filters", s.productFilters)
			product.GET("/search/:keyword", s.searchProducts)
			product.GET("/related-product/:pid/:cid", s.relatedProducts)
			product.GET("/product-category/:slug", s.productsByCategory)
			product.GET("/braintree/token", s.paymentToken)
			product.POST("/braintree/payment", signedIn, s.checkout)
		}

		category := v1.Group("/category")
		{
			category.POST("/create-category", signedIn, adminOnly, s.createCategory)
			category.PUT("/update-category/:id", signedIn, adminOnly, s.updateCategory)
			category.GET("/get-category", s.listCategories)
			category.GET("/single-category/:slug", s.getCategory)
			category.DELETE("/delete-category/:id", signedIn, adminOnly, s.deleteCategory)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.register)
			authGroup.POST("/login", s.login)
			authGroup.POST("/forgot-password", s.forgotPassword)
			authGroup.PUT("/profile", signedIn, s.updateProfile)
			authGroup.GET("/orders", signedIn, s.buyerOrders)
			authGroup.GET("/all-orders", signedIn, adminOnly, s.allOrders)
			authGroup.PUT("/order-status/:orderId", signedIn, adminOnly, s.updateOrderStatus)
			authGroup.GET("/user-auth", signedIn, s.checkUserAuth)
			authGroup.GET("/admin-auth", signedIn, adminOnly, s.checkAdminAuth)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.logger.Info("API server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the handler for tests and for http.Server wiring.
func (s *Server) Router() http.Handler {
	return s.router
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
