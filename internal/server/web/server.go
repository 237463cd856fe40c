// Package web is the HTTP surface of the catalog: the public JSON API, the
// contact form and the admin back-office behind the session guard.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// uploadBodyLimit is above services.MaxImageSize so that the service, not
// the transport, reports the type and size of a rejected image.
const uploadBodyLimit = "10M"

type AuthService interface {
	Login(ctx context.Context, jar auth.CookieJar, email, password string) (*models.Admin, error)
	Logout(ctx context.Context, jar auth.CookieJar, token string)
}

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, in services.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	List(ctx context.Context, f products.Filter) ([]models.Product, error)
	Featured(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in services.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, in services.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ContactService interface {
	Submit(ctx context.Context, in services.ContactInput) (*models.ContactMessage, error)
	List(ctx context.Context) ([]models.ContactMessage, error)
	MarkHandled(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	BulkMarkHandled(ctx context.Context, ids []string) (int64, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

type DashboardService interface {
	Counts(ctx context.Context) (models.DashboardCounts, error)
}

type ImageService interface {
	Upload(ctx context.Context, u services.Upload) (*services.UploadResult, error)
	Presign(ctx context.Context, filename, contentType string, size int64) (*services.PresignedUpload, error)
}

// Services bundles everything the handlers call.
type Services struct {
	Auth       AuthService
	Categories CategoryService
	Products   ProductService
	Contact    ContactService
	Dashboard  DashboardService
	Images     ImageService
}

type Server struct {
	address      string
	secureCookie bool
	echo         *echo.Echo
	svc          Services
	guard        *auth.Guard
	cache        *cache.Coordinator
	logger       logging.Logger
}

// NewServer builds the echo instance and registers every route. secureCookie
// must be true in production.
func NewServer(address string, secureCookie bool, svc Services, guard *auth.Guard, c *cache.Coordinator, l logging.Logger) *Server {
	s := &Server{
		address:      address,
		secureCookie: secureCookie,
		svc:          svc,
		guard:        guard,
		cache:        c,
		logger:       l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(s.sessionGuard)

	s.echo = e
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api")
	api.GET("/categories", s.cachedJSON("/api/categories",
		cache.Options{Tags: []string{cache.TagCategories, cache.PathTag("/")}, TTL: cache.VeryLong},
		s.loadCategories))
	api.GET("/products", s.cachedJSON("/api/products",
		cache.Options{Tags: []string{cache.TagProducts, cache.PathTag("/products")}, TTL: cache.Long},
		s.loadProducts))
	api.GET("/products/featured", s.cachedJSON("/api/products/featured",
		cache.Options{Tags: []string{cache.TagProducts, cache.PathTag("/")}, TTL: cache.Long},
		s.loadFeatured))
	api.GET("/products/:id", s.cachedJSON("/api/products/:id",
		cache.Options{Tags: []string{cache.TagProducts, cache.PathTag("/products")}, TTL: cache.Long},
		s.loadProduct))
	api.POST("/contact", s.handleContact)

	admin := e.Group("/admin")
	admin.GET("/login", s.handleLoginStatus)
	admin.POST("/login", s.handleLogin)
	admin.POST("/logout", s.handleLogout)
	admin.GET("", s.handleDashboard)

	admin.GET("/categories", s.handleListCategories)
	admin.POST("/categories", s.handleCreateCategory)
	admin.GET("/categories/:id", s.handleGetCategory)
	admin.PUT("/categories/:id", s.handleUpdateCategory)
	admin.DELETE("/categories/:id", s.handleDeleteCategory)

	admin.GET("/products", s.handleListProducts)
	admin.POST("/products", s.handleCreateProduct)
	admin.GET("/products/:id", s.handleGetProduct)
	admin.PUT("/products/:id", s.handleUpdateProduct)
	admin.DELETE("/products/:id", s.handleDeleteProduct)

	admin.GET("/messages", s.handleListMessages)
	admin.POST("/messages/:id/handled", s.handleMarkHandled)
	admin.DELETE("/messages/:id", s.handleDeleteMessage)
	admin.POST("/messages/bulk-delete", s.handleBulkDelete)
	admin.POST("/messages/bulk-handled", s.handleBulkHandled)

	upload := admin.Group("/upload", middleware.BodyLimit(uploadBodyLimit))
	upload.POST("", s.handleUpload)
	upload.POST("/presign", s.handlePresign)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
