package web

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (s *Server) loadCategories(ctx context.Context, _ pageArgs) (any, error) {
	return s.svc.Categories.List(ctx)
}

func (s *Server) loadProducts(ctx context.Context, a pageArgs) (any, error) {
	return s.svc.Products.List(ctx, products.Filter{CategorySlug: a.Category})
}

func (s *Server) loadFeatured(ctx context.Context, _ pageArgs) (any, error) {
	return s.svc.Products.Featured(ctx)
}

func (s *Server) loadProduct(ctx context.Context, a pageArgs) (any, error) {
	return s.svc.Products.Get(ctx, a.ID)
}

func (s *Server) handleContact(c echo.Context) error {
	var in services.ContactInput
	if err := c.Bind(&in); err != nil {
		return err
	}

	m, err := s.svc.Contact.Submit(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "id": m.ID})
}
