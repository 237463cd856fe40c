package web

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/products"
	"github.com/dmitrijs2005/soncatalog/internal/server/services"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type idsRequest struct {
	IDs []string `json:"ids" form:"ids"`
}

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func (s *Server) cookieJar(c echo.Context) auth.CookieJar {
	return auth.NewResponseCookieJar(c.Response(), s.secureCookie)
}

func (s *Server) handleLoginStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"login": true})
}

func (s *Server) handleLogin(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgLoginFailed})
	}

	a, err := s.svc.Auth.Login(c.Request().Context(), s.cookieJar(c), in.Email, in.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "redirect": common.AdminPathPrefix, "admin": a})
}

func (s *Server) handleLogout(c echo.Context) error {
	s.svc.Auth.Logout(c.Request().Context(), s.cookieJar(c), auth.ReadSessionCookie(c.Request()))
	return c.JSON(http.StatusOK, map[string]any{"success": true, "redirect": common.LoginPath})
}

func (s *Server) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := s.svc.Dashboard.Counts(ctx)
	if err != nil {
		return err
	}

	id, _ := auth.IdentityFromContext(ctx)
	return c.JSON(http.StatusOK, map[string]any{
		"admin":  map[string]string{"id": id.AdminID, "email": id.Email},
		"counts": counts,
	})
}

// categories

func (s *Server) handleListCategories(c echo.Context) error {
	items, err := s.svc.Categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetCategory(c echo.Context) error {
	item, err := s.svc.Categories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var in services.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	item, err := s.svc.Categories.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateCategory(c echo.Context) error {
	var in services.CategoryInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	item, err := s.svc.Categories.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteCategory(c echo.Context) error {
	if err := s.svc.Categories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// products

// bindProduct accepts JSON or a form post. HTML checkboxes send "on", which
// echo's default binder cannot parse as a bool.
func bindProduct(c echo.Context) (services.ProductInput, error) {
	var in services.ProductInput
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		err := c.Bind(&in)
		return in, err
	}

	in.Title = c.FormValue("title")
	in.CategoryID = c.FormValue("categoryId")
	in.Description = c.FormValue("description")
	in.ImageURL = c.FormValue("imageUrl")
	in.Volume = c.FormValue("volume")
	in.PackSize = c.FormValue("packSize")
	switch strings.ToLower(c.FormValue("featured")) {
	case "on", "true", "1":
		in.Featured = true
	}
	return in, nil
}

func (s *Server) handleListProducts(c echo.Context) error {
	items, err := s.svc.Products.List(c.Request().Context(), products.Filter{CategorySlug: c.QueryParam("category")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetProduct(c echo.Context) error {
	item, err := s.svc.Products.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return err
	}
	item, err := s.svc.Products.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateProduct(c echo.Context) error {
	in, err := bindProduct(c)
	if err != nil {
		return err
	}
	item, err := s.svc.Products.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	if err := s.svc.Products.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// messages

func (s *Server) handleListMessages(c echo.Context) error {
	items, err := s.svc.Contact.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) handleMarkHandled(c echo.Context) error {
	if err := s.svc.Contact.MarkHandled(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeleteMessage(c echo.Context) error {
	if err := s.svc.Contact.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleBulkDelete(c echo.Context) error {
	var in idsRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	n, err := s.svc.Contact.BulkDelete(c.Request().Context(), in.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": n})
}

func (s *Server) handleBulkHandled(c echo.Context) error {
	var in idsRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	n, err := s.svc.Contact.BulkMarkHandled(c.Request().Context(), in.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": n})
}

// uploads

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return common.ErrorValidation
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := s.svc.Images.Upload(c.Request().Context(), services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handlePresign(c echo.Context) error {
	var in presignRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	res, err := s.svc.Images.Presign(c.Request().Context(), in.Filename, in.ContentType, in.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
