package web

import (
	"net/http"

	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/labstack/echo/v4"
)

// sessionGuard runs the guard decision for every request. Refused requests
// are redirected to the login page; allowed admin requests carry the
// verified identity in their context.
func (s *Server) sessionGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := req.Context()

		d := s.guard.Check(ctx, req.URL.Path, auth.ReadSessionCookie(req))
		if !d.Allowed {
			s.logger.Debug(ctx, "session refused", "path", req.URL.Path, "reason", d.Reason)
			return c.Redirect(http.StatusFound, d.RedirectTo)
		}

		if d.Claims != nil {
			ctx = auth.WithIdentity(ctx, auth.Identity{
				AdminID: d.Claims.AdminID(),
				Email:   d.Claims.Email,
				TokenID: d.Claims.ID,
			})
			c.SetRequest(req.WithContext(ctx))
		}

		return next(c)
	}
}
