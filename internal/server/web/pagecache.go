package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/labstack/echo/v4"
)

// pageArgs is everything a public catalog response depends on. Unknown
// query parameters are ignored so they cannot multiply cache entries.
type pageArgs struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
}

type pageLoader func(ctx context.Context, a pageArgs) (any, error)

// publicCacheControl makes clients revalidate every read. Writes only purge
// the server-side tiers, so a browser or CDN copy must never outlive them.
const publicCacheControl = "no-cache"

// cachedJSON serves a public GET route from the response cache. The rendered
// body is stored under the route name and the given tags, so catalog writes
// drop it together with the underlying query results. Responses carry an
// ETag of the body; a matching If-None-Match is answered with 304.
func (s *Server) cachedJSON(route string, opts cache.Options, load pageLoader) echo.HandlerFunc {
	q := cache.NewQuery(s.cache, "http:"+route, opts,
		func(ctx context.Context, a pageArgs) (json.RawMessage, error) {
			v, err := load(ctx, a)
			if err != nil {
				return nil, err
			}
			return json.Marshal(v)
		})

	return func(c echo.Context) error {
		body, err := q.Get(c.Request().Context(), pageArgs{
			ID:       c.Param("id"),
			Category: c.QueryParam("category"),
		})
		if err != nil {
			return err
		}

		tag := etag(body)
		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, publicCacheControl)
		h.Set("ETag", tag)
		if c.Request().Header.Get("If-None-Match") == tag {
			return c.NoContent(http.StatusNotModified)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

func etag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
