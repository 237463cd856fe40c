package services

import (
	"context"

	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/google/uuid"
)

// Tags invalidated by catalog writes.
var (
	categoryWriteTags = []string{cache.TagCategories, cache.TagProducts, cache.PathTag("/"), cache.PathTag("/products")}
	productWriteTags  = []string{cache.TagProducts, cache.PathTag("/"), cache.PathTag("/products")}
	contactWriteTags  = []string{cache.TagContact, cache.PathTag("/admin/messages")}
)

// invalidate runs after a committed write. A durable-tier failure is logged
// and swallowed: the write already happened and memory is invalidated anyway.
func invalidate(ctx context.Context, c *cache.Coordinator, l logging.Logger, tags ...string) {
	if err := c.Invalidate(ctx, tags...); err != nil {
		l.Warn(ctx, "cache invalidation failed", "tags", tags, "error", err)
	}
}

// optional maps blank input to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// validID reports whether id can be a primary key. Rows are keyed by UUID;
// anything else cannot exist and is answered with common.ErrorNotFound
// instead of a database error.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
