package cache

import "time"

// Entity tags. A write to an entity invalidates its tag; reads declare the
// tags they depend on.
const (
	TagProducts   = "products"
	TagCategories = "categories"
	TagAdmin      = "admin"
	TagContact    = "contact"
)

// TTL tiers for cached reads.
const (
	Short    = 5 * time.Minute
	Medium   = 30 * time.Minute
	Long     = time.Hour
	VeryLong = 24 * time.Hour
)

// DefaultTTL applies when a query does not choose a tier.
const DefaultTTL = Medium

// PathTag is the tag of a cached route, e.g. PathTag("/products") = "path:/products".
func PathTag(path string) string {
	return "path:" + path
}

// Options describe how a query is cached.
type Options struct {
	// Tags the result depends on. Invalidating any of them drops the entry.
	Tags []string
	// TTL of the durable entry; DefaultTTL when zero.
	TTL time.Duration
	// SkipMemory keeps the result out of the in-process tier.
	SkipMemory bool
}

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return DefaultTTL
	}
	return o.TTL
}
