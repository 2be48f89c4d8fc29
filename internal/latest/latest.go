package latest

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/example/facts/internal/record"
)

// Cache keeps the most recent record per (kind, category) in Redis so
// dashboards can poll the latest reading without touching the array files.
// Like the mirror, it is best-effort: a cache failure never affects the
// persistence outcome of a request.
type Cache struct {
	client  *redis.Client
	logger  *log.Logger
	enabled bool
}

// New creates the cache when enabled. The connection is verified lazily on
// first use; go-redis reconnects on its own.
func New(enabled bool, addr string, logger *log.Logger) *Cache {
	c := &Cache{logger: logger}
	if !enabled {
		return c
	}
	c.client = redis.NewClient(&redis.Options{Addr: addr})
	c.enabled = true
	logger.Printf("Latest-reading cache enabled at %s", addr)
	return c
}

// Enabled reports whether caching is configured.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Set stores rec as the latest record for its kind and category. Records
// without a category are kept under the "all" key alongside the per-category
// one.
func (c *Cache) Set(ctx context.Context, kind record.Kind, rec record.Record) {
	if !c.enabled {
		return
	}
	data, err := record.Marshal(rec)
	if err != nil {
		c.logger.Printf("Failed to marshal %s record for cache: %v", kind, err)
		return
	}
	keys := []string{key(kind, "all")}
	if category := rec.Category(); category != "" {
		keys = append(keys, key(kind, category))
	}
	for _, k := range keys {
		if err := c.client.Set(ctx, k, data, 0).Err(); err != nil {
			c.logger.Printf("Failed to cache latest %s record: %v", kind, err)
			return
		}
	}
}

// Get returns the latest cached record for a kind and category ("" means any
// category). A miss or disabled cache returns nil.
func (c *Cache) Get(ctx context.Context, kind record.Kind, category string) record.Record {
	if !c.enabled {
		return nil
	}
	if category == "" {
		category = "all"
	}
	data, err := c.client.Get(ctx, key(kind, category)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("Failed to read latest %s record from cache: %v", kind, err)
		}
		return nil
	}
	rec, err := record.Parse(data)
	if err != nil {
		return nil
	}
	return rec
}

// Status reports cache reachability: "disabled", "connected", or an error
// description.
func (c *Cache) Status(ctx context.Context) string {
	if !c.enabled {
		return "disabled"
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func key(kind record.Kind, category string) string {
	return fmt.Sprintf("facts:latest:%s:%s", kind, category)
}
