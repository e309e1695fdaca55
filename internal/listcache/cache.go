// Package listcache provides the short-lived, per-resource list cache.
// Entries are keyed by resource type plus scope fingerprint and carry a
// per-resource version; a successful mutation bumps the version, which
// invalidates every cached page for that resource without reconciling it.
package listcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-edu/meridian-edu/internal/scope"
)

// Cache wraps Redis based list caching with per-resource versioning.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// New instantiates the cache helper.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(rt scope.ResourceType) string {
	return "listcache:version:" + string(rt)
}

// Version returns the current version for a resource, initialising when missing.
func (c *Cache) Version(ctx context.Context, rt scope.ResourceType) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(rt)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, versionKey(rt), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes a cache key from the resource type, the scope fingerprint
// and extra parts, pinned to the current version.
func (c *Cache) Key(ctx context.Context, rt scope.ResourceType, pred scope.Predicate, parts ...string) (string, error) {
	joined := strings.Join(append([]string{string(rt), Fingerprint(pred)}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, rt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("listcache:%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader. Loader
// calls for the same key are deduplicated.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("listcache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// Bump invalidates every cached list for the resource by incrementing its
// version. Caches are invalidated, never reconciled.
func (c *Cache) Bump(ctx context.Context, rt scope.ResourceType) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(rt)).Err()
}

// Fingerprint renders a predicate into a stable cache key component.
func Fingerprint(pred scope.Predicate) string {
	if pred.Denied() {
		return "deny"
	}
	if pred.Unrestricted() {
		return "all"
	}
	var sb strings.Builder
	for _, cl := range pred.All {
		fmt.Fprintf(&sb, "%s.%s.%v;", cl.Field, cl.Op, cl.Value)
	}
	if len(pred.Any) > 0 {
		sb.WriteString("any(")
		for _, cl := range pred.Any {
			fmt.Fprintf(&sb, "%s.%s.%v;", cl.Field, cl.Op, cl.Value)
		}
		sb.WriteString(")")
	}
	return sb.String()
}
