//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()

	key := NewScopedKeyer(nil, "markstack-test:").FontKey("Rubik", 400)
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("font"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "font" {
		t.Fatalf("Get after Set = %q, hit %v, err %v", data, hit, err)
	}
}
