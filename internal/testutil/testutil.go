// Package testutil provides shared helpers for tests that need live
// infrastructure. Tests skip when the backing service is unreachable
// unless TEST_REQUIRE_REDIS or TEST_REQUIRE_INFRA forces a failure.
package testutil

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

// SetupTestRedis creates a Redis client for testing. Tests are skipped
// when Redis is not available.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   testRedisDB(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		if requireRedis() {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	// Start from a clean slate and leave one behind.
	client.FlushDB(ctx)
	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer ccancel()
		client.FlushDB(cctx)
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis test client: %v", err)
		}
	})

	return client
}

func testRedisDB() int {
	// A non-default DB keeps FlushDB away from anything a local dev
	// instance holds in DB 0.
	if os.Getenv("TEST_REDIS_DB") == "0" {
		return 0
	}
	return 9
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true" || v == "yes"
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
