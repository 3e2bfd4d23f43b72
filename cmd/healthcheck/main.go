// Command healthcheck is the container health probe: it exercises a
// real SET/GET/DELETE round trip against the running CacheGrid instance
// and falls back to a plain GET /health check if the round trip cannot
// be completed. Exits 0 on a passing check, 1 otherwise — the shape
// Docker's HEALTHCHECK expects.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/watt-toolkit/cachegrid/client"
)

func main() {
	host := os.Getenv("CACHEGRID_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("CACHEGRID_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		port = "8080"
	}

	cfg := client.DefaultConfig(fmt.Sprintf("http://%s:%s", host, port))
	cfg.Timeout = 3 * time.Second
	cfg.MaxRetries = 1
	c := client.New(cfg)

	ctx := context.Background()
	if advancedHealthCheck(ctx, c) {
		fmt.Println("health check passed: cache operations working")
		os.Exit(0)
	}

	fmt.Println("advanced health check failed, falling back to basic check")
	if basicHealthCheck(ctx, c) {
		fmt.Println("health check passed")
		os.Exit(0)
	}

	fmt.Println("health check failed")
	os.Exit(1)
}

// advancedHealthCheck SETs a synthetic key, GETs it back and requires a
// hit, then DELETEs it as cleanup.
func advancedHealthCheck(ctx context.Context, c *client.Client) bool {
	testKey := fmt.Sprintf("healthcheck_%d", time.Now().Unix())
	testValue := map[string]any{"test": true, "timestamp": time.Now().Unix()}

	if !c.Set(ctx, testKey, testValue, 0) {
		return false
	}

	value, hit := c.Get(ctx, testKey)
	if !hit || value == nil {
		return false
	}

	c.Delete(ctx, testKey)
	return true
}

// basicHealthCheck is a plain GET /health probe.
func basicHealthCheck(ctx context.Context, c *client.Client) bool {
	status := c.Health(ctx)
	return status["status"] != "unhealthy" && status["status"] != nil
}
