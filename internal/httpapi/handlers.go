package httpapi

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/watt-toolkit/cachegrid/internal/cache"
	"github.com/watt-toolkit/cachegrid/internal/engine"
)

// Handlers groups the engine-backed endpoint implementations as methods
// so they can close over the engine without a package-level global.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers builds a Handlers bound to eng.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

// Root serves the service banner.
func (h *Handlers) Root(c *Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "CacheGrid",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"health":  "/health",
	})
}

// Health reports the engine's liveness snapshot.
func (h *Handlers) Health(c *Context) error {
	health := h.engine.HealthCheck()
	if health.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

// Stats reports the storage core's counters.
func (h *Handlers) Stats(c *Context) error {
	stats, err := h.engine.Stats()
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

type cacheGetResponse struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Exists bool   `json:"exists"`
	Hit    bool   `json:"hit"`
}

// GetItem retrieves a single key.
func (h *Handlers) GetItem(c *Context) error {
	key := c.Param("key")
	value, ok, err := h.engine.Get(key)
	if err != nil {
		return mapEngineError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, cacheGetResponse{Key: key, Value: nil, Exists: false, Hit: false})
	}
	return c.JSON(http.StatusOK, cacheGetResponse{Key: key, Value: value, Exists: true, Hit: true})
}

type setResultResponse struct {
	Success   bool    `json:"success"`
	Key       string  `json:"key"`
	TTL       *float64 `json:"ttl"`
	Timestamp float64 `json:"timestamp"`
}

// SetItemByPath stores a value via PUT /cache/{key}. The body is the
// raw value; ttl arrives as a query parameter, in seconds.
func (h *Handlers) SetItemByPath(c *Context) error {
	key := c.Param("key")

	var value any
	if err := c.BindJSON(&value); err != nil {
		return c.Error(http.StatusBadRequest, "request body must be valid JSON")
	}

	ttl, ttlPtr, err := parseTTLQuery(c.Query("ttl"))
	if err != nil {
		return c.Error(http.StatusBadRequest, err.Error())
	}

	if err := h.engine.Set(key, value, ttl, nil); err != nil {
		return mapEngineError(c, err)
	}

	return c.JSON(http.StatusOK, setResultResponse{
		Success:   true,
		Key:       key,
		TTL:       ttlPtr,
		Timestamp: float64(time.Now().Unix()),
	})
}

type cacheSetRequest struct {
	Key   string   `json:"key"`
	Value any      `json:"value"`
	TTL   *float64 `json:"ttl"`
}

// SetItemByBody stores a value via POST /cache, with the key given in
// the request body instead of the path.
func (h *Handlers) SetItemByBody(c *Context) error {
	var req cacheSetRequest
	if err := c.BindJSON(&req); err != nil {
		return c.Error(http.StatusBadRequest, "request body must be valid JSON")
	}
	if req.Key == "" {
		return c.Error(http.StatusBadRequest, "key is required")
	}

	ttl, err := ttlFromSeconds(req.TTL)
	if err != nil {
		return c.Error(http.StatusBadRequest, err.Error())
	}

	if err := h.engine.Set(req.Key, req.Value, ttl, nil); err != nil {
		return mapEngineError(c, err)
	}

	return c.JSON(http.StatusOK, setResultResponse{
		Success:   true,
		Key:       req.Key,
		TTL:       req.TTL,
		Timestamp: float64(time.Now().Unix()),
	})
}

type deleteResultResponse struct {
	Success   bool    `json:"success"`
	Deleted   bool    `json:"deleted"`
	Key       string  `json:"key"`
	Timestamp float64 `json:"timestamp"`
}

// DeleteItem removes a single key.
func (h *Handlers) DeleteItem(c *Context) error {
	key := c.Param("key")
	deleted, err := h.engine.Delete(key)
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(http.StatusOK, deleteResultResponse{
		Success:   true,
		Deleted:   deleted,
		Key:       key,
		Timestamp: float64(time.Now().Unix()),
	})
}

// ClearCache empties the whole cache, requiring ?confirm=true.
func (h *Handlers) ClearCache(c *Context) error {
	if c.Query("confirm") != "true" {
		return c.Error(http.StatusBadRequest, "Must set confirm=true to clear cache")
	}
	n, err := h.engine.Clear()
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":       true,
		"items_removed": n,
		"timestamp":     float64(time.Now().Unix()),
	})
}

type batchGetRequest struct {
	Keys []string `json:"keys"`
}

// BatchGet resolves multiple keys in one request.
func (h *Handlers) BatchGet(c *Context) error {
	var req batchGetRequest
	if err := c.BindJSON(&req); err != nil || len(req.Keys) == 0 {
		return c.Error(http.StatusBadRequest, "keys must be a non-empty array")
	}

	results, err := h.engine.GetMulti(c.Request().Context(), req.Keys)
	if err != nil {
		return mapEngineError(c, err)
	}

	response := make(map[string]map[string]any, len(req.Keys))
	for _, key := range req.Keys {
		if value, ok := results[key]; ok {
			response[key] = map[string]any{"value": value, "exists": true, "hit": true}
		} else {
			response[key] = map[string]any{"value": nil, "exists": false, "hit": false}
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"results":        response,
		"requested_keys": len(req.Keys),
		"found_keys":     len(results),
		"timestamp":      float64(time.Now().Unix()),
	})
}

type batchSetRequest struct {
	Items map[string]any `json:"items"`
	TTL   *float64       `json:"ttl"`
}

// BatchSet stores multiple items in one request.
func (h *Handlers) BatchSet(c *Context) error {
	var req batchSetRequest
	if err := c.BindJSON(&req); err != nil || len(req.Items) == 0 {
		return c.Error(http.StatusBadRequest, "items must be a non-empty object")
	}

	ttl, err := ttlFromSeconds(req.TTL)
	if err != nil {
		return c.Error(http.StatusBadRequest, err.Error())
	}

	n, err := h.engine.SetMulti(c.Request().Context(), req.Items, ttl)
	if err != nil {
		return mapEngineError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"items_requested":  len(req.Items),
		"items_set":        n,
		"ttl":              req.TTL,
		"timestamp":        float64(time.Now().Unix()),
	})
}

// ListKeys lists keys optionally filtered by substring, capped by limit.
func (h *Handlers) ListKeys(c *Context) error {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			return c.Error(http.StatusBadRequest, "limit must be an integer in [1, 1000]")
		}
		limit = n
	}

	pattern := c.Query("pattern")
	keys, err := h.engine.Keys(pattern)
	if err != nil {
		return mapEngineError(c, err)
	}
	sort.Strings(keys)

	limited := keys
	if len(limited) > limit {
		limited = limited[:limit]
	}

	return c.JSON(http.StatusOK, map[string]any{
		"keys":        limited,
		"total_found": len(keys),
		"returned":    len(limited),
		"pattern":     pattern,
		"timestamp":   float64(time.Now().Unix()),
	})
}

// LoadTest runs a synchronous synthetic workload against the engine and
// reports throughput, for capacity testing without an external load
// generator.
func (h *Handlers) LoadTest(c *Context) error {
	numOps := 1000
	if raw := c.Query("num_operations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100000 {
			return c.Error(http.StatusBadRequest, "num_operations must be an integer in [1, 100000]")
		}
		numOps = n
	}

	opType := c.Query("operation_type")
	if opType == "" {
		opType = "mixed"
	}
	if opType != "get" && opType != "set" && opType != "mixed" {
		return c.Error(http.StatusBadRequest, "operation_type must be one of get, set, mixed")
	}

	start := time.Now()
	switch opType {
	case "set":
		for i := 0; i < numOps; i++ {
			_ = h.engine.Set(loadTestKey(i), loadTestValue(i), 0, nil)
		}
	case "get":
		prefill := numOps
		if prefill > 1000 {
			prefill = 1000
		}
		for i := 0; i < prefill; i++ {
			_ = h.engine.Set(loadTestKey(i), loadTestValue(i), 0, nil)
		}
		for i := 0; i < numOps; i++ {
			_, _, _ = h.engine.Get(loadTestKey(i % 1000))
		}
	default: // mixed
		for i := 0; i < numOps; i++ {
			if i%4 == 0 {
				_ = h.engine.Set(loadTestKey(i), loadTestValue(i), 0, nil)
			} else {
				_, _, _ = h.engine.Get(loadTestKey(i % maxInt(1, numOps/4)))
			}
		}
	}
	duration := time.Since(start)

	opsPerSecond := 0.0
	if duration > 0 {
		opsPerSecond = float64(numOps) / duration.Seconds()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":        "Load test completed",
		"operations":     numOps,
		"operation_type": opType,
		"duration_ms":    float64(duration.Microseconds()) / 1000.0,
		"ops_per_second": opsPerSecond,
		"timestamp":      float64(time.Now().Unix()),
	})
}

func loadTestKey(i int) string   { return "load_test:" + strconv.Itoa(i) }
func loadTestValue(i int) string { return "value_" + strconv.Itoa(i) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// mapEngineError translates a cache error kind into an HTTP status.
func mapEngineError(c *Context, err error) error {
	switch {
	case errors.Is(err, cache.ErrNotRunning):
		return c.Error(http.StatusServiceUnavailable, "Cache engine not available")
	case errors.Is(err, cache.ErrInvalidArgument):
		return c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, cache.ErrRefused):
		return c.Error(http.StatusInternalServerError, "Unable to evict items to make space")
	default:
		return c.Error(http.StatusInternalServerError, err.Error())
	}
}

// parseTTLQuery parses a "ttl" query parameter (seconds, optionally
// fractional). Empty means no TTL. Returns the duration, a pointer for
// response echoing, and a validation error for non-positive values.
func parseTTLQuery(raw string) (time.Duration, *float64, error) {
	if raw == "" {
		return 0, nil, nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0, nil, errors.New("ttl must be a positive number of seconds")
	}
	return time.Duration(seconds * float64(time.Second)), &seconds, nil
}

// ttlFromSeconds converts an optional seconds value from a JSON body
// into a time.Duration, validating positivity.
func ttlFromSeconds(seconds *float64) (time.Duration, error) {
	if seconds == nil {
		return 0, nil
	}
	if *seconds <= 0 {
		return 0, errors.New("ttl must be a positive number of seconds")
	}
	return time.Duration(*seconds * float64(time.Second)), nil
}
