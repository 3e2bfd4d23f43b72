// Package httpapi is the thin HTTP adapter over internal/engine: an
// App/Context/Router trio built directly on net/http, without a
// zero-allocation wire parser — a JSON cache adapter has no request-rate
// budget that would justify one.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Handler is a request handler over Context.
type Handler func(*Context) error

// Middleware wraps a Handler to produce another.
type Middleware func(Handler) Handler

// Context bundles the request/response pair, extracted path params, and
// a per-request store.
type Context struct {
	w http.ResponseWriter
	r *http.Request

	params map[string]string
	store  map[string]any

	statusCode int
	written    bool

	// AuthToken is the bearer token forwarded from the Authorization
	// header, if any. It is opaque pass-through: the engine performs no
	// authorization decision based on it.
	AuthToken string
}

func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	c := &Context{w: w, r: r, params: params}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		c.AuthToken = strings.TrimPrefix(auth, "Bearer ")
	}
	return c
}

// Request returns the underlying *http.Request.
func (c *Context) Request() *http.Request { return c.r }

// Method returns the HTTP method.
func (c *Context) Method() string { return c.r.Method }

// Path returns the request path.
func (c *Context) Path() string { return c.r.URL.Path }

// Param returns a path parameter extracted by the router, e.g. "key"
// for a route registered as "/cache/:key".
func (c *Context) Param(name string) string { return c.params[name] }

// Query returns a single query parameter.
func (c *Context) Query(name string) string { return c.r.URL.Query().Get(name) }

// Header returns a request header value.
func (c *Context) Header(name string) string { return c.r.Header.Get(name) }

// SetHeader sets a response header. Must be called before JSON/Error.
func (c *Context) SetHeader(name, value string) { c.w.Header().Set(name, value) }

// StatusCode returns the status code written so far, or 0 if nothing has
// been written yet.
func (c *Context) StatusCode() int { return c.statusCode }

// Set stores a value in the per-request store, for middleware to hand
// data downstream.
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

// Get retrieves a value previously stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// BindJSON decodes the request body into dst.
func (c *Context) BindJSON(dst any) error {
	defer c.r.Body.Close()
	return json.NewDecoder(c.r.Body).Decode(dst)
}

// JSON writes status with body encoded as JSON.
func (c *Context) JSON(status int, body any) error {
	c.w.Header().Set("Content-Type", "application/json")
	c.statusCode = status
	c.written = true
	c.w.WriteHeader(status)
	if body == nil {
		return nil
	}
	return json.NewEncoder(c.w).Encode(body)
}

// Error writes a {"error": message} body with the given status.
func (c *Context) Error(status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
