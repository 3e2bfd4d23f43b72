package httpapi

import (
	"net/http"
	"strings"
)

// Router routes by exact "METHOD:path-template" match for static
// segments and a single trailing dynamic segment (":name") — the one
// pattern this API actually needs: "/cache/:key". A full radix tree
// buys nothing here.
type Router struct {
	static  map[string]Handler // "METHOD:/path"
	dynamic []route
}

type route struct {
	method     string
	prefix     string // e.g. "/cache/" for "/cache/:key"
	paramName  string
	handler    Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{static: make(map[string]Handler)}
}

// Add registers a route. path may contain at most one trailing dynamic
// segment, e.g. "/cache/:key".
func (rt *Router) Add(method, path string, h Handler) {
	if idx := strings.Index(path, ":"); idx >= 0 {
		rt.dynamic = append(rt.dynamic, route{
			method:    method,
			prefix:    path[:idx],
			paramName: path[idx+1:],
			handler:   h,
		})
		return
	}
	rt.static[method+":"+path] = h
}

// Lookup finds a handler for method+path, returning any extracted path
// parameters.
func (rt *Router) Lookup(method, path string) (Handler, map[string]string) {
	if h, ok := rt.static[method+":"+path]; ok {
		return h, nil
	}
	for _, r := range rt.dynamic {
		if r.method != method {
			continue
		}
		if strings.HasPrefix(path, r.prefix) {
			remainder := path[len(r.prefix):]
			if remainder == "" || strings.Contains(remainder, "/") {
				continue
			}
			return r.handler, map[string]string{r.paramName: remainder}
		}
	}
	return nil, nil
}

// ServeHTTP implements http.Handler, dispatching to the matched route
// or responding 404.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, params := rt.Lookup(r.Method, r.URL.Path)
	if handler == nil {
		c := newContext(w, r, nil)
		_ = c.Error(http.StatusNotFound, "Not Found")
		return
	}

	c := newContext(w, r, params)
	if err := handler(c); err != nil && !c.written {
		_ = c.Error(http.StatusInternalServerError, err.Error())
	}
}
