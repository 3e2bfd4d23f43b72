package httpapi

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watt-toolkit/cachegrid/internal/engine"
	"github.com/watt-toolkit/cachegrid/internal/metricsexport"
)

// Server wires the router, middleware, and engine-backed handlers into
// a net/http.Server.
type Server struct {
	httpSrv *http.Server
}

// NewServer builds a Server listening on addr, wired to eng. If
// enableLogging is true, every request to a registered route is logged as
// a JSON line to stdout, except CORS preflight (OPTIONS) requests, which
// CORS answers before the logger runs. Unmatched routes and /metrics are
// not logged.
func NewServer(addr string, eng *engine.Engine, enableLogging bool) *Server {
	router := NewRouter()
	h := NewHandlers(eng)

	chain := buildChain(enableLogging)

	router.Add(http.MethodGet, "/", chain(h.Root))
	router.Add(http.MethodGet, "/health", chain(h.Health))
	router.Add(http.MethodGet, "/stats", chain(h.Stats))
	router.Add(http.MethodGet, "/cache/:key", chain(h.GetItem))
	router.Add(http.MethodPut, "/cache/:key", chain(h.SetItemByPath))
	router.Add(http.MethodPost, "/cache", chain(h.SetItemByBody))
	router.Add(http.MethodDelete, "/cache/:key", chain(h.DeleteItem))
	router.Add(http.MethodDelete, "/cache", chain(h.ClearCache))
	router.Add(http.MethodPost, "/cache/batch/get", chain(h.BatchGet))
	router.Add(http.MethodPost, "/cache/batch/set", chain(h.BatchSet))
	router.Add(http.MethodGet, "/admin/keys", chain(h.ListKeys))
	router.Add(http.MethodPost, "/admin/loadtest", chain(h.LoadTest))

	mux := http.NewServeMux()
	mux.Handle("/", router)
	mux.Handle("/metrics", promhttp.HandlerFor(
		metricsexport.Register(eng),
		promhttp.HandlerOpts{},
	))

	return &Server{
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func buildChain(enableLogging bool) func(Handler) Handler {
	middlewares := []Middleware{Recovery(), CORS(DefaultCORSConfig())}
	if enableLogging {
		middlewares = append(middlewares, Logger(os.Stdout))
	}

	return func(h Handler) Handler {
		wrapped := h
		for i := len(middlewares) - 1; i >= 0; i-- {
			wrapped = middlewares[i](wrapped)
		}
		return wrapped
	}
}

// Run starts the server and blocks until an interrupt or SIGTERM is
// received, then shuts down gracefully.
func (s *Server) Run() error {
	errChan := make(chan error, 1)
	go func() {
		log.Printf("cachegrid listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Println("shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
