package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"
)

// CORSConfig controls the Cross-Origin Resource Sharing headers CORS emits.
type CORSConfig struct {
	// AllowOrigins is not consulted: CORS always emits
	// "Access-Control-Allow-Origin: *".
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// DefaultCORSConfig allows every origin, method, and header.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"*"},
		MaxAge:       86400,
	}
}

// CORS returns a middleware handling Cross-Origin Resource Sharing.
func CORS(cfg CORSConfig) Middleware {
	allowMethods := joinOrStar(cfg.AllowMethods)
	allowHeaders := joinOrStar(cfg.AllowHeaders)
	maxAge := fmt.Sprintf("%d", cfg.MaxAge)

	return func(next Handler) Handler {
		return func(c *Context) error {
			c.SetHeader("Access-Control-Allow-Origin", "*")

			if c.Method() == http.MethodOptions {
				c.SetHeader("Access-Control-Allow-Methods", allowMethods)
				c.SetHeader("Access-Control-Allow-Headers", allowHeaders)
				c.SetHeader("Access-Control-Max-Age", maxAge)
				return c.JSON(http.StatusNoContent, nil)
			}

			return next(c)
		}
	}
}

func joinOrStar(values []string) string {
	if len(values) == 0 {
		return "*"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}

// LogEntry is a structured request log line.
type LogEntry struct {
	Time       string  `json:"time"`
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	Status     int     `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// Logger returns a middleware that logs every request as a JSON line to out.
func Logger(out io.Writer) Middleware {
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)

	return func(next Handler) Handler {
		return func(c *Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			status := c.StatusCode()
			if status == 0 {
				status = http.StatusOK
			}

			entry := LogEntry{
				Time:       start.Format(time.RFC3339),
				Method:     c.Method(),
				Path:       c.Path(),
				Status:     status,
				DurationMS: float64(duration.Microseconds()) / 1000.0,
			}
			if err != nil {
				entry.Error = err.Error()
			}
			if encErr := enc.Encode(entry); encErr != nil {
				log.Printf("httpapi: failed to write access log: %v", encErr)
			}

			return err
		}
	}
}

// Recovery returns a middleware that recovers from panics in the
// handler chain and converts them into a 500 response.
func Recovery() Middleware {
	return func(next Handler) Handler {
		return func(c *Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("httpapi: PANIC: %v\n%s", rec, debug.Stack())
					err = c.JSON(http.StatusInternalServerError, map[string]any{
						"error":     "Internal server error",
						"detail":    fmt.Sprintf("%v", rec),
						"timestamp": float64(time.Now().Unix()),
					})
				}
			}()
			return next(c)
		}
	}
}
