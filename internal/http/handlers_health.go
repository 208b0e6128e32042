package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	healthResponse   = `{"status":"ok"}`
	readinessTimeout = 2 * time.Second
)

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// ReadinessCheck probes one dependency the gateway needs to serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// readinessHandler runs every check concurrently. Failures are logged but only reported
// to the caller as "error".
func readinessHandler(checks []ReadinessCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		resp := readinessResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		var mu sync.Mutex
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				result := "ok"
				if err := c.Check(ctx); err != nil {
					logger.WarnContext(ctx, "readiness check failed", "check", c.Name, "error", err)
					result = "error"
				}
				mu.Lock()
				resp.Checks[c.Name] = result
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		code := http.StatusOK
		for _, result := range resp.Checks {
			if result != "ok" {
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
				break
			}
		}
		w.Header().Set("Cache-Control", "no-store")
		WriteJSON(w, code, resp)
	}
}
