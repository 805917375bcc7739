package handler

import (
	"context"
	"net/http"
	"time"
)

// Checker is a dependency the service needs to serve traffic.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to Checker.
type CheckFunc struct {
	N  string
	Fn func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.N }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	checkers []Checker
	timeout  time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checkers ...Checker) *HealthHandler {
	return &HealthHandler{checkers: checkers, timeout: 5 * time.Second}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := map[string]string{"status": "ready"}
	status := http.StatusOK
	for _, c := range h.checkers {
		if err := c.Check(ctx); err != nil {
			resp[c.Name()] = err.Error()
			resp["status"] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp[c.Name()] = "ok"
	}

	writeJSON(w, status, resp)
}
