package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger é qualquer dependência que o health check consegue testar.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	Checks    map[string]Pinger
	Version   string
	StartTime time.Time
	Timeout   time.Duration
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		Checks:    make(map[string]Pinger),
		Version:   version,
		StartTime: time.Now(),
		Timeout:   2 * time.Second,
	}
}

// Register adiciona uma dependência. Um pinger nil aparece como "not configured".
func (h *HealthHandler) Register(name string, p Pinger) {
	h.Checks[name] = p
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deps := make(map[string]string, len(h.Checks))
	status := "healthy"
	for name, p := range h.Checks {
		if p == nil {
			deps[name] = "not configured"
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "healthy"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
