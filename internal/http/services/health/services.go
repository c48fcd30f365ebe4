// Package health contiene los services de health check.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/splice/internal/http/dto/health"
)

// Check prueba un componente. nil = ok.
type Check func(ctx context.Context) error

type Deps struct {
	Checks  map[string]Check
	Version string
	Timeout time.Duration // por check; 0 = 2s
}

// HealthService evalúa los checks registrados.
type HealthService interface {
	Ready(ctx context.Context) dto.HealthResponse
}

// Services agrupa todos los services del dominio health.
type Services struct {
	Health HealthService
}

func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}

type healthService struct {
	deps Deps
}

func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &healthService{deps: d}
}

func (s *healthService) Ready(ctx context.Context) dto.HealthResponse {
	out := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus, len(s.deps.Checks)),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}
	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := s.deps.Checks[name](cctx)
		cancel()
		if err != nil {
			out.Status = "unavailable"
			out.Components[name] = dto.HealthStatus{Status: "error", Message: err.Error()}
			continue
		}
		out.Components[name] = dto.HealthStatus{Status: "ok"}
	}
	return out
}
