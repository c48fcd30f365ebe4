// Package health contiene los controllers de health check.
package health

import (
	"net/http"

	"github.com/dropDatabas3/splice/internal/http/helpers"
	svc "github.com/dropDatabas3/splice/internal/http/services/health"
)

// Controllers agrupa todos los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: NewHealthController(s.Health)}
}

// HealthController handles GET /readyz y GET /healthz.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz responde 200 si todos los componentes están ok, 503 si no.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	res := c.service.Ready(r.Context())
	status := http.StatusOK
	if res.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, res)
}

// Healthz sólo indica que el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
