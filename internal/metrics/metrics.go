package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del event log, el coordinador transaccional y el projector. Viven en
// un paquete propio para que store, projector y http las compartan sin ciclos.

var (
	EventsAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splice_events_appended_total",
		Help: "Eventos agregados al log por tipo",
	}, []string{"type"})

	TxTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splice_tx_total",
		Help: "Transacciones del coordinador por operación y resultado",
	}, []string{"op", "result"}) // result: commit|rollback|canceled

	TxDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splice_tx_duration_seconds",
		Help:    "Duración de la sección crítica del coordinador",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ProjectorEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splice_projector_events_total",
		Help: "Eventos procesados por proyección y resultado",
	}, []string{"projection", "result"}) // result: handled|skipped|failed|error

	ProjectorCheckpoint = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "splice_projector_checkpoint",
		Help: "Última posición confirmada por proyección",
	}, []string{"projection"})

	ProjectorTickDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splice_projector_tick_duration_seconds",
		Help:    "Duración de cada tick del projector",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"projection"})
)

// Register registra las métricas de dominio en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		EventsAppended,
		TxTotal,
		TxDuration,
		ProjectorEvents,
		ProjectorCheckpoint,
		ProjectorTickDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
