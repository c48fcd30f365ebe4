// Package projector consume el event log en orden de posición y ejecuta
// proyecciones con efectos externos (por ejemplo, enviar emails).
//
// Cada proyección tiene un checkpoint: la última posición procesada. Los
// eventos de seguimiento que emite una proyección y el avance del checkpoint
// se confirman juntos, así que reiniciar el proceso nunca reprocesa un evento
// ya confirmado. La entrega es at-least-once sólo para el efecto externo de un
// evento cuyo commit falló; las proyecciones deben verificar su propio
// marcador de idempotencia antes de actuar.
package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/metrics"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// Projection procesa los eventos que matchean Filter, en orden.
type Projection interface {
	Name() string
	Filter() eventlog.Query
	// Handle devuelve los eventos a registrar como consecuencia de ev.
	// Un error deja el checkpoint donde estaba y el evento se reintenta en
	// el próximo tick; los fallos terminales se registran como eventos.
	Handle(ctx context.Context, ev eventlog.Event) ([]eventlog.Draft, error)
}

// Checkpoints persiste la posición de cada proyección.
type Checkpoints interface {
	Load(ctx context.Context, name string) (eventlog.Position, error)
	// Commit agrega drafts y avanza el checkpoint a pos de forma atómica.
	Commit(ctx context.Context, name string, pos eventlog.Position, drafts []eventlog.Draft) error
}

const (
	DefaultInterval    = 5 * time.Second
	DefaultBatchSize   = 100
	DefaultReadTimeout = 5 * time.Second
)

// Options configura el Runner.
type Options struct {
	Interval  time.Duration
	BatchSize int
	// HandleTimeout acota cada Handle. 0: sin límite propio.
	HandleTimeout time.Duration
	// ReadTimeout acota la carga del checkpoint y cada lectura de lote.
	ReadTimeout time.Duration
}

// Runner ejecuta proyecciones periódicamente.
type Runner struct {
	reader      eventlog.Reader
	checkpoints Checkpoints
	projections []Projection
	opts        Options
}

func NewRunner(reader eventlog.Reader, cps Checkpoints, opts Options, projections ...Projection) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Runner{
		reader:      reader,
		checkpoints: cps,
		projections: projections,
		opts:        opts,
	}
}

// Run ejecuta un tick inmediato y después uno por intervalo hasta que ctx se
// cancele. Los errores de un tick se loguean y no detienen el loop.
func (r *Runner) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("projector"))
	log.Info("projector started",
		zap.Duration("interval", r.opts.Interval),
		zap.Int("projections", len(r.projections)),
	)

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	for {
		if err := r.Tick(ctx); err != nil && ctx.Err() == nil {
			log.Warn("projector tick failed", logger.Err(err))
		}
		select {
		case <-ctx.Done():
			log.Info("projector stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick procesa todo lo pendiente de cada proyección. Una proyección que falla
// no impide que las demás avancen.
func (r *Runner) Tick(ctx context.Context) error {
	var errs []error
	for _, p := range r.projections {
		if _, err := r.Drain(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Drain procesa lotes de p hasta alcanzar la cabeza del log y devuelve
// cuántos eventos confirmó.
func (r *Runner) Drain(ctx context.Context, p Projection) (int, error) {
	name := p.Name()
	log := logger.From(ctx).With(logger.Component("projector"), logger.Projection(name))
	start := time.Now()
	defer func() {
		metrics.ProjectorTickDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	pos, err := r.load(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}

	done := 0
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		batch, err := r.read(ctx, p.Filter(), pos)
		if err != nil {
			return done, fmt.Errorf("read from %d: %w", pos, err)
		}
		for _, ev := range batch {
			drafts, err := r.handle(ctx, p, ev)
			if err != nil {
				metrics.ProjectorEvents.WithLabelValues(name, "error").Inc()
				log.Warn("handle failed, will retry",
					logger.EventID(ev.ID), logger.Position(uint64(ev.Position)), logger.Err(err))
				return done, err
			}
			if err := r.checkpoints.Commit(ctx, name, ev.Position, drafts); err != nil {
				return done, fmt.Errorf("commit checkpoint %d: %w", ev.Position, err)
			}
			pos = ev.Position
			done++
			metrics.ProjectorCheckpoint.WithLabelValues(name).Set(float64(pos))
			metrics.ProjectorEvents.WithLabelValues(name, outcome(drafts)).Inc()
		}
		if len(batch) < r.opts.BatchSize {
			if done > 0 {
				log.Debug("projection caught up", logger.Count(done), logger.Position(uint64(pos)))
			}
			return done, nil
		}
	}
}

func (r *Runner) load(ctx context.Context, name string) (eventlog.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ReadTimeout)
	defer cancel()
	return r.checkpoints.Load(ctx, name)
}

func (r *Runner) read(ctx context.Context, q eventlog.Query, after eventlog.Position) ([]eventlog.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ReadTimeout)
	defer cancel()
	return r.reader.ReadFrom(ctx, q, after, r.opts.BatchSize)
}

func (r *Runner) handle(ctx context.Context, p Projection, ev eventlog.Event) ([]eventlog.Draft, error) {
	if r.opts.HandleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.HandleTimeout)
		defer cancel()
	}
	return p.Handle(ctx, ev)
}

func outcome(drafts []eventlog.Draft) string {
	if len(drafts) == 0 {
		return "skipped"
	}
	for _, d := range drafts {
		for _, t := range d.Tags {
			if t.Key == "status" && t.Value == "failed" {
				return "failed"
			}
		}
	}
	return "handled"
}
