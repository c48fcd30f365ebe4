// Package app arma el proceso: stores, servicios, HTTP y projector.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/splice/internal/config"
	"github.com/dropDatabas3/splice/internal/email"
	"github.com/dropDatabas3/splice/internal/eventlog"
	apihttp "github.com/dropDatabas3/splice/internal/http"
	accountsctl "github.com/dropDatabas3/splice/internal/http/controllers/accounts"
	healthctl "github.com/dropDatabas3/splice/internal/http/controllers/health"
	"github.com/dropDatabas3/splice/internal/http/router"
	"github.com/dropDatabas3/splice/internal/http/services/accounts"
	"github.com/dropDatabas3/splice/internal/http/services/health"
	"github.com/dropDatabas3/splice/internal/jwt"
	"github.com/dropDatabas3/splice/internal/observability/logger"
	"github.com/dropDatabas3/splice/internal/projector"
	"github.com/dropDatabas3/splice/internal/rate"
	"github.com/dropDatabas3/splice/internal/security/password"
	"github.com/dropDatabas3/splice/internal/store"
	"github.com/dropDatabas3/splice/internal/store/pg"
	migrations "github.com/dropDatabas3/splice/migrations/postgres"
)

// Container agrupa las dependencias construidas a partir de la config.
type Container struct {
	Config   *config.Config
	Pool     *pgxpool.Pool // nil con driver memory
	Events   eventlog.Reader
	Accounts *accounts.Service
	Issuer   *jwt.Issuer
	Runner   *projector.Runner
	Handler  http.Handler

	closers []func()
}

// Build construye el Container. Close libera lo que Build abrió.
func Build(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	log := logger.From(ctx).With(logger.Component("app"))
	c := &Container{Config: cfg}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Issuer, err = jwt.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	var (
		accStore accounts.Store
		cps      projector.Checkpoints
		checks   = map[string]health.Check{}
	)
	switch cfg.Storage.Driver {
	case "memory":
		mem := eventlog.NewMemory()
		c.Events = mem
		accStore = accounts.NewMemoryStore(mem)
		cps = projector.NewMemoryCheckpoints(mem)
		log.Warn("using in-memory storage; state is lost on restart")
	default:
		pool, err := pg.Connect(ctx, pg.PoolConfig{
			DSN:            cfg.Storage.DSN,
			MaxConns:       cfg.Storage.MaxConns,
			MinConns:       cfg.Storage.MinConns,
			ConnectTimeout: cfg.Storage.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		c.closers = append(c.closers, pool.Close)

		if err := c.migrate(ctx); err != nil {
			return nil, err
		}

		evlog := pg.NewEventLog(pool)
		coord := store.NewCoordinator(pool, evlog, cfg.Storage.TxTimeout)
		c.Events = evlog
		accStore = accounts.NewPGStore(pool, coord)
		cps = pg.NewCheckpoints(pool, coord)
		checks["postgres"] = pool.Ping
		checks["eventlog"] = func(ctx context.Context) error {
			_, err := evlog.Head(ctx)
			return err
		}
	}

	c.Accounts, err = c.buildAccounts(accStore)
	if err != nil {
		return nil, err
	}

	if cfg.Projector.Enabled {
		verification, err := c.buildVerification()
		if err != nil {
			return nil, err
		}
		c.Runner = projector.NewRunner(c.Events, cps, projector.Options{
			Interval:      cfg.Projector.Interval,
			BatchSize:     cfg.Projector.BatchSize,
			HandleTimeout: cfg.Projector.HandleTimeout,
			ReadTimeout:   cfg.Storage.QueryTimeout,
		}, verification)
	}

	limiter, err := c.buildLimiter(ctx, checks)
	if err != nil {
		return nil, err
	}

	metricsHandler, err := apihttp.RegisterMetrics(apihttp.MetricsConfig{
		Registry: prometheus.NewRegistry(),
		Pool:     c.Pool,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	c.Handler = router.New(router.Deps{
		Accounts:    accountsctl.NewControllers(c.Accounts.Services()),
		Health:      healthctl.NewControllers(health.NewServices(health.Deps{Checks: checks, Version: cfg.App.Version})),
		Verifier:    c.Issuer,
		RateLimiter: limiter,
		Metrics:     metricsHandler,
	})
	return c, nil
}

func (c *Container) migrate(ctx context.Context) error {
	m := store.NewMigrator(migrations.FS, migrations.Dir)
	if !c.Config.Storage.AutoMigrate {
		pending, err := m.HasPending(ctx, c.Pool)
		if err != nil {
			return err
		}
		if pending {
			logger.From(ctx).Warn("pending migrations; run `splice migrate up`")
		}
		return nil
	}
	res, err := m.Run(ctx, c.Pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.From(ctx).Info("migrations applied", logger.Count(len(res.Applied)))
	return nil
}

func (c *Container) buildAccounts(s accounts.Store) (*accounts.Service, error) {
	sec := c.Config.Security
	bl, err := password.LoadBlacklist(sec.PasswordBlacklist)
	if err != nil {
		return nil, fmt.Errorf("password blacklist: %w", err)
	}
	return accounts.New(accounts.Deps{
		Store:           s,
		Events:          c.Events,
		Hasher:          password.NewHasher(password.Default),
		Tokens:          c.Issuer,
		Policy:          sec.PasswordPolicy,
		Blacklist:       bl,
		VerificationTTL: c.Config.Email.VerifyTTL,
		QueryTimeout:    c.Config.Storage.QueryTimeout,
	})
}

func (c *Container) buildVerification() (*projector.Verification, error) {
	cfg := c.Config
	tpl, err := email.LoadTemplates()
	if err != nil {
		return nil, err
	}
	var sender email.Sender
	switch cfg.Email.Driver {
	case "smtp":
		sender = email.NewSMTPSender(cfg.Email.SMTP)
	default:
		sender = email.NewLogSender()
	}
	return projector.NewVerification(projector.VerificationConfig{
		AppName: cfg.App.Name,
		BaseURL: cfg.App.BaseURL,
		TTL:     cfg.Email.VerifyTTL,
	}, c.Events, sender, tpl), nil
}

func (c *Container) buildLimiter(ctx context.Context, checks map[string]health.Check) (rate.Limiter, error) {
	rc := c.Config.Rate
	if !rc.Enabled {
		return nil, nil
	}
	if rc.Backend != "redis" {
		return rate.NewMemoryLimiter(rc.Max, rc.Window), nil
	}
	client := rdb.NewClient(&rdb.Options{
		Addr:     rc.Redis.Addr,
		Password: rc.Redis.Password,
		DB:       rc.Redis.DB,
	})
	c.closers = append(c.closers, func() { _ = client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return rate.NewRedisLimiter(client, rc.Redis.Prefix, rc.Max, rc.Window), nil
}

// Close libera los recursos en orden inverso.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Serve corre HTTP y el projector hasta que ctx se cancele o uno de los dos
// falle; en ambos casos apaga el otro.
func (c *Container) Serve(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("app"))
	srv := apihttp.NewServer(apihttp.ServerConfig{
		Addr:         c.Config.Server.Addr,
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
		IdleTimeout:  c.Config.Server.IdleTimeout,
	}, c.Handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apihttp.Serve(gctx, srv, c.Config.Server.ShutdownTimeout)
	})
	if c.Runner != nil {
		g.Go(func() error { return c.Runner.Run(gctx) })
	} else {
		log.Info("projector disabled")
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("serve stopped", logger.Err(err))
		return err
	}
	log.Info("serve stopped")
	return nil
}
