package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/splice/internal/config"
	"github.com/dropDatabas3/splice/internal/store"
	"github.com/dropDatabas3/splice/internal/store/pg"
	migrations "github.com/dropDatabas3/splice/migrations/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := rootContext(cmd.Context())
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		res, err := store.NewMigrator(migrations.FS, migrations.Dir).Run(ctx, pool)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d, skipped %d (%s)\n", len(res.Applied), len(res.Skipped), res.Duration)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := rootContext(cmd.Context())
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		st, err := store.NewMigrator(migrations.FS, migrations.Dir).Status(ctx, pool)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED AT")
		for _, s := range st {
			at := "pending"
			if s.AppliedAt != nil {
				at = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%04d\t%s\t%s\n", s.Version, s.Name, at)
		}
		return tw.Flush()
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

var errMemoryStorage = errors.New("storage.driver is memory: nothing persisted to operate on")

// openPool conecta a Postgres con la config cargada.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return connect(ctx, cfg)
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Storage.Driver == "memory" {
		return nil, errMemoryStorage
	}
	return pg.Connect(ctx, pg.PoolConfig{
		DSN:            cfg.Storage.DSN,
		MaxConns:       cfg.Storage.MaxConns,
		MinConns:       cfg.Storage.MinConns,
		ConnectTimeout: cfg.Storage.ConnectTimeout,
	})
}
