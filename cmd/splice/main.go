// Command splice corre el backend de cuentas y sus tareas de operación.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/splice/internal/config"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// version se fija con -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "splice",
	Short:         "Account backend over a tagged event log",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env es opcional; las variables ya exportadas ganan.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to YAML config (optional)")
	rootCmd.Version = version
}

// loadConfig carga la config e inicializa el logger global.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.App.Version = version
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "splice",
		Version:     version,
	})
	return cfg, nil
}

func rootContext(ctx context.Context) context.Context {
	return logger.ToContext(ctx, logger.L())
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
