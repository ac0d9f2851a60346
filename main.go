package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vehicle-storefront/config"
	"vehicle-storefront/services"
	"vehicle-storefront/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	logLevel string
	backend  string
	pageSize int
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Vehicle marketplace listing loader",
	Long: `storefront pages vehicle listings out of the marketplace backend
(PostgreSQL, a hosted REST backend, or an in-memory fixture set) the same
way the storefront's infinite-scroll listing pages do.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backend
		}
		if cmd.Flags().Changed("page-size") {
			cfg.PageSize = pageSize
		}

		logger = utils.NewLoggerWithLevel(cfg.LogLevel)
		if !cfg.EnvFileLoaded {
			logger.Debug("[config] No .env file found, falling back to system env vars")
		}
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", config.BackendPostgres, "postgres, rest or memory (overrides BACKEND)")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 12, "listings per page (overrides PAGE_SIZE)")

	rootCmd.AddCommand(browseCmd, exportCmd, insightsCmd, seedCmd, serveCmd, probeScrollCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loaderConfig() (services.LoaderConfig, error) {
	policy, err := services.ParseHasMorePolicy(cfg.HasMorePolicy)
	if err != nil {
		return services.LoaderConfig{}, err
	}
	return services.LoaderConfig{Table: cfg.Table, PageSize: cfg.PageSize, Policy: policy}, nil
}
