// Command terminalsim runs the trading terminal simulator: a synthetic
// market, an order lifecycle engine and the blotters fed by them, served
// over HTTP and websocket or run headless.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efreitasn/terminalsim/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootConfig holds the persistent flags shared by every subcommand.
type rootConfig struct {
	envFile  string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rc := &rootConfig{}
	cmd := &cobra.Command{
		Use:           "terminalsim",
		Short:         "Trading terminal simulation and bookkeeping engine",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&rc.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&rc.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(rc),
		newRunCmd(rc),
		newHealthcheckCmd(rc),
		newVersionCmd(),
	)
	return cmd
}

// load reads the dotenv file and the environment, then installs the JSON
// logger as the default.
func (rc *rootConfig) load() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(rc.envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if rc.logLevel != "" {
		cfg.LogLevel = strings.ToLower(rc.logLevel)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
