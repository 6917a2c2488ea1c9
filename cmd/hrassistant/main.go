package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/config"
	"github.com/garyjia/hr-assistant/internal/container"
	"github.com/garyjia/hr-assistant/pkg/utils"
)

const defaultConfigPath = "configs/config.yaml"

var (
	// Global flags
	configPath string
	verbose    bool
)

// rootCmd starts the interactive assistant when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "hrassistant",
	Short: "HR assistant - answers HR questions and executes HR commands",
	Long: `hrassistant answers questions about employees, leave and reviews, and
executes commands such as applying for leave or scheduling a review.

Questions are answered from the HR database; commands are understood with
the help of a language model. Indonesian and English are both accepted.

Run without arguments to start the interactive prompt.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd)
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+defaultConfigPath+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(replCmd, askCmd, serveCmd, importCmd, exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// app bundles what every subcommand needs
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *container.Container
}

// close releases the container and flushes the logger
func (a *app) close() {
	if err := a.container.Close(); err != nil {
		a.logger.Error("Failed to close container", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// resolveConfigPath falls back to the default file only when it exists
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// newApp loads configuration and starts the container. storageOnly skips the
// language model so import and export work without credentials.
func newApp(ctx context.Context, storageOnly bool) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Logger.Level
	if verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return nil, err
	}

	if storageOnly {
		err = c.StartStorage(ctx)
	} else {
		err = c.Start(ctx)
	}
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, container: c}, nil
}

// isInterrupted reports whether err only reflects a cancelled context
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
