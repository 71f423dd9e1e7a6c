package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"soundbox/config"
	"soundbox/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	rootDir    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "soundbox",
	Short:         "Sound Box is a browser-based audio library browser.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "directory containing the audios/ folder")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

// setup loads configuration, applies persistent flag overrides and builds the logger
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// Execute executes the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
