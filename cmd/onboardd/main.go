package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/talentops/onboard"
	"github.com/talentops/onboard/server"
	"github.com/talentops/onboard/service/event"
	"github.com/talentops/onboard/tracing"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboardd",
		Short: "Employee onboarding workflow server",
		Long:  "Onboardd runs the onboarding state machine and its REST API.",
		RunE:  runServer,
	}
	rootCmd.Flags().StringP("config", "c", "", "path to YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := onboard.DefaultConfig()
	if configPath != "" {
		loaded, err := onboard.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := tracing.Init("onboardd", version, ""); err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	svc, err := onboard.New(
		onboard.WithConfig(cfg),
		onboard.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to initialise service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.Events().Listen(ctx, func(e *event.Event) error {
		logger.Info("transition event",
			zap.String("topic", e.Topic),
			zap.String("processId", e.ProcessID),
			zap.String("step", e.Step),
			zap.String("status", string(e.Status)))
		return nil
	})

	return server.New(svc).Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return cfg.Build()
}
