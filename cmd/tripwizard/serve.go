package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tbxark/tripwizard/logger"
	"github.com/tbxark/tripwizard/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			log.Error("failed to start", zap.Error(err))
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.Warn("failed to close resources", zap.Error(err))
			}
		}()

		srv, err := server.New(a.assistant, a.runs, a.trips, log, cfg.Server)
		if err != nil {
			return err
		}
		log.Info("starting tripwizard",
			zap.String("environment", cfg.App.Environment),
			zap.String("sessions", cfg.Session.Backend),
			zap.String("trips", cfg.Trips.Backend))
		return srv.Run(ctx, cfg.Server)
	},
}
