package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jobdesk/jobdesk/pkg/config"
	"github.com/jobdesk/jobdesk/pkg/platform"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	p := platform.NewPlatform(cfg, logger)
	if err := p.Start(); err != nil {
		logger.Fatal("Failed to start platform", zap.Error(err))
	}
	defer p.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		logger.Info("shutdown signal received", zap.String("signal", s.String()))
		p.Stop()
		os.Exit(0)
	}()

	srv := platform.NewServer(p, logger)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
