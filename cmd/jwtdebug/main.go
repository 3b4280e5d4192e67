// Command jwtdebug serves the token decoder and encoder over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/cybergodev/jwtdebug/internal/config"
	"github.com/cybergodev/jwtdebug/internal/logger"
	"github.com/cybergodev/jwtdebug/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "jwtdebug:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Close()

	if _, err := maxprocs.Set(maxprocs.Logger(log.Sugar().Infof)); err != nil {
		log.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log.Logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Error("http service stopped", zap.Error(err))
		return err
	}

	log.Info("http service stopped")
	return nil
}
