package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "invoizo/internal/adapters/web"
	"invoizo/internal/bootstrap"
	"invoizo/internal/config"
	"invoizo/internal/logging"
)

func main() {
	memory := flag.Bool("memory", false, "keep all data in memory instead of Postgres")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, logger, *memory)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}
	defer rt.Close()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	handler := webAdapter.NewHandler(rt.Service, webAdapter.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		BodyLimit:      cfg.Server.BodyLimit,
		SecureCookie:   cfg.Server.SecureCookie,
		Logger:         logger,
	})

	if cfg.Notifications.Enabled {
		go rt.Poller(cfg, logger).Run(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown")
		}
	}()

	logger.WithField("port", cfg.Server.Port).Info("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server")
	}
	logger.Info("server stopped")
}
