package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manhwahub/internal/app"
	"manhwahub/internal/config"
	udp "manhwahub/internal/microservices/udp-server"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2️⃣ Connect storage and build the stores
	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	// 3️⃣ Poller and cross-process sync
	application.Start(ctx)

	// 4️⃣ Optional UDP event feed
	if cfg.UDPPort > 0 {
		feed, err := udp.NewServer(fmt.Sprintf(":%d", cfg.UDPPort), application.Auth, 5*time.Minute, logger)
		if err != nil {
			logger.Error("failed to start UDP event feed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := feed.Run(ctx, application.Hub); err != nil {
				logger.Error("UDP event feed stopped", "error", err)
			}
		}()
	}

	// 5️⃣ Setup Gin
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           application.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		// requests inherit ctx so open SSE streams end on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "storage", cfg.StorageDriver, "sync", cfg.SyncEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	application.Wait()
}
