package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/config"
	"github.com/dukerupert/famdash/internal/database"
	"github.com/dukerupert/famdash/internal/docstore"
	"github.com/dukerupert/famdash/internal/docstore/firestore"
	"github.com/dukerupert/famdash/internal/docstore/sqlitestore"
	"github.com/dukerupert/famdash/internal/logging"
	"github.com/dukerupert/famdash/internal/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	dashboard := card.NewDashboard(store, cfg.Household, cfg.Location, logger)
	srv := server.New(dashboard, cfg.Household, logger)

	// Subscriptions outlive the signal context; Stop releases them.
	if err := dashboard.Start(context.WithoutCancel(ctx)); err != nil {
		logger.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}
	defer dashboard.Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := srv.RateLimiter().Cleanup(); n > 0 {
					logger.Debug("cleaned up rate limit entries", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("famdash starting",
			"addr", httpServer.Addr,
			"store", cfg.Store,
			"members", cfg.Household.Members(),
			"tz", cfg.Location.String(),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (docstore.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreFirestore:
		client, err := firestore.Connect(ctx, firestore.Config{
			ProjectID:       cfg.FirestoreProject,
			CredentialsFile: cfg.FirebaseCredentials,
		})
		if err != nil {
			return nil, nil, err
		}
		s := firestore.New(client, logger.With("component", "firestore"))
		return s, s, nil
	default:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return sqlitestore.New(db, cfg.PollInterval, logger.With("component", "sqlitestore")), db, nil
	}
}
