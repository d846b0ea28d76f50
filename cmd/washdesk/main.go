package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/washdesk/internal/auth"
	"github.com/dukerupert/washdesk/internal/config"
	"github.com/dukerupert/washdesk/internal/database"
	"github.com/dukerupert/washdesk/internal/logging"
	"github.com/dukerupert/washdesk/internal/push"
	"github.com/dukerupert/washdesk/internal/server"
)

func main() {
	if len(os.Args) > 1 {
		if err := runTool(os.Args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Auth.PasswordHash == "" {
		logger.Warn("WASHDESK_AUTH_PASSWORD_HASH is not set, admin login is disabled")
	}

	srv := server.New(cfg, db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("washdesk running", "addr", "http://localhost:"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	srv.Shutdown()
}

func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.RateLimiter().Cleanup()
			logger.Debug("rate limiter cleaned", "keys", srv.RateLimiter().Len())
		}
	}
}

// runTool handles the one-shot helper commands used while provisioning.
func runTool(args []string) error {
	switch args[0] {
	case "hash-password":
		if len(args) != 2 {
			return errors.New("usage: washdesk hash-password <password>")
		}
		h, err := auth.HashPassword(args[1])
		if err != nil {
			return err
		}
		fmt.Println(h)
		return nil
	case "vapid-keys":
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Printf("WASHDESK_VAPID_PUBLIC_KEY=%s\nWASHDESK_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return nil
	default:
		return fmt.Errorf("unknown command %q (want hash-password or vapid-keys)", args[0])
	}
}
