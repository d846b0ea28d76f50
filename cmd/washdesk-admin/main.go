// Command washdesk-admin is a terminal notification center for washdesk
// operators.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukerupert/washdesk/internal/center"
	"github.com/dukerupert/washdesk/internal/client"
	"github.com/dukerupert/washdesk/internal/logging"
	"github.com/dukerupert/washdesk/internal/model"
	"github.com/dukerupert/washdesk/internal/report"
	"github.com/dukerupert/washdesk/internal/toast"
)

func main() {
	baseURL := flag.String("url", envOr("WASHDESK_URL", "http://localhost:8080"), "washdesk server URL")
	token := flag.String("token", os.Getenv("WASHDESK_TOKEN"), "admin bearer token (skips login)")
	username := flag.String("user", envOr("WASHDESK_USER", "admin"), "admin username")
	password := flag.String("password", os.Getenv("WASHDESK_PASSWORD"), "admin password")
	outDir := flag.String("out", ".", "directory exported reports are saved to")
	serverExport := flag.Bool("server-export", false, "render PDF exports on the server")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, "text")
	toaster := toast.NewWriter(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*baseURL, client.WithToaster(toaster), client.WithToken(*token))
	if *token == "" {
		if _, _, err := api.Login(ctx, *username, *password); err != nil {
			os.Exit(1)
		}
	}

	ctrl := center.New(api, logger.With("component", "center"),
		center.WithOnNew(func(n model.Notification) { renderNotice(os.Stdout, n) }))
	ctrl.Load(ctx)

	go func() {
		err := ctrl.Subscribe(ctx, center.WebSocketURL(api.BaseURL()), api.Token())
		if err != nil {
			logger.Warn("live updates stopped", "error", err)
			toaster.Show(toast.LevelError, "Live updates disconnected")
		}
	}()

	c := &console{
		ctrl:         ctrl,
		dashboards:   api,
		exporter:     report.New(toaster),
		serverExport: *serverExport,
		outDir:       *outDir,
		out:          os.Stdout,
	}
	if *password != "" {
		c.relogin = func(ctx context.Context) error {
			_, _, err := api.Login(ctx, *username, *password)
			return err
		}
	}
	if err := c.run(ctx, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
