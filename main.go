package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/config"
	"github.com/hemocore/console/data"
	"github.com/hemocore/console/handlers"
	"github.com/hemocore/console/health"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/scheduler"
	"github.com/hemocore/console/server"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/session"
	"github.com/hemocore/console/validation"
	"github.com/joho/godotenv"
)

// loadEnv reads .env from the working directory, then from the executable's
// directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to get executable path:", err)
		return
	}
	if err := godotenv.Load(filepath.Join(filepath.Dir(ex), ".env")); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using the environment")
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logService := logging.Init(logging.Options{
		Dir:            cfg.LogDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleOnly:    cfg.Env == "test",
	})
	defer func() { _ = logService.Close() }()

	// The service token authenticates the background refresh only. The
	// handler client has no fallback, callers bring their own tokens.
	serviceSession := session.NewHolder(session.NewMemoryStore())
	if cfg.ServiceToken != "" {
		if err := serviceSession.Set(cfg.ServiceToken); err != nil {
			logging.Error("Failed to set service token", "error", err)
			os.Exit(1)
		}
		if expiry, ok := serviceSession.ExpiresAt(); ok {
			logging.Info("Service token loaded", "expires_at", expiry.Format(time.RFC3339))
		}
	} else {
		logging.Warn("SERVICE_TOKEN is not set, the snapshot refresh will call the API without a token")
	}

	client := apiclient.New(cfg.APIURL, nil)
	svc := services.New(client, services.Options{AllowDeliveryReversal: cfg.AllowDeliveryReversal})

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	interval := time.Duration(cfg.RefreshIntervalMinutes) * time.Minute
	thresholds := aggregate.Thresholds{
		LowStock:     float64(cfg.LowStockThreshold),
		ExpiryWindow: time.Duration(cfg.ExpiryWindowDays) * 24 * time.Hour,
	}

	validator := validation.NewDataValidator()
	sched := scheduler.NewScheduler(dataContainer, data.NewLoader(svc).WithServiceToken(serviceSession), validator, interval, thresholds)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(dataContainer, validator, svc, sched,
		health.NewHealthChecker(dataContainer, interval), thresholds)
	srv := server.NewServer(cfg, handler)

	logging.Info("HemoCore console configured",
		"env", cfg.Env,
		"api_url", cfg.APIURL,
		"refresh_interval", interval.String(),
		"delivery_reversal", cfg.AllowDeliveryReversal,
	)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
}
