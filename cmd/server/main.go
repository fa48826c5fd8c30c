package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"stockcard/internal/config"
	"stockcard/internal/httpx"
	"stockcard/internal/logger"
	"stockcard/internal/pipeline"
	"stockcard/internal/provider"
	"stockcard/internal/provider/alphavantage"
	"stockcard/internal/provider/ratelimit"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	if cfg.AlphaVantage.APIKey == "demo" {
		logger.L.Warn("using the Alpha Vantage demo key; only MSFT is served")
	}

	httpClient := httpx.New(cfg.RequestTimeout())
	av, err := alphavantage.New(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
		alphavantage.WithHTTPClient(httpClient),
	)
	if err != nil {
		log.Fatalf("alphavantage: %v", err)
	}
	var f provider.Fetcher = av
	if l := ratelimit.NewLimiter(cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst, cfg.MinRequestInterval()); l != nil {
		f = &ratelimit.Limited{F: f, L: l}
	}

	a := &app{
		svc:           pipeline.New(f, cfg.Card),
		style:         cfg.Card,
		defaultSymbol: cfg.DefaultSymbol,
		timeout:       cfg.RequestTimeout(),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L.Info("server listening", "addr", srv.Addr, "provider", f.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
