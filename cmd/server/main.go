package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokenpay/metrics-service/internal/buildinfo"
	"github.com/tokenpay/metrics-service/internal/config"
	"github.com/tokenpay/metrics-service/internal/ingest"
	"github.com/tokenpay/metrics-service/internal/server"
	"github.com/tokenpay/metrics-service/storage/inmemory"
	"github.com/tokenpay/metrics-service/storage/postgres"
)

func main() {
	buildinfo.PrintBuildInfo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.NewServerConfig()
	window := time.Duration(cfg.DedupWindowHours) * time.Hour

	var (
		store ingest.RecordStore
		err   error
	)
	if cfg.DatabaseDsn != "" {
		store, err = postgres.NewPostgresStorage(ctx, cfg.DatabaseDsn, window)
		if err != nil {
			cfg.Logger.Fatal(err)
		}
	} else {
		store = inmemory.NewMemStorage(ctx, window)
	}

	cfg.Logger.Infof("Server config: Addr=%s, DedupWindowHours=%d, ForwardEnabled=%t, ForwardURL=%q, DatabaseDSN set=%t",
		cfg.Addr,
		cfg.DedupWindowHours,
		cfg.ForwardEnabled,
		cfg.ForwardURL,
		cfg.DatabaseDsn != "",
	)

	service := ingest.NewService(store, ingest.NewForwarder(cfg), cfg)

	srv := server.NewServer(service, store, cfg)
	if err := srv.Run(ctx); err != nil {
		cfg.Logger.Fatal(err)
	}
}
