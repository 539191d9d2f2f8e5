// Package server wires the HTTP surface of the metrics service: routing,
// request validation, and the response envelope.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokenpay/metrics-service/internal/config"
	"github.com/tokenpay/metrics-service/internal/ingest"
	"github.com/tokenpay/metrics-service/internal/server/middleware"
	"github.com/tokenpay/metrics-service/model"
)

const shutdownTimeout = 5 * time.Second

// Service classifies a metric batch and reports the outcome counters.
type Service interface {
	Report(ctx context.Context, metrics []model.Metric) (ingest.Summary, error)
}

// Storage is the slice of the record store the server needs directly.
type Storage interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Service Service
	Storage Storage
	Config  *config.ServerConfig
}

func NewServer(service Service, storage Storage, cfg *config.ServerConfig) *Server {
	return &Server{
		Service: service,
		Storage: storage,
		Config:  cfg,
	}
}

func (srv *Server) newRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.LogMiddleware(srv.Config.Logger))
	router.Use(middleware.TrustedCIDR(srv.Config.TrustedSubnet))
	router.Use(middleware.VerifyHashMiddleware(srv.Config))
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.CompressMiddleware)

	router.Post("/api/metrics/report", srv.ReportMetricsHandler)
	router.Get("/ping", srv.PingHandler)
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (srv *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    srv.Config.Addr,
		Handler: srv.newRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := srv.Storage.Ping(r.Context()); err != nil {
		srv.Config.Logger.Errorf("storage ping failed: %v", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
