// Package ingest implements the metric ingestion pipeline:
// fingerprinting, the dedup store gate, and collector forwarding.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tokenpay/metrics-service/internal/config"
	"github.com/tokenpay/metrics-service/internal/errs"
	"github.com/tokenpay/metrics-service/internal/monitoring"
	"github.com/tokenpay/metrics-service/model"
)

// RecordStore is the persistence layer the pipeline writes through.
//
// FindRecent reports whether a record with the same fingerprint, name,
// page path, type and value exists inside the store's dedup window.
// Insert must return errs.ErrDuplicateRecord when the identity tuple
// collides with a concurrently inserted row, so a lost check-then-act race
// degrades to a skip instead of a double store.
type RecordStore interface {
	FindRecent(ctx context.Context, fingerprint string, m *model.Metric) (bool, error)
	Insert(ctx context.Context, rec *model.Record) error
	MarkForwarded(ctx context.Context, recs []*model.Record, response string) error
	Ping(ctx context.Context) error
}

// Outcome classifies a single metric: stored as new, or skipped as a
// duplicate inside the dedup window. A skip is not an error.
type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeSkipped
)

// Summary aggregates per-batch counters. Processed == Stored + Skipped.
type Summary struct {
	Processed int `json:"processed"`
	Stored    int `json:"stored"`
	Skipped   int `json:"skipped"`
}

// Service orchestrates the pipeline for one report batch.
type Service struct {
	store     RecordStore
	forwarder *Forwarder
	logger    *zap.SugaredLogger
}

// NewService creates the ingestion service.
func NewService(store RecordStore, forwarder *Forwarder, cfg *config.ServerConfig) *Service {
	return &Service{
		store:     store,
		forwarder: forwarder,
		logger:    cfg.Logger,
	}
}

// Report classifies every metric of the batch in input order, persists the
// new ones, and relays them to the collector in a single call.
//
// The batch fails fast: the first store failure aborts the remaining
// metrics and no partial summary is returned. Forwarding failures are
// logged and never surfaced to the caller.
func (svc *Service) Report(ctx context.Context, metrics []model.Metric) (Summary, error) {
	if len(metrics) == 0 {
		return Summary{}, errs.ErrEmptyBatch
	}

	monitoring.ReportBatches.Inc()

	var summary Summary
	newRecords := make([]*model.Record, 0, len(metrics))

	for i := range metrics {
		rec, outcome, err := svc.classify(ctx, &metrics[i])
		if err != nil {
			return Summary{}, fmt.Errorf("classify metric %q: %w", metrics[i].Name, err)
		}

		summary.Processed++
		switch outcome {
		case OutcomeStored:
			summary.Stored++
			monitoring.MetricsStored.Inc()
			newRecords = append(newRecords, rec)
		case OutcomeSkipped:
			summary.Skipped++
			monitoring.MetricsSkipped.Inc()
		}
	}

	if err := svc.forwarder.Forward(ctx, svc.store, newRecords); err != nil {
		monitoring.ForwardFailures.Inc()
		svc.logger.Errorf("failed to forward %d metrics to collector: %v", len(newRecords), err)
	}

	return summary, nil
}

// classify runs one metric through the dedup gate.
func (svc *Service) classify(ctx context.Context, m *model.Metric) (*model.Record, Outcome, error) {
	fp, err := Fingerprint(m)
	if err != nil {
		return nil, 0, err
	}

	found, err := svc.store.FindRecent(ctx, fp, m)
	if err != nil {
		return nil, 0, fmt.Errorf("dedup lookup: %w", err)
	}
	if found {
		return nil, OutcomeSkipped, nil
	}

	rec := &model.Record{
		ID:          uuid.New(),
		Fingerprint: fp,
		Metric:      *m,
	}
	if err := svc.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, errs.ErrDuplicateRecord) {
			// Lost the insert race to a concurrent identical submission.
			return nil, OutcomeSkipped, nil
		}
		return nil, 0, fmt.Errorf("insert record: %w", err)
	}

	return rec, OutcomeStored, nil
}
