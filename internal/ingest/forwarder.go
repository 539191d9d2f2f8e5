package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokenpay/metrics-service/internal/config"
	"github.com/tokenpay/metrics-service/model"
)

// collectorContentType is what the collector expects. The body is JSON;
// the label is a wire quirk of the collector and must not be "fixed".
const collectorContentType = "text/plain;charset=UTF-8"

// Forwarder relays newly stored metrics to the external collector.
// At most one attempt is made per batch; a failed forward never undoes
// the store step.
type Forwarder struct {
	enabled   bool
	url       string
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

// NewForwarder builds a forwarder from the server configuration.
func NewForwarder(cfg *config.ServerConfig) *Forwarder {
	timeout := time.Duration(cfg.ForwardTimeout) * time.Second
	return &Forwarder{
		enabled:   cfg.ForwardEnabled,
		url:       cfg.ForwardURL,
		userAgent: cfg.ForwardUserAgent,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
	}
}

// Forward posts the batch of newly stored records to the collector as one
// call and, on success, marks the underlying rows forwarded with the
// collector's response attached. A no-op when disabled or the batch is
// empty. The call runs on its own timeout, detached from the caller's
// request deadline.
func (fwd *Forwarder) Forward(ctx context.Context, store RecordStore, recs []*model.Record) error {
	if !fwd.enabled || fwd.url == "" || len(recs) == 0 {
		return nil
	}

	metrics := make([]model.Metric, 0, len(recs))
	for _, rec := range recs {
		metrics = append(metrics, rec.Metric)
	}

	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	fwdCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fwd.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fwdCtx, http.MethodPost, fwd.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", collectorContentType)
	req.Header.Set("User-Agent", fwd.userAgent)

	resp, err := fwd.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := store.MarkForwarded(fwdCtx, recs, string(respBody)); err != nil {
		return fmt.Errorf("mark forwarded: %w", err)
	}
	return nil
}
