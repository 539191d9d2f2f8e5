package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokenpay/metrics-service/model"
	"github.com/tokenpay/metrics-service/storage/inmemory"
)

func newStoredRecords(t *testing.T, store *inmemory.MemStorage, names ...string) []*model.Record {
	t.Helper()

	recs := make([]*model.Record, 0, len(names))
	for _, name := range names {
		m := testMetric(name)
		fp, err := Fingerprint(&m)
		require.NoError(t, err)

		rec := &model.Record{Fingerprint: fp, Metric: m}
		require.NoError(t, store.Insert(context.Background(), rec))
		recs = append(recs, rec)
	}
	return recs
}

func TestForward_DisabledIsNoop(t *testing.T) {
	var calls int
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer sink.Close()

	cfg := testConfig()
	cfg.ForwardEnabled = false
	cfg.ForwardURL = sink.URL
	fwd := NewForwarder(cfg)

	store := inmemory.NewMemStorage(context.Background(), time.Hour)
	recs := newStoredRecords(t, store, "disabled_metric")

	require.NoError(t, fwd.Forward(context.Background(), store, recs))
	require.Zero(t, calls)
}

func TestForward_EmptyBatchIsNoop(t *testing.T) {
	var calls int
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer sink.Close()

	cfg := testConfig()
	cfg.ForwardEnabled = true
	cfg.ForwardURL = sink.URL
	fwd := NewForwarder(cfg)

	store := inmemory.NewMemStorage(context.Background(), time.Hour)
	require.NoError(t, fwd.Forward(context.Background(), store, nil))
	require.Zero(t, calls)
}

func TestForward_Non2xxStatusIsError(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer sink.Close()

	cfg := testConfig()
	cfg.ForwardEnabled = true
	cfg.ForwardURL = sink.URL
	fwd := NewForwarder(cfg)

	store := inmemory.NewMemStorage(context.Background(), time.Hour)
	recs := newStoredRecords(t, store, "bad_gateway_metric")

	err := fwd.Forward(context.Background(), store, recs)
	require.Error(t, err)
	require.False(t, recs[0].Forwarded)
}

func TestForward_UnreachableSinkIsError(t *testing.T) {
	cfg := testConfig()
	cfg.ForwardEnabled = true
	cfg.ForwardURL = "http://127.0.0.1:1/collect"
	cfg.ForwardTimeout = 1
	fwd := NewForwarder(cfg)

	store := inmemory.NewMemStorage(context.Background(), time.Hour)
	recs := newStoredRecords(t, store, "unreachable_metric")

	err := fwd.Forward(context.Background(), store, recs)
	require.Error(t, err)
}

func TestForward_SurvivesCancelledCaller(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer sink.Close()

	cfg := testConfig()
	cfg.ForwardEnabled = true
	cfg.ForwardURL = sink.URL
	fwd := NewForwarder(cfg)

	store := inmemory.NewMemStorage(context.Background(), time.Hour)
	recs := newStoredRecords(t, store, "detached_metric")

	// The forward call runs on its own deadline; a dead caller context
	// must not abort it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, fwd.Forward(ctx, store, recs))
	require.True(t, recs[0].Forwarded)
}
