package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tokenpay/metrics-service/internal/config"
	"github.com/tokenpay/metrics-service/model"
	"github.com/tokenpay/metrics-service/storage/inmemory"
)

func ExampleService_Report() {
	ctx := context.Background()
	cfg := &config.ServerConfig{Logger: zap.NewNop().Sugar()}

	store := inmemory.NewMemStorage(ctx, time.Hour)
	svc := NewService(store, NewForwarder(cfg), cfg)

	batch := []model.Metric{
		{Name: "page_views", Value: 1, Tags: map[string]any{"platform": "web"}, Type: "count"},
		{Name: "page_views", Value: 1, Tags: map[string]any{"platform": "web"}, Type: "count"},
	}

	summary, _ := svc.Report(ctx, batch)
	fmt.Printf("processed=%d stored=%d skipped=%d\n", summary.Processed, summary.Stored, summary.Skipped)
	// Output: processed=2 stored=1 skipped=1
}
