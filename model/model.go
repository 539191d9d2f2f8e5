// Package model contains core data types for the project.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Metric represents a single observation submitted by a client.
//
// PagePath is optional; a null and a missing value mean the same thing.
// Tags is an arbitrary JSON object; tag key order carries no meaning.
type Metric struct {
	Name     string         `json:"metric_name"`         // Metric name, non-empty.
	PagePath *string        `json:"page_path,omitempty"` // Page the metric was observed on.
	Value    float64        `json:"value"`               // Measured value, compared exactly for dedup.
	Tags     map[string]any `json:"tags"`                // Free-form tag map.
	Type     string         `json:"type"`                // Classification, e.g. "count".
}

// Record is a persisted metric row.
//
// A record is written once per accepted metric and mutated only by the
// forwarding step (Forwarded, ForwardResponse). CreatedAt marks the
// dedup-window boundary and never changes.
type Record struct {
	ID              uuid.UUID
	Fingerprint     string
	Metric          Metric
	Forwarded       bool
	ForwardResponse *string
	CreatedAt       time.Time
}
