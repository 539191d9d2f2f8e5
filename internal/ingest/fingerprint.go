package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tokenpay/metrics-service/model"
)

// canonicalMetric fixes the key order of the canonical serialization.
// Struct fields marshal in declaration order, and encoding/json emits map
// keys sorted, so the tag map (including nested objects) serializes
// deterministically regardless of submission order.
type canonicalMetric struct {
	Name     string         `json:"metric_name"`
	PagePath *string        `json:"page_path"`
	Tags     map[string]any `json:"tags"`
	Type     string         `json:"type"`
	Value    float64        `json:"value"`
}

// Fingerprint computes the dedup identity of a metric: the hex-encoded
// SHA-256 of its canonical JSON form. Two metrics that differ only in tag
// key order produce the same fingerprint. Pure function, no I/O.
func Fingerprint(m *model.Metric) (string, error) {
	raw, err := json.Marshal(canonicalMetric{
		Name:     m.Name,
		PagePath: m.PagePath,
		Tags:     m.Tags,
		Type:     m.Type,
		Value:    m.Value,
	})
	if err != nil {
		return "", fmt.Errorf("canonicalize metric %q: %w", m.Name, err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
