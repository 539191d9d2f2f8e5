// Package errs defines sentinel errors shared across storage implementations
// and the ingestion pipeline.
package errs

import "errors"

var (
	// ErrDuplicateRecord reports that an identical record already exists
	// inside the dedup window. It is a normal outcome, not a failure.
	ErrDuplicateRecord = errors.New("duplicate metric record")

	// ErrEmptyBatch reports a report call with no metrics in it.
	ErrEmptyBatch = errors.New("metrics batch is empty")

	// ErrRecordNotFound reports a lookup miss.
	ErrRecordNotFound = errors.New("metric record not found")
)
