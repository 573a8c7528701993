package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	// ErrNotStarted reports a scoring call against a stopped service.
	ErrNotStarted = errors.New("service not started")

	// ErrBatchTooLarge reports a batch above the configured cap.
	ErrBatchTooLarge = errors.New("batch too large")
)

// BatchSizeError carries the offending and permitted batch sizes. The whole
// batch is rejected; no element is scored.
type BatchSizeError struct {
	Size int
	Max  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("batch holds %d leads, maximum is %d", e.Size, e.Max)
}

func (e *BatchSizeError) Is(target error) bool {
	return target == ErrBatchTooLarge
}
