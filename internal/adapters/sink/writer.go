package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
)

// Writer persists one result. Implementations must be safe for concurrent
// use by the sink workers.
type Writer interface {
	Write(ctx context.Context, res model.ScoringResult) error
	Close() error
}

// FileWriter lays results out as one JSON document per result under
// date-partitioned directories:
//
//	<root>/year=2026/month=08/day=29/<lead_id>_<nanos>.json
//
// The layout keeps downstream batch readers cheap: a day's results are one
// directory listing away.
type FileWriter struct {
	root string
}

// NewFileWriter creates the partitioned writer rooted at dir.
func NewFileWriter(dir string) (*FileWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrWrite)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	return &FileWriter{root: dir}, nil
}

// Write persists one result into its date partition.
func (w *FileWriter) Write(_ context.Context, res model.ScoringResult) error {
	at := res.ScoredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	dir := filepath.Join(w.root,
		fmt.Sprintf("year=%04d", at.Year()),
		fmt.Sprintf("month=%02d", at.Month()),
		fmt.Sprintf("day=%02d", at.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create partition: %v", ErrWrite, err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("%w: encode result: %v", ErrWrite, err)
	}

	name := fmt.Sprintf("%s_%d.json", sanitize(res.LeadID), at.UnixNano())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Close is a no-op; every Write is self-contained.
func (w *FileWriter) Close() error { return nil }

// sanitize keeps lead IDs filesystem-safe. IDs are caller-supplied strings
// and must never influence the directory layout.
func sanitize(id string) string {
	if id == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NoopWriter discards results. Used when persistence is disabled; the sink
// pipeline and its metrics still run.
type NoopWriter struct{}

// NewNoopWriter creates the discarding writer.
func NewNoopWriter() *NoopWriter { return &NoopWriter{} }

// Write discards the result.
func (*NoopWriter) Write(context.Context, model.ScoringResult) error { return nil }

// Close is a no-op.
func (*NoopWriter) Close() error { return nil }
