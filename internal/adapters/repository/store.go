// Package repository keeps the latest scoring result per lead in memory and
// serves the read endpoints on top of the persistence sink.
package repository

import (
	"context"

	"github.com/convertly/leadscore/internal/domain/model"
)

// Store provides read/write access to per-lead scoring state.
type Store interface {
	// Save records the latest result for a lead, replacing any earlier one.
	Save(ctx context.Context, res model.ScoringResult)

	// Get returns the latest result for a lead.
	// Returns ErrNotFound if the lead has never been scored.
	Get(ctx context.Context, leadID string) (model.ScoringResult, error)

	// TopN returns up to n leads ordered by raw score descending.
	TopN(ctx context.Context, n int) ([]model.ScoringResult, error)

	// Count returns the number of distinct leads tracked.
	Count(ctx context.Context) int
}
