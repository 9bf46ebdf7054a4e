package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// CostumeStock is one line of the reconciliation report
type CostumeStock struct {
	CostumeID   string
	Name        string
	InStock     int
	Outstanding int
}

// Total is the number of units the ensemble owns according to the store
func (s CostumeStock) Total() int {
	return s.InStock + s.Outstanding
}

// ReconcileCostumesResult lists every costume plus assignments whose costume no longer exists
type ReconcileCostumesResult struct {
	Costumes []CostumeStock
	Orphaned []model.CostumeAssignment
}

// ReconcileCostumesStore defines the store operations the reconciliation reads
type ReconcileCostumesStore interface {
	ListCostumes(ctx context.Context) ([]model.Costume, error)
	ListAssignments(ctx context.Context) ([]model.CostumeAssignment, error)
}

// ReconcileCostumes reports stored stock against outstanding assignments.
// It only reads; there is no recorded total to correct the counter against.
func ReconcileCostumes(ctx context.Context, store ReconcileCostumesStore, logger *zap.Logger) (*ReconcileCostumesResult, error) {
	costumes, err := store.ListCostumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch costumes: %w", err)
	}
	assignments, err := store.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	outstanding := make(map[string]int)
	for _, a := range assignments {
		outstanding[a.CostumeID]++
	}

	result := &ReconcileCostumesResult{Costumes: make([]CostumeStock, 0, len(costumes))}
	known := make(map[string]bool, len(costumes))
	for _, c := range costumes {
		known[c.ID] = true
		result.Costumes = append(result.Costumes, CostumeStock{
			CostumeID:   c.ID,
			Name:        c.Name,
			InStock:     c.Quantity,
			Outstanding: outstanding[c.ID],
		})
	}
	for _, a := range assignments {
		if !known[a.CostumeID] {
			result.Orphaned = append(result.Orphaned, a)
		}
	}

	logger.Debug("Costume reconciliation complete",
		zap.Int("costumes", len(result.Costumes)),
		zap.Int("orphaned_assignments", len(result.Orphaned)))
	return result, nil
}
