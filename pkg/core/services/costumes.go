package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// AssignCostume checks one unit of a costume out to a member. The stock
// decrement and the assignment insert commit together; a costume with no
// units left fails with db.ErrOutOfStock and nothing is written.
func AssignCostume(
	ctx context.Context,
	store db.Transactor,
	logger *zap.Logger,
	memberID, costumeID, notes string,
	today time.Time,
) (result *model.CostumeAssignment, err error) {
	defer func() { metrics.RecordMutation(db.CollectionAssignments, "assign", err) }()

	logger.Debug("Assigning costume",
		zap.String("member_id", memberID),
		zap.String("costume_id", costumeID))

	err = store.InTx(ctx, func(tx db.Database) error {
		if _, err := tx.GetMember(ctx, memberID); err != nil {
			return fmt.Errorf("failed to fetch member: %w", err)
		}
		costume, err := tx.GetCostume(ctx, costumeID)
		if err != nil {
			return fmt.Errorf("failed to fetch costume: %w", err)
		}

		if err := tx.AdjustCostumeQuantity(ctx, costumeID, -1); err != nil {
			return fmt.Errorf("failed to take costume from stock: %w", err)
		}

		assignment := &model.CostumeAssignment{
			MemberID:     memberID,
			CostumeID:    costumeID,
			CostumeName:  costume.Name,
			AssignedDate: today.Format(model.DateLayout),
			Notes:        strings.TrimSpace(notes),
		}
		if err := tx.InsertAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
		result = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Costume assigned",
		zap.String("assignment_id", result.ID),
		zap.String("member_id", memberID),
		zap.String("costume", result.CostumeName))
	return result, nil
}

// ReturnCostume deletes the member's assignment and puts the unit back in
// stock. A second return of the same assignment fails with db.ErrNotFound.
func ReturnCostume(ctx context.Context, store db.Transactor, logger *zap.Logger, memberID, assignmentID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionAssignments, "return", err) }()

	var assignment *model.CostumeAssignment
	err = store.InTx(ctx, func(tx db.Database) error {
		a, err := tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("failed to fetch assignment: %w", err)
		}
		if memberID != "" && a.MemberID != memberID {
			return fmt.Errorf("assignment %s for member %s: %w", assignmentID, memberID, db.ErrNotFound)
		}

		if err := tx.DeleteAssignment(ctx, assignmentID); err != nil {
			return fmt.Errorf("failed to delete assignment: %w", err)
		}
		if err := tx.AdjustCostumeQuantity(ctx, a.CostumeID, 1); err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to return costume to stock: %w", err)
		}
		assignment = a
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Costume returned",
		zap.String("assignment_id", assignmentID),
		zap.String("member_id", assignment.MemberID),
		zap.String("costume", assignment.CostumeName))
	return nil
}

// AvailableCostumes lists costumes with at least one unit in stock, by name
func AvailableCostumes(ctx context.Context, store db.CostumeStore) ([]model.Costume, error) {
	costumes, err := store.ListCostumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch costumes: %w", err)
	}

	available := []model.Costume{}
	for _, c := range costumes {
		if c.Available() {
			available = append(available, c)
		}
	}
	return available, nil
}

func CreateCostume(ctx context.Context, store db.CostumeStore, logger *zap.Logger, costume model.Costume) (result *model.Costume, err error) {
	defer func() { metrics.RecordMutation(db.CollectionCostumes, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	costume.ID = ""
	costume.Name = strings.TrimSpace(costume.Name)
	if err := validateRecord(costume); err != nil {
		return nil, err
	}

	if err := store.InsertCostume(ctx, &costume); err != nil {
		return nil, fmt.Errorf("failed to insert costume: %w", err)
	}
	logger.Info("Costume created", zap.String("costume_id", costume.ID), zap.String("name", costume.Name))
	return &costume, nil
}

func UpdateCostume(ctx context.Context, store db.CostumeStore, logger *zap.Logger, costume model.Costume) (result *model.Costume, err error) {
	defer func() { metrics.RecordMutation(db.CollectionCostumes, "update", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	existing, err := store.GetCostume(ctx, costume.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch costume: %w", err)
	}
	costume.CreatedAt = existing.CreatedAt
	if costume.ImageURL == "" {
		costume.ImageURL = existing.ImageURL
	}
	if err := validateRecord(costume); err != nil {
		return nil, err
	}

	if err := store.UpdateCostume(ctx, &costume); err != nil {
		return nil, fmt.Errorf("failed to update costume: %w", err)
	}
	logger.Debug("Costume updated", zap.String("costume_id", costume.ID))
	return &costume, nil
}

func DeleteCostume(ctx context.Context, store db.CostumeStore, logger *zap.Logger, costumeID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionCostumes, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := store.DeleteCostume(ctx, costumeID); err != nil {
		return fmt.Errorf("failed to delete costume: %w", err)
	}
	logger.Info("Costume deleted", zap.String("costume_id", costumeID))
	return nil
}

// UploadCostumeImage stores a costume photo and sets the costume's ImageURL
func UploadCostumeImage(
	ctx context.Context,
	store db.CostumeStore,
	blobs blob.Store,
	teamID string,
	logger *zap.Logger,
	costumeID, fileName, contentType string,
	r io.Reader,
	size int64,
	now time.Time,
) (result *model.Costume, err error) {
	defer func() { metrics.RecordMutation(db.CollectionCostumes, "image", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	costume, err := store.GetCostume(ctx, costumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch costume: %w", err)
	}

	path := blob.CostumeImagePath(teamID, fileName, now)
	url, err := blobs.Upload(ctx, path, contentType, r, size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload costume image: %w", err)
	}

	costume.ImageURL = url
	if err := store.UpdateCostume(ctx, costume); err != nil {
		if delErr := blobs.Delete(ctx, path); delErr != nil {
			logger.Warn("Failed to remove orphaned costume image", zap.String("path", path), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save costume image: %w", err)
	}

	logger.Info("Costume image uploaded", zap.String("costume_id", costumeID), zap.String("path", path))
	return costume, nil
}
