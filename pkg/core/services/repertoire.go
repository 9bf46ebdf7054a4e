package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// CascadeStore is a transactional store that can also record failed blob deletes
type CascadeStore interface {
	db.Transactor
	db.TombstoneStore
}

// RepertoireOrder selects the listing order of the repertoire
type RepertoireOrder string

const (
	RepertoireNewest  RepertoireOrder = "newest"
	RepertoireByTitle RepertoireOrder = "title"
)

// ListRepertoire returns the repertoire newest first, or by title
func ListRepertoire(ctx context.Context, store db.RepertoireStore, order RepertoireOrder) ([]model.RepertoireItem, error) {
	items, err := store.ListRepertoire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repertoire: %w", err)
	}
	if order == RepertoireByTitle {
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	}
	return items, nil
}

func CreateRepertoireItem(ctx context.Context, store db.RepertoireStore, logger *zap.Logger, item model.RepertoireItem) (result *model.RepertoireItem, err error) {
	defer func() { metrics.RecordMutation(db.CollectionRepertoire, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	item.ID = ""
	item.Title = strings.TrimSpace(item.Title)
	if err := validateRecord(item); err != nil {
		return nil, err
	}

	if err := store.InsertRepertoireItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to insert repertoire item: %w", err)
	}
	logger.Info("Repertoire item created", zap.String("repertoire_id", item.ID), zap.String("title", item.Title))
	return &item, nil
}

func UpdateRepertoireItem(ctx context.Context, store db.RepertoireStore, logger *zap.Logger, item model.RepertoireItem) (result *model.RepertoireItem, err error) {
	defer func() { metrics.RecordMutation(db.CollectionRepertoire, "update", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	existing, err := store.GetRepertoireItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repertoire item: %w", err)
	}
	item.CreatedAt = existing.CreatedAt
	if err := validateRecord(item); err != nil {
		return nil, err
	}

	if err := store.UpdateRepertoireItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to update repertoire item: %w", err)
	}
	logger.Debug("Repertoire item updated", zap.String("repertoire_id", item.ID))
	return &item, nil
}

// DeleteRepertoireResult reports what a repertoire delete removed
type DeleteRepertoireResult struct {
	DeletedMedia []model.MediaAsset
	// Tombstoned lists blobs left for ReconcileBlobs
	Tombstoned []string
}

// DeleteRepertoireItem removes an item together with all of its media. The
// documents go in one transaction; the blobs are deleted after commit, and
// any that cannot be deleted are tombstoned for ReconcileBlobs.
func DeleteRepertoireItem(ctx context.Context, store CascadeStore, blobs blob.Store, logger *zap.Logger, repertoireID string) (result *DeleteRepertoireResult, err error) {
	defer func() { metrics.RecordMutation(db.CollectionRepertoire, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	result = &DeleteRepertoireResult{}
	err = store.InTx(ctx, func(tx db.Database) error {
		if err := tx.DeleteRepertoireItem(ctx, repertoireID); err != nil {
			return fmt.Errorf("failed to delete repertoire item: %w", err)
		}
		media, err := tx.DeleteMediaForRepertoire(ctx, repertoireID)
		if err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}
		result.DeletedMedia = media
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(result.DeletedMedia))
	for _, m := range result.DeletedMedia {
		paths = append(paths, m.StoragePath)
	}
	result.Tombstoned = cleanupBlobs(ctx, store, blobs, logger, paths)

	logger.Info("Repertoire item deleted",
		zap.String("repertoire_id", repertoireID),
		zap.Int("media", len(result.DeletedMedia)),
		zap.Int("tombstoned", len(result.Tombstoned)))
	return result, nil
}
