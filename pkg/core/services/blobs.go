package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/db"
)

const blobDeleteAttempts = 3

// blobRetryDelay is the wait before the second delete attempt; it doubles after each failure
var blobRetryDelay = 500 * time.Millisecond

// deleteBlob deletes path, retrying with backoff. It returns the last error
// when every attempt failed.
func deleteBlob(ctx context.Context, blobs blob.Store, logger *zap.Logger, path string) error {
	delay := blobRetryDelay
	var err error
	for attempt := 1; attempt <= blobDeleteAttempts; attempt++ {
		if err = blobs.Delete(ctx, path); err == nil {
			return nil
		}
		logger.Warn("Failed to delete blob",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == blobDeleteAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// cleanupBlobs deletes blobs whose documents are already gone. Paths that
// cannot be deleted are recorded as tombstones for ReconcileBlobs; the
// returned slice lists them.
func cleanupBlobs(ctx context.Context, store db.TombstoneStore, blobs blob.Store, logger *zap.Logger, paths []string) []string {
	var tombstoned []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		err := deleteBlob(ctx, blobs, logger, path)
		if err == nil {
			continue
		}

		tombstone := &db.BlobTombstone{Path: path, Attempts: blobDeleteAttempts, LastError: err.Error()}
		if tsErr := store.InsertBlobTombstone(context.WithoutCancel(ctx), tombstone); tsErr != nil {
			logger.Error("Failed to record blob tombstone",
				zap.String("path", path),
				zap.Error(tsErr))
			continue
		}
		logger.Warn("Blob delete deferred to reconciliation", zap.String("path", path))
		tombstoned = append(tombstoned, path)
	}
	return tombstoned
}

// ReconcileBlobsResult lists the outcome of a tombstone pass
type ReconcileBlobsResult struct {
	Deleted   []string
	Remaining []db.BlobTombstone
}

// ReconcileBlobs retries every recorded failed blob delete. Deleted blobs
// drop their tombstone; failures bump the attempt count and stay.
func ReconcileBlobs(ctx context.Context, store db.TombstoneStore, blobs blob.Store, logger *zap.Logger) (*ReconcileBlobsResult, error) {
	tombstones, err := store.ListBlobTombstones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blob tombstones: %w", err)
	}
	logger.Debug("Reconciling blobs", zap.Int("tombstones", len(tombstones)))

	result := &ReconcileBlobsResult{Deleted: []string{}, Remaining: []db.BlobTombstone{}}
	for _, ts := range tombstones {
		if err := blobs.Delete(ctx, ts.Path); err != nil {
			ts.Attempts++
			ts.LastError = err.Error()
			if err := store.InsertBlobTombstone(ctx, &ts); err != nil {
				return nil, fmt.Errorf("failed to update tombstone for %s: %w", ts.Path, err)
			}
			logger.Warn("Blob still not deleted",
				zap.String("path", ts.Path),
				zap.Int("attempts", ts.Attempts),
				zap.Error(err))
			result.Remaining = append(result.Remaining, ts)
			continue
		}

		if err := store.DeleteBlobTombstone(ctx, ts.ID); err != nil {
			return nil, fmt.Errorf("failed to clear tombstone for %s: %w", ts.Path, err)
		}
		result.Deleted = append(result.Deleted, ts.Path)
	}

	logger.Info("Blob reconciliation complete",
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("remaining", len(result.Remaining)))
	return result, nil
}
