package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// MediaUploadStore defines the store operations needed to attach a file to a repertoire item
type MediaUploadStore interface {
	GetRepertoireItem(ctx context.Context, id string) (*model.RepertoireItem, error)
	InsertMedia(ctx context.Context, asset *model.MediaAsset) error
}

// UploadMedia uploads a file for a repertoire item and records it. When the
// record cannot be written the uploaded blob is deleted again.
func UploadMedia(
	ctx context.Context,
	store MediaUploadStore,
	blobs blob.Store,
	teamID string,
	logger *zap.Logger,
	repertoireID, fileName string,
	r io.Reader,
	size int64,
	progress blob.ProgressFunc,
	now time.Time,
) (result *model.MediaAsset, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMedia, "upload", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, invalid("fileName", "is required")
	}
	if _, err := store.GetRepertoireItem(ctx, repertoireID); err != nil {
		return nil, fmt.Errorf("failed to fetch repertoire item: %w", err)
	}

	path := blob.MediaPath(teamID, repertoireID, fileName, now)
	logger.Debug("Uploading media",
		zap.String("repertoire_id", repertoireID),
		zap.String("path", path),
		zap.Int64("size", size))

	url, err := blobs.Upload(ctx, path, contentTypeFor(fileName), r, size, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	asset := &model.MediaAsset{
		RepertoireID: repertoireID,
		FileName:     fileName,
		FileType:     model.FileTypeFromName(fileName),
		StoragePath:  path,
		DownloadURL:  url,
	}
	if err := store.InsertMedia(ctx, asset); err != nil {
		if delErr := blobs.Delete(ctx, path); delErr != nil {
			logger.Warn("Failed to remove orphaned upload", zap.String("path", path), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record media: %w", err)
	}

	logger.Info("Media uploaded",
		zap.String("media_id", asset.ID),
		zap.String("repertoire_id", repertoireID),
		zap.String("file", fileName))
	return asset, nil
}

// MediaDeleteStore defines the store operations needed to remove one media asset
type MediaDeleteStore interface {
	GetMedia(ctx context.Context, id string) (*model.MediaAsset, error)
	DeleteMedia(ctx context.Context, id string) error
}

// DeleteMedia deletes the asset's blob and then its record. If the blob
// cannot be deleted the record stays, so the delete can be retried.
func DeleteMedia(ctx context.Context, store MediaDeleteStore, blobs blob.Store, logger *zap.Logger, mediaID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionMedia, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	asset, err := store.GetMedia(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to fetch media: %w", err)
	}

	if err := deleteBlob(ctx, blobs, logger, asset.StoragePath); err != nil {
		return fmt.Errorf("failed to delete %s: %w", asset.StoragePath, err)
	}
	if err := store.DeleteMedia(ctx, mediaID); err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	logger.Info("Media deleted", zap.String("media_id", mediaID), zap.String("file", asset.FileName))
	return nil
}

func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
