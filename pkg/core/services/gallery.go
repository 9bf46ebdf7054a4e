package services

import (
	"context"
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

func CreateAlbum(ctx context.Context, store db.GalleryStore, logger *zap.Logger, title string) (result *model.Album, err error) {
	defer func() { metrics.RecordMutation(db.CollectionAlbums, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	album := &model.Album{Title: strings.TrimSpace(title), CreatedBy: actorMemberID(ctx)}
	if err := validateRecord(album); err != nil {
		return nil, err
	}
	if err := store.InsertAlbum(ctx, album); err != nil {
		return nil, fmt.Errorf("failed to insert album: %w", err)
	}
	logger.Info("Album created", zap.String("album_id", album.ID), zap.String("title", album.Title))
	return album, nil
}

// DeleteAlbumResult reports what an album delete removed
type DeleteAlbumResult struct {
	DeletedPhotos []model.Photo
	Tombstoned    []string
}

// DeleteAlbum removes an album and its photos the same way repertoire items
// cascade: documents in one transaction, blobs after commit.
func DeleteAlbum(ctx context.Context, store CascadeStore, blobs blob.Store, logger *zap.Logger, albumID string) (result *DeleteAlbumResult, err error) {
	defer func() { metrics.RecordMutation(db.CollectionAlbums, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	result = &DeleteAlbumResult{}
	err = store.InTx(ctx, func(tx db.Database) error {
		if err := tx.DeleteAlbum(ctx, albumID); err != nil {
			return fmt.Errorf("failed to delete album: %w", err)
		}
		photos, err := tx.DeletePhotosForAlbum(ctx, albumID)
		if err != nil {
			return fmt.Errorf("failed to delete photos: %w", err)
		}
		result.DeletedPhotos = photos
		return nil
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(result.DeletedPhotos))
	for _, p := range result.DeletedPhotos {
		paths = append(paths, p.StoragePath)
	}
	result.Tombstoned = cleanupBlobs(ctx, store, blobs, logger, paths)

	logger.Info("Album deleted",
		zap.String("album_id", albumID),
		zap.Int("photos", len(result.DeletedPhotos)),
		zap.Int("tombstoned", len(result.Tombstoned)))
	return result, nil
}

// AddPhoto uploads an image into an album
func AddPhoto(
	ctx context.Context,
	store db.GalleryStore,
	blobs blob.Store,
	teamID string,
	logger *zap.Logger,
	albumID, fileName, contentType string,
	r io.Reader,
	size int64,
	now time.Time,
) (result *model.Photo, err error) {
	defer func() { metrics.RecordMutation(db.CollectionPhotos, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	if _, err := store.GetAlbum(ctx, albumID); err != nil {
		return nil, fmt.Errorf("failed to fetch album: %w", err)
	}

	path := blob.PhotoPath(teamID, albumID, fileName, now)
	url, err := blobs.Upload(ctx, path, contentType, r, size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	photo := &model.Photo{AlbumID: albumID, URL: url, StoragePath: path}
	if err := store.InsertPhoto(ctx, photo); err != nil {
		if delErr := blobs.Delete(ctx, path); delErr != nil {
			logger.Warn("Failed to remove orphaned photo", zap.String("path", path), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}

	logger.Debug("Photo added", zap.String("photo_id", photo.ID), zap.String("album_id", albumID))
	return photo, nil
}

// DeletePhoto deletes a photo's blob and then its record
func DeletePhoto(ctx context.Context, store db.GalleryStore, blobs blob.Store, logger *zap.Logger, photoID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionPhotos, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	photo, err := store.GetPhoto(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to fetch photo: %w", err)
	}
	if err := deleteBlob(ctx, blobs, logger, photo.StoragePath); err != nil {
		return fmt.Errorf("failed to delete %s: %w", photo.StoragePath, err)
	}
	if err := store.DeletePhoto(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	logger.Debug("Photo deleted", zap.String("photo_id", photoID))
	return nil
}
