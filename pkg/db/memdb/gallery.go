package memdb

import (
	"cmp"
	"context"
	"fmt"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func (d *DB) ListAlbums(ctx context.Context) ([]model.Album, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.albums, func(a, b model.Album) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (d *DB) GetAlbum(ctx context.Context, id string) (*model.Album, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	album, ok := d.state.albums[id]
	if !ok {
		return nil, fmt.Errorf("album %s: %w", id, db.ErrNotFound)
	}
	return &album, nil
}

func (d *DB) InsertAlbum(ctx context.Context, album *model.Album) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	album.ID = newID(album.ID)
	if _, exists := d.state.albums[album.ID]; exists {
		return fmt.Errorf("album %s: %w", album.ID, db.ErrConflict)
	}
	album.CreatedAt = d.stamp(album.CreatedAt)
	d.state.albums[album.ID] = *album
	d.emit(db.CollectionAlbums, live.KindAdded, album.ID, "")
	return nil
}

func (d *DB) DeleteAlbum(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.albums[id]; !ok {
		return fmt.Errorf("album %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.albums, id)
	d.emit(db.CollectionAlbums, live.KindRemoved, id, "")
	return nil
}

func comparePhotos(a, b model.Photo) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
}

func (d *DB) ListPhotos(ctx context.Context, albumID string) ([]model.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var photos []model.Photo
	for _, p := range sortedValues(d.state.photos, comparePhotos) {
		if p.AlbumID == albumID {
			photos = append(photos, p)
		}
	}
	return photos, nil
}

func (d *DB) GetPhoto(ctx context.Context, id string) (*model.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	photo, ok := d.state.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %s: %w", id, db.ErrNotFound)
	}
	return &photo, nil
}

func (d *DB) InsertPhoto(ctx context.Context, photo *model.Photo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	photo.ID = newID(photo.ID)
	if _, exists := d.state.photos[photo.ID]; exists {
		return fmt.Errorf("photo %s: %w", photo.ID, db.ErrConflict)
	}
	photo.CreatedAt = d.stamp(photo.CreatedAt)
	d.state.photos[photo.ID] = *photo
	d.emit(db.CollectionPhotos, live.KindAdded, photo.ID, "")
	return nil
}

func (d *DB) DeletePhoto(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.photos[id]; !ok {
		return fmt.Errorf("photo %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.photos, id)
	d.emit(db.CollectionPhotos, live.KindRemoved, id, "")
	return nil
}

func (d *DB) DeletePhotosForAlbum(ctx context.Context, albumID string) ([]model.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed []model.Photo
	for _, p := range sortedValues(d.state.photos, comparePhotos) {
		if p.AlbumID == albumID {
			delete(d.state.photos, p.ID)
			d.emit(db.CollectionPhotos, live.KindRemoved, p.ID, "")
			removed = append(removed, p)
		}
	}
	return removed, nil
}
