package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/core/model"
)

func (d *DB) ListAlbums(ctx context.Context) ([]model.Album, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, title, created_by, created_at
		FROM albums
		WHERE team_id = $1
		ORDER BY created_at DESC, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	albums, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Album, error) {
		var a model.Album
		err := row.Scan(&a.ID, &a.Title, &a.CreatedBy, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return albums, nil
}

func (d *DB) GetAlbum(ctx context.Context, id string) (*model.Album, error) {
	var a model.Album
	err := d.q.QueryRow(ctx, `
		SELECT id, title, created_by, created_at FROM albums WHERE team_id = $1 AND id = $2
	`, d.team, id).Scan(&a.ID, &a.Title, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "album "+id)
	}
	return &a, nil
}

func (d *DB) InsertAlbum(ctx context.Context, a *model.Album) error {
	a.ID = newID(a.ID)
	a.CreatedAt = stamp(a.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO albums (id, team_id, title, created_by, created_at) VALUES ($1, $2, $3, $4, $5)
	`, a.ID, d.team, a.Title, a.CreatedBy, a.CreatedAt)
	if err != nil {
		return mapError(err, "album "+a.ID)
	}
	return nil
}

func (d *DB) DeleteAlbum(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM albums WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "album "+id)
	}
	return expectRow(tag, "album "+id)
}

const photoColumns = `id, album_id, url, storage_path, created_at`

func collectPhotos(rows pgx.Rows) ([]model.Photo, error) {
	photos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Photo, error) {
		var p model.Photo
		err := row.Scan(&p.ID, &p.AlbumID, &p.URL, &p.StoragePath, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}
	return photos, nil
}

func (d *DB) ListPhotos(ctx context.Context, albumID string) ([]model.Photo, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+photoColumns+`
		FROM photos
		WHERE team_id = $1 AND album_id = $2
		ORDER BY created_at, id
	`, d.team, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	return collectPhotos(rows)
}

func (d *DB) GetPhoto(ctx context.Context, id string) (*model.Photo, error) {
	var p model.Photo
	err := d.q.QueryRow(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE team_id = $1 AND id = $2
	`, d.team, id).Scan(&p.ID, &p.AlbumID, &p.URL, &p.StoragePath, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err, "photo "+id)
	}
	return &p, nil
}

func (d *DB) InsertPhoto(ctx context.Context, p *model.Photo) error {
	p.ID = newID(p.ID)
	p.CreatedAt = stamp(p.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO photos (id, team_id, album_id, url, storage_path, created_at) VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, d.team, p.AlbumID, p.URL, p.StoragePath, p.CreatedAt)
	if err != nil {
		return mapError(err, "photo "+p.ID)
	}
	return nil
}

func (d *DB) DeletePhoto(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM photos WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "photo "+id)
	}
	return expectRow(tag, "photo "+id)
}

func (d *DB) DeletePhotosForAlbum(ctx context.Context, albumID string) ([]model.Photo, error) {
	rows, err := d.q.Query(ctx, `
		DELETE FROM photos
		WHERE team_id = $1 AND album_id = $2
		RETURNING `+photoColumns, d.team, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete photos for album %s: %w", albumID, err)
	}
	return collectPhotos(rows)
}
