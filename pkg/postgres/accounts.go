package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/db"
)

// Accounts belong to the identity provider and are not team scoped

func (d *DB) GetAccount(ctx context.Context, uid string) (*db.Account, error) {
	var a db.Account
	err := d.q.QueryRow(ctx, `
		SELECT uid, email, password_hash, anonymous, created_at FROM accounts WHERE uid = $1
	`, uid).Scan(&a.UID, &a.Email, &a.PasswordHash, &a.Anonymous, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "account "+uid)
	}
	return &a, nil
}

func (d *DB) GetAccountByEmail(ctx context.Context, email string) (*db.Account, error) {
	var a db.Account
	err := d.q.QueryRow(ctx, `
		SELECT uid, email, password_hash, anonymous, created_at
		FROM accounts
		WHERE email <> '' AND lower(email) = lower($1)
	`, email).Scan(&a.UID, &a.Email, &a.PasswordHash, &a.Anonymous, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "account "+email)
	}
	return &a, nil
}

func (d *DB) InsertAccount(ctx context.Context, a *db.Account) error {
	a.CreatedAt = stamp(a.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO accounts (uid, email, password_hash, anonymous, created_at) VALUES ($1, $2, $3, $4, $5)
	`, a.UID, a.Email, a.PasswordHash, a.Anonymous, a.CreatedAt)
	if err != nil {
		return mapError(err, "account "+a.UID)
	}
	return nil
}

func (d *DB) UpdateAccountPassword(ctx context.Context, uid, passwordHash string) error {
	tag, err := d.q.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE uid = $1`, uid, passwordHash)
	if err != nil {
		return mapError(err, "account "+uid)
	}
	return expectRow(tag, "account "+uid)
}

// RevokeToken records a signed-out token id; expired entries are pruned on the way
func (d *DB) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := d.q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	_, err := d.q.Exec(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *DB) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := d.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return revoked, nil
}

func (d *DB) InsertPasswordReset(ctx context.Context, r *db.PasswordReset) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO password_resets (token_hash, uid, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET uid = EXCLUDED.uid, expires_at = EXCLUDED.expires_at
	`, r.TokenHash, r.UID, r.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert password reset: %w", err)
	}
	return nil
}

func (d *DB) ConsumePasswordReset(ctx context.Context, tokenHash string) (*db.PasswordReset, error) {
	var r db.PasswordReset
	err := d.q.QueryRow(ctx, `
		DELETE FROM password_resets WHERE token_hash = $1
		RETURNING token_hash, uid, expires_at
	`, tokenHash).Scan(&r.TokenHash, &r.UID, &r.ExpiresAt)
	if err != nil {
		return nil, mapError(err, "password reset")
	}
	return &r, nil
}

func (d *DB) ListBlobTombstones(ctx context.Context) ([]db.BlobTombstone, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, path, attempts, last_error, created_at
		FROM blob_tombstones
		WHERE team_id = $1
		ORDER BY created_at, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query blob tombstones: %w", err)
	}
	tombstones, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.BlobTombstone, error) {
		var t db.BlobTombstone
		err := row.Scan(&t.ID, &t.Path, &t.Attempts, &t.LastError, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan blob tombstone: %w", err)
	}
	return tombstones, nil
}

// InsertBlobTombstone records a blob that still has to be deleted. Re-inserting
// an existing id bumps its attempt count.
func (d *DB) InsertBlobTombstone(ctx context.Context, t *db.BlobTombstone) error {
	t.ID = newID(t.ID)
	t.CreatedAt = stamp(t.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO blob_tombstones (id, team_id, path, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET attempts = EXCLUDED.attempts, last_error = EXCLUDED.last_error
	`, t.ID, d.team, t.Path, t.Attempts, t.LastError, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert blob tombstone: %w", err)
	}
	return nil
}

func (d *DB) DeleteBlobTombstone(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM blob_tombstones WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "tombstone "+id)
	}
	return expectRow(tag, "tombstone "+id)
}
