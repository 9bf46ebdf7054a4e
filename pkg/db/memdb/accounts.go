package memdb

import (
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/folkbase/folkbase/pkg/db"
)

func (d *DB) GetAccount(ctx context.Context, uid string) (*db.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.state.accounts[uid]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", uid, db.ErrNotFound)
	}
	return &account, nil
}

func (d *DB) GetAccountByEmail(ctx context.Context, email string) (*db.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if email != "" {
		for _, a := range d.state.accounts {
			if strings.EqualFold(a.Email, email) {
				return &a, nil
			}
		}
	}
	return nil, fmt.Errorf("account %s: %w", email, db.ErrNotFound)
}

func (d *DB) InsertAccount(ctx context.Context, account *db.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.state.accounts[account.UID]; exists {
		return fmt.Errorf("account %s: %w", account.UID, db.ErrConflict)
	}
	if account.Email != "" {
		for _, a := range d.state.accounts {
			if strings.EqualFold(a.Email, account.Email) {
				return fmt.Errorf("account %s: %w", account.Email, db.ErrConflict)
			}
		}
	}
	account.CreatedAt = d.stamp(account.CreatedAt)
	d.state.accounts[account.UID] = *account
	return nil
}

func (d *DB) UpdateAccountPassword(ctx context.Context, uid, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.state.accounts[uid]
	if !ok {
		return fmt.Errorf("account %s: %w", uid, db.ErrNotFound)
	}
	account.PasswordHash = passwordHash
	d.state.accounts[uid] = account
	return nil
}

func (d *DB) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.revoked[jti] = expiresAt
	return nil
}

func (d *DB) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, revoked := d.state.revoked[jti]
	return revoked, nil
}

func (d *DB) InsertPasswordReset(ctx context.Context, reset *db.PasswordReset) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.resets[reset.TokenHash] = *reset
	return nil
}

func (d *DB) ConsumePasswordReset(ctx context.Context, tokenHash string) (*db.PasswordReset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reset, ok := d.state.resets[tokenHash]
	if !ok {
		return nil, fmt.Errorf("password reset: %w", db.ErrNotFound)
	}
	delete(d.state.resets, tokenHash)
	return &reset, nil
}

func (d *DB) ListBlobTombstones(ctx context.Context) ([]db.BlobTombstone, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.tombstones, func(a, b db.BlobTombstone) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (d *DB) InsertBlobTombstone(ctx context.Context, tombstone *db.BlobTombstone) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	tombstone.ID = newID(tombstone.ID)
	tombstone.CreatedAt = d.stamp(tombstone.CreatedAt)
	d.state.tombstones[tombstone.ID] = *tombstone
	return nil
}

func (d *DB) DeleteBlobTombstone(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.tombstones[id]; !ok {
		return fmt.Errorf("tombstone %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.tombstones, id)
	return nil
}
