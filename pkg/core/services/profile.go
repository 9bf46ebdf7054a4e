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

// TeamInfo identifies the deployment's single team
type TeamInfo struct {
	ID   string
	Name string
}

// EnsureProfileResult is the member behind a sign-in
type EnsureProfileResult struct {
	Member  model.Member
	Created bool
}

// EnsureProfile returns the member linked to uid, creating one on first sign-in.
// The first member of an empty team becomes an active admin and the team
// document is created for them; later members start as pending.
func EnsureProfile(ctx context.Context, store db.Transactor, team TeamInfo, logger *zap.Logger, uid, email string) (result *EnsureProfileResult, err error) {
	if uid == "" {
		return nil, invalid("uid", "is required")
	}

	result = &EnsureProfileResult{}
	err = store.InTx(ctx, func(tx db.Database) error {
		existing, err := tx.GetMemberByUID(ctx, uid)
		if err == nil {
			result.Member = *existing
			result.Created = false
			return nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to look up profile: %w", err)
		}

		if err := tx.LockRoster(ctx); err != nil {
			return err
		}
		// Another first sign-in for this uid may have committed while we waited
		if existing, err := tx.GetMemberByUID(ctx, uid); err == nil {
			result.Member = *existing
			return nil
		}

		count, err := tx.CountMembers(ctx)
		if err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}

		member := model.Member{
			UID:       uid,
			FirstName: nameFromEmail(email),
			Email:     email,
			Role:      model.RoleMember,
			Status:    model.StatusPending,
		}
		if count == 0 {
			member.FirstName = "Administrator"
			member.Role = model.RoleAdmin
			member.Status = model.StatusActive
		}
		if err := tx.InsertMember(ctx, &member); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		if count == 0 {
			if err := ensureTeam(ctx, tx, team, member.ID); err != nil {
				return err
			}
		}

		result.Member = member
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		metrics.RecordMutation(db.CollectionMembers, "insert", nil)
		logger.Info("Profile created",
			zap.String("uid", uid),
			zap.String("member_id", result.Member.ID),
			zap.String("role", string(result.Member.Role)))
	}
	return result, nil
}

func ensureTeam(ctx context.Context, tx db.TeamStore, team TeamInfo, adminID string) error {
	_, err := tx.GetTeam(ctx, team.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to fetch team: %w", err)
	}
	if err := tx.InsertTeam(ctx, &model.Team{ID: team.ID, Name: team.Name, AdminID: adminID}); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Nowy członek"
	}
	return local
}

// AvatarStore defines the store operations needed to change a profile photo
type AvatarStore interface {
	GetMember(ctx context.Context, id string) (*model.Member, error)
	UpdateMember(ctx context.Context, member *model.Member) error
}

// UploadAvatar stores a profile photo and points the member's PhotoURL at it.
// A failed profile update removes the uploaded file again.
func UploadAvatar(
	ctx context.Context,
	store AvatarStore,
	blobs blob.Store,
	teamID string,
	logger *zap.Logger,
	memberID, contentType string,
	r io.Reader,
	size int64,
	now time.Time,
) (result *model.Member, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMembers, "avatar", err) }()

	if actor := actorMemberID(ctx); actor != memberID {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
	}

	member, err := store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	path := blob.AvatarPath(teamID, memberID, now)
	url, err := blobs.Upload(ctx, path, contentType, r, size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	member.PhotoURL = url
	if err := store.UpdateMember(ctx, member); err != nil {
		if delErr := blobs.Delete(ctx, path); delErr != nil {
			logger.Warn("Failed to remove orphaned avatar", zap.String("path", path), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	logger.Info("Avatar uploaded", zap.String("member_id", memberID), zap.String("path", path))
	return member, nil
}
