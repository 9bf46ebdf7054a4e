package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// AddMember adds a member by hand. Such members have no login until LinkMember is called.
func AddMember(ctx context.Context, store db.MemberStore, logger *zap.Logger, member model.Member) (result *model.Member, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMembers, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	member.ID = ""
	member.UID = ""
	member.FirstName = strings.TrimSpace(member.FirstName)
	member.LastName = strings.TrimSpace(member.LastName)
	member.Email = strings.TrimSpace(member.Email)
	if member.Role == "" {
		member.Role = model.RoleMember
	}
	if member.Status == "" {
		member.Status = model.StatusActive
	}
	if err := validateRecord(member); err != nil {
		return nil, err
	}

	if err := store.InsertMember(ctx, &member); err != nil {
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	logger.Info("Member added",
		zap.String("member_id", member.ID),
		zap.String("name", member.FullName()))
	return &member, nil
}

// UpdateMember replaces a member's editable fields. The login link and
// creation time are kept from the stored record.
func UpdateMember(ctx context.Context, store db.MemberStore, logger *zap.Logger, member model.Member) (result *model.Member, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMembers, "update", err) }()

	existing, err := store.GetMember(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	if actor := actorMemberID(ctx); actor != existing.ID {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
	}

	member.UID = existing.UID
	member.CreatedAt = existing.CreatedAt
	if err := validateRecord(member); err != nil {
		return nil, err
	}

	if err := store.UpdateMember(ctx, &member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	logger.Debug("Member updated", zap.String("member_id", member.ID))
	return &member, nil
}

// LinkMember attaches a sign-in identity to a member added by hand
func LinkMember(ctx context.Context, store db.MemberStore, logger *zap.Logger, memberID, uid string) (result *model.Member, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMembers, "link", err) }()

	if uid == "" {
		return nil, invalid("uid", "is required")
	}

	member, err := store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	linked, err := store.GetMemberByUID(ctx, uid)
	switch {
	case err == nil && linked.ID != memberID:
		return nil, fmt.Errorf("uid %s is already linked to member %s: %w", uid, linked.ID, db.ErrConflict)
	case err != nil && !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to look up uid: %w", err)
	}

	member.UID = uid
	if err := store.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to link member: %w", err)
	}

	logger.Info("Member linked", zap.String("member_id", memberID), zap.String("uid", uid))
	return member, nil
}

// DeleteMemberResult reports what a member delete cleaned up
type DeleteMemberResult struct {
	ReturnedAssignments []model.CostumeAssignment
}

// DeleteMember removes a member. Costumes the member still holds go back to stock in the same transaction.
func DeleteMember(ctx context.Context, store db.Transactor, logger *zap.Logger, memberID string) (result *DeleteMemberResult, err error) {
	defer func() { metrics.RecordMutation(db.CollectionMembers, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	result = &DeleteMemberResult{}
	err = store.InTx(ctx, func(tx db.Database) error {
		result.ReturnedAssignments = nil

		if _, err := tx.GetMember(ctx, memberID); err != nil {
			return fmt.Errorf("failed to fetch member: %w", err)
		}

		assignments, err := tx.ListAssignmentsForMember(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to fetch assignments: %w", err)
		}
		for _, a := range assignments {
			if err := tx.DeleteAssignment(ctx, a.ID); err != nil {
				return fmt.Errorf("failed to delete assignment %s: %w", a.ID, err)
			}
			// The costume may have been deleted since; its stock no longer matters
			if err := tx.AdjustCostumeQuantity(ctx, a.CostumeID, 1); err != nil && !errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("failed to return costume %s: %w", a.CostumeID, err)
			}
			result.ReturnedAssignments = append(result.ReturnedAssignments, a)
		}

		if err := tx.DeleteMember(ctx, memberID); err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Member deleted",
		zap.String("member_id", memberID),
		zap.Int("costumes_returned", len(result.ReturnedAssignments)))
	return result, nil
}
