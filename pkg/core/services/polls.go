package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/authctx"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// UnknownVoter stands in for voters whose member record no longer exists
const UnknownVoter = "Nieznany"

// CreatePoll opens a new poll. Blank options are dropped; at least two must remain.
func CreatePoll(ctx context.Context, store db.PollStore, logger *zap.Logger, question string, options []string) (result *model.Poll, err error) {
	defer func() { metrics.RecordMutation(db.CollectionPolls, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			kept = append(kept, o)
		}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, invalid("question", "is required")
	}
	if len(kept) < 2 {
		return nil, invalid("options", "at least 2 non-empty options are required")
	}

	poll := &model.Poll{
		Question:  question,
		Options:   kept,
		Votes:     map[string]int{},
		IsActive:  true,
		CreatedBy: actorMemberID(ctx),
	}
	if err := store.InsertPoll(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}

	logger.Info("Poll created", zap.String("poll_id", poll.ID), zap.Int("options", len(kept)))
	return poll, nil
}

// CastVote records voterID's choice. A later vote replaces an earlier one.
// Managers run polls and do not vote in them.
func CastVote(ctx context.Context, store db.PollStore, logger *zap.Logger, pollID, voterID string, option int) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionPolls, "vote", err) }()

	if p, ok := authctx.FromContext(ctx); ok && p.CanManage() {
		return ErrForbidden
	}
	if voterID == "" {
		return invalid("voterId", "is required")
	}

	poll, err := store.GetPoll(ctx, pollID)
	if err != nil {
		return fmt.Errorf("failed to fetch poll: %w", err)
	}
	if !poll.IsActive {
		return ErrPollClosed
	}
	if option < 0 || option >= len(poll.Options) {
		return invalid("option", "must be between 0 and %d", len(poll.Options)-1)
	}

	if err := store.SetVote(ctx, pollID, voterID, option); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	logger.Debug("Vote cast", zap.String("poll_id", pollID), zap.String("voter_id", voterID), zap.Int("option", option))
	return nil
}

// TogglePoll opens a closed poll or closes an open one and returns the new state
func TogglePoll(ctx context.Context, store db.PollStore, logger *zap.Logger, pollID string) (active bool, err error) {
	defer func() { metrics.RecordMutation(db.CollectionPolls, "toggle", err) }()

	if err := requireManager(ctx); err != nil {
		return false, err
	}
	poll, err := store.GetPoll(ctx, pollID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch poll: %w", err)
	}
	if err := store.SetPollActive(ctx, pollID, !poll.IsActive); err != nil {
		return false, fmt.Errorf("failed to toggle poll: %w", err)
	}
	logger.Info("Poll toggled", zap.String("poll_id", pollID), zap.Bool("active", !poll.IsActive))
	return !poll.IsActive, nil
}

func DeletePoll(ctx context.Context, store db.PollStore, logger *zap.Logger, pollID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionPolls, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := store.DeletePoll(ctx, pollID); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	logger.Info("Poll deleted", zap.String("poll_id", pollID))
	return nil
}

// PollOptionReport is one option with its voters
type PollOptionReport struct {
	Option string   `json:"option"`
	Votes  int      `json:"votes"`
	Voters []string `json:"voters"`
}

// PollReport is the per-option breakdown of a poll
type PollReport struct {
	Poll       model.Poll         `json:"poll"`
	TotalVotes int                `json:"totalVotes"`
	Options    []PollOptionReport `json:"options"`
}

// PollReportStore defines the store operations behind a poll report
type PollReportStore interface {
	GetPoll(ctx context.Context, id string) (*model.Poll, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
}

// BuildPollReport lists voter names per option, sorted by name
func BuildPollReport(ctx context.Context, store PollReportStore, pollID string) (*PollReport, error) {
	poll, err := store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch poll: %w", err)
	}
	members, err := store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName()
		if m.UID != "" {
			names[m.UID] = m.FullName()
		}
	}

	report := &PollReport{Poll: *poll, Options: make([]PollOptionReport, len(poll.Options))}
	for i, o := range poll.Options {
		report.Options[i] = PollOptionReport{Option: o, Voters: []string{}}
	}
	for voterID, option := range poll.Votes {
		if option < 0 || option >= len(report.Options) {
			continue
		}
		name, ok := names[voterID]
		if !ok {
			name = UnknownVoter
		}
		report.Options[option].Votes++
		report.Options[option].Voters = append(report.Options[option].Voters, name)
		report.TotalVotes++
	}
	for i := range report.Options {
		sort.Strings(report.Options[i].Voters)
	}
	return report, nil
}
