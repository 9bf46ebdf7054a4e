package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/live"
)

// ChangeChannel is the NOTIFY channel written by the folkbase_notify_change trigger
const ChangeChannel = "folkbase_changes"

const reconnectDelay = 2 * time.Second

type notification struct {
	Table    string `json:"table"`
	Op       string `json:"op"`
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
}

// parseNotification turns a trigger payload into a bus change
func parseNotification(payload string) (live.Change, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return live.Change{}, fmt.Errorf("failed to decode change payload: %w", err)
	}

	var kind live.Kind
	switch n.Op {
	case "INSERT":
		kind = live.KindAdded
	case "UPDATE":
		kind = live.KindModified
	case "DELETE":
		kind = live.KindRemoved
	default:
		return live.Change{}, fmt.Errorf("unknown change operation %q", n.Op)
	}

	return live.Change{Collection: n.Table, Kind: kind, ID: n.ID, MemberID: n.MemberID}, nil
}

// Listen republishes database change notifications on bus until ctx is done.
// A dropped connection is re-established after a short delay.
func Listen(ctx context.Context, connString string, bus *live.Bus, logger *zap.Logger) error {
	for {
		err := listenOnce(ctx, connString, bus, logger)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("Change listener disconnected, reconnecting", zap.Error(err), zap.Duration("delay", reconnectDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func listenOnce(ctx context.Context, connString string, bus *live.Bus, logger *zap.Logger) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect change listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}
	logger.Info("Listening for database changes", zap.String("channel", ChangeChannel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		change, err := parseNotification(n.Payload)
		if err != nil {
			logger.Warn("Ignoring malformed change notification", zap.Error(err), zap.String("payload", n.Payload))
			continue
		}
		logger.Debug("Database change",
			zap.String("collection", change.Collection),
			zap.String("kind", string(change.Kind)),
			zap.String("id", change.ID))
		bus.Publish(change)
	}
}
