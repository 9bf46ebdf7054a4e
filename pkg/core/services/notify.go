package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// GmailClient defines the email relay operations needed
type GmailClient interface {
	SendEmail(to, subject, body string) error
}

// NotificationStore defines the store operations needed to address a notification
type NotificationStore interface {
	ListMembersByStatus(ctx context.Context, status model.MemberStatus) ([]model.Member, error)
}

// Notification is a message sent to every active member
type Notification struct {
	Type    string `json:"type"`
	Title   string `json:"title" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// EmailSent represents a member who was successfully emailed
type EmailSent struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Email      string `json:"email"`
}

// FailedEmail represents a member whose email could not be sent
type FailedEmail struct {
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Email      string `json:"email"`
	Error      string `json:"error"`
}

// NotifyResult lists who was and was not reached
type NotifyResult struct {
	Sent   []EmailSent   `json:"sent"`
	Failed []FailedEmail `json:"failed"`
}

// NotifyActiveMembers emails a notification to each active member with an email address.
// No recipients is not an error; all sends failing is.
func NotifyActiveMembers(
	ctx context.Context,
	store NotificationStore,
	gmailClient GmailClient,
	logger *zap.Logger,
	teamName string,
	n Notification,
) (*NotifyResult, error) {
	logger.Debug("Starting notifyActiveMembers", zap.String("type", n.Type), zap.String("title", n.Title))

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if err := validateRecord(n); err != nil {
		return nil, err
	}

	members, err := store.ListMembersByStatus(ctx, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active members: %w", err)
	}

	recipients := make([]model.Member, 0, len(members))
	for _, m := range members {
		if strings.Contains(m.Email, "@") {
			recipients = append(recipients, m)
		}
	}

	result := &NotifyResult{Sent: []EmailSent{}, Failed: []FailedEmail{}}
	if len(recipients) == 0 {
		logger.Warn("No active members with an email address")
		return result, nil
	}

	subject := n.Title
	if n.Type != "" {
		subject = fmt.Sprintf("[%s] %s", n.Type, n.Title)
	}

	for _, m := range recipients {
		body := fmt.Sprintf("Cześć %s,\n\n%s\n\nPozdrawiamy\n%s\n", m.FirstName, n.Message, teamName)

		logger.Info("Sending notification email",
			zap.String("member_id", m.ID),
			zap.String("email", m.Email))

		err := gmailClient.SendEmail(m.Email, subject, body)
		metrics.EmailsSent.WithLabelValues(metrics.Outcome(err)).Inc()
		if err != nil {
			logger.Warn("Failed to send notification email",
				zap.String("member_id", m.ID),
				zap.String("email", m.Email),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedEmail{
				MemberID:   m.ID,
				MemberName: m.FullName(),
				Email:      m.Email,
				Error:      err.Error(),
			})
			continue
		}

		result.Sent = append(result.Sent, EmailSent{MemberID: m.ID, MemberName: m.FullName(), Email: m.Email})
	}

	if len(result.Failed) == len(recipients) {
		return nil, fmt.Errorf("all %d notification email send attempts failed", len(result.Failed))
	}

	logger.Debug("Notify active members completed",
		zap.Int("sent", len(result.Sent)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
