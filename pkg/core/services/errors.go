package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/folkbase/folkbase/pkg/authctx"
	"github.com/folkbase/folkbase/pkg/core/model"
)

var (
	// ErrForbidden is returned when the signed-in member's role does not allow the operation
	ErrForbidden = errors.New("forbidden")
	// ErrPollClosed is returned when voting on an inactive poll
	ErrPollClosed = errors.New("poll is closed")
	// ErrNotConcert is returned when saving a program for a non-concert event
	ErrNotConcert = errors.New("only concerts have a program")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// validateRecord runs the model's struct tags and reports the first failing field
func validateRecord(v any) error {
	err := model.Validate(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("failed on %q", fe.Tag())}
	}
	return &ValidationError{Message: err.Error()}
}

// requireManager rejects callers whose role has no management controls.
// Callers without a principal (the CLI) act as the operator.
func requireManager(ctx context.Context) error {
	p, ok := authctx.FromContext(ctx)
	if !ok || p.CanManage() {
		return nil
	}
	return ErrForbidden
}

// actorMemberID is the member id of the signed-in caller, if any
func actorMemberID(ctx context.Context) string {
	if p, ok := authctx.FromContext(ctx); ok {
		return p.MemberID
	}
	return ""
}
