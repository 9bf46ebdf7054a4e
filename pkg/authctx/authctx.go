// Package authctx carries the signed-in user through a request context
package authctx

import (
	"context"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// Principal is the signed-in user. MemberID is empty until a profile is linked.
type Principal struct {
	UID       string
	MemberID  string
	Role      model.Role
	Anonymous bool
}

// CanManage gates management controls; it is not an access-control decision
func (p Principal) CanManage() bool {
	return p.Role.CanManage()
}

type contextKey struct{}

func WithUser(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
