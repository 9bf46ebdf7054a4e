package authctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/folkbase/folkbase/pkg/core/model"
)

func TestWithUser(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), Principal{UID: "u1", MemberID: "m1", Role: model.RoleInstructor})
	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "m1", p.MemberID)
	assert.True(t, p.CanManage())

	p.Role = model.RoleChoreographer
	assert.False(t, p.CanManage())
}
