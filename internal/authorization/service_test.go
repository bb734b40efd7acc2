package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/salesdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeByRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		role, object, action string
		allowed              bool
	}{
		{"cashier", ObjectInvoice, ActionCreate, true},
		{"cashier", ObjectInvoice, ActionView, true},
		{"cashier", ObjectProduct, ActionView, true},
		{"auditor", ObjectInvoice, ActionView, true},
		{"auditor", ObjectInvoice, ActionCreate, false},
		{"admin", ObjectInvoice, ActionCreate, true},
		{"admin", ObjectProduct, "delete", true},
		{"stranger", ObjectInvoice, ActionView, false},
	}

	for _, tc := range cases {
		err := svc.Authorize(ctx, "100", tc.role, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.role, tc.object, tc.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", tc.role, tc.object, tc.action)
		}
	}
}

func TestAuthorizeFollowsRoleChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "7", "cashier", ObjectInvoice, ActionCreate))
	assert.ErrorIs(t, svc.Authorize(ctx, "7", "auditor", ObjectInvoice, ActionCreate), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "", "admin", ObjectInvoice, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "1", "admin", "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "1", "admin", ObjectInvoice, ""), ErrInvalidAction)
}
