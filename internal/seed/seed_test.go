package seed

import (
	"context"
	"errors"
	"testing"

	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*authdomain.User)
	return user, args.Error(1)
}

func (m *mockAuth) EnsureUser(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*authdomain.User)
	return user, args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*authdomain.LoginResult)
	return res, args.Error(1)
}

func (m *mockAuth) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, error) {
	args := m.Called(ctx, rawToken)
	user, _ := args.Get(0).(*authdomain.User)
	return user, args.Error(1)
}

func TestEnsureAdminSkipsWithoutBootstrap(t *testing.T) {
	svc := &mockAuth{}
	require.NoError(t, EnsureAdmin(context.Background(), svc, config.BootstrapConfig{}, zap.NewNop()))
	svc.AssertNotCalled(t, "EnsureUser", mock.Anything, mock.Anything)
}

func TestEnsureAdminCreatesAdmin(t *testing.T) {
	svc := &mockAuth{}
	svc.On("EnsureUser", mock.Anything, authdomain.RegisterRequest{
		Name:     defaultAdminName,
		Login:    "root",
		Password: "s3cret-pass",
		Role:     authdomain.RoleAdmin,
	}).Return(&authdomain.User{ID: 1, Login: "root", Role: authdomain.RoleAdmin}, nil).Once()

	err := EnsureAdmin(context.Background(), svc, config.BootstrapConfig{
		AdminLogin:    "root",
		AdminPassword: "s3cret-pass",
	}, zap.NewNop())
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestEnsureAdminPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := &mockAuth{}
	svc.On("EnsureUser", mock.Anything, mock.Anything).Return(nil, boom)

	err := EnsureAdmin(context.Background(), svc, config.BootstrapConfig{
		AdminName:     "Ops",
		AdminLogin:    "ops",
		AdminPassword: "whatever-123",
	}, nil)
	assert.ErrorIs(t, err, boom)
}
