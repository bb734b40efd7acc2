package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/auth/password"
	"github.com/smallbiznis/salesdesk/internal/auth/token"
	"github.com/smallbiznis/salesdesk/internal/clock"
	obslogger "github.com/smallbiznis/salesdesk/internal/observability/logger"
	"github.com/smallbiznis/salesdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	tokenType         = "Bearer"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Tokens *token.Manager
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	tokens *token.Manager
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		tokens: p.Tokens,
		repo:   p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	user, err := s.newUser(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByLogin(ctx, s.db, user.Login)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		obslogger.WithContext(ctx, s.log).Error("create user failed", zap.Error(err))
		return nil, err
	}

	obslogger.WithContext(ctx, s.log).Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)
	return user, nil
}

func (s *Service) EnsureUser(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	user, err := s.Register(ctx, req)
	if errors.Is(err, domain.ErrUserExists) {
		return s.repo.FindByLogin(ctx, s.db, normalizeLogin(req.Login))
	}
	return user, err
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	login := normalizeLogin(req.Login)
	if login == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByLogin(ctx, s.db, login)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.ID.String(), user.Role)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("issue token failed", zap.Error(err))
		return nil, err
	}

	return &domain.LoginResult{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
		User:        user.View(),
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

func (s *Service) newUser(req domain.RegisterRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	login := normalizeLogin(req.Login)
	if login == "" || strings.ContainsAny(login, " \t\n") {
		return nil, domain.ErrInvalidLogin
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleCashier
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if req.Metadata != nil {
		user.Metadata = datatypes.JSONMap(req.Metadata)
	}
	return user, nil
}

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
