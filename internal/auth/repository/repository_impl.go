package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) users(db *gorm.DB) repository.Repository[domain.User] {
	return repository.ProvideStore[domain.User](db)
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	return r.users(db).Count(ctx, &domain.User{})
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return r.users(db).Create(ctx, user)
}

func (r *repo) FindByLogin(ctx context.Context, db *gorm.DB, login string) (*domain.User, error) {
	return r.users(db).FindOne(ctx, &domain.User{Login: login})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	if id == 0 {
		return nil, nil
	}
	return r.users(db).FindOne(ctx, &domain.User{ID: id})
}
