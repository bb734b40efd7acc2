package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// FindOrCreate returns the id of the product matching both name and price,
	// inserting it on the caller's transaction when no such row exists.
	FindOrCreate(ctx context.Context, tx *gorm.DB, input ProductInput) (snowflake.ID, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description *string
}

type ListRequest struct {
	Name  string
	Limit int
}

type Response struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
