package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service interface {
	// Create inserts the payment on tx, the caller's transaction.
	Create(ctx context.Context, tx *gorm.DB, req CreateRequest) (*Payment, error)
}

type CreateRequest struct {
	InvoiceID snowflake.ID
	Type      string
	Amount    decimal.Decimal
}

var (
	ErrInvalidInvoice = errors.New("invalid_invoice")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidAmount  = errors.New("invalid_amount")
)
