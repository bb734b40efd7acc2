package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByInvoiceID(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*Payment, error)
}
