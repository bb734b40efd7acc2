package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItem(ctx context.Context, db *gorm.DB, item *InvoiceItem) error
	// Select returns joined rows ordered newest invoice first, items by position.
	Select(ctx context.Context, db *gorm.DB, filter Filter) ([]Row, error)
}
