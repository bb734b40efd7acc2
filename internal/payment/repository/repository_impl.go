package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdesk/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, invoice_id, type, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		payment.ID,
		payment.InvoiceID,
		payment.Type,
		payment.Amount,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByInvoiceID(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, type, amount, created_at
		 FROM payments WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}
