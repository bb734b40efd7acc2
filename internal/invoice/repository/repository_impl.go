package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, total, rest, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.Total,
		invoice.Rest,
		invoice.CreatedAt,
		invoice.CreatedBy,
	).Error
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.InvoiceItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoice_items (id, invoice_id, product_id, position, quantity, total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.InvoiceID,
		item.ProductID,
		item.Position,
		item.Quantity,
		item.Total,
	).Error
}

const selectInvoices = `SELECT
	i.id AS invoice_id,
	i.total AS invoice_total,
	i.rest AS invoice_rest,
	i.created_at AS invoice_created_at,
	u.id AS owner_id,
	u.name AS owner_name,
	u.login AS owner_login,
	p.id AS payment_id,
	p.type AS payment_type,
	p.amount AS payment_amount,
	ii.id AS item_id,
	ii.position AS item_position,
	ii.quantity AS item_quantity,
	ii.total AS item_total,
	pr.name AS product_name,
	pr.price AS product_price,
	pr.description AS product_description
FROM invoices i
JOIN payments p ON p.invoice_id = i.id
JOIN users u ON u.id = i.created_by
LEFT JOIN invoice_items ii ON ii.invoice_id = i.id
LEFT JOIN products pr ON pr.id = ii.product_id`

func (r *repo) Select(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.Row, error) {
	where, args := buildWhere(filter)

	query := selectInvoices
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY i.created_at DESC, i.id DESC, ii.position ASC"

	var rows []domain.Row
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func buildWhere(filter domain.Filter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		where = append(where, clause)
		args = append(args, value)
	}

	if filter.InvoiceID != nil {
		add("i.id = ?", *filter.InvoiceID)
	}
	if filter.OwnerID != nil {
		add("i.created_by = ?", *filter.OwnerID)
	}
	if filter.From != nil {
		add("i.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("i.created_at <= ?", *filter.To)
	}
	if filter.MinTotal != nil {
		add("i.total >= ?", *filter.MinTotal)
	}
	if filter.MaxTotal != nil {
		add("i.total <= ?", *filter.MaxTotal)
	}
	if filter.PaymentType != nil {
		add("p.type = ?", string(*filter.PaymentType))
	}
	return where, args
}
