// Package domain contains the payment tendered against an invoice.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCash     Type = "cash"
	TypeCashless Type = "cashless"
)

// ParseType accepts the enum case-insensitively.
func ParseType(raw string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeCash, TypeCashless:
		return t, true
	default:
		return "", false
	}
}

// Payment belongs to exactly one invoice.
type Payment struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	InvoiceID snowflake.ID    `gorm:"not null;uniqueIndex"`
	Type      Type            `gorm:"type:varchar(16);not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }
