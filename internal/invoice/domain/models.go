package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	paymentdomain "github.com/smallbiznis/salesdesk/internal/payment/domain"
	productdomain "github.com/smallbiznis/salesdesk/internal/product/domain"
)

// Invoice is a sale. Items and payment are written with it and never updated.
//
// The association fields only declare foreign keys for AutoMigrate.
// Queries join explicitly and never preload them.
type Invoice struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Rest      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `gorm:"not null;index"`
	CreatedBy snowflake.ID    `gorm:"not null;index"`

	Owner   authdomain.User        `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT" json:"-"`
	Payment *paymentdomain.Payment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
	Items   []InvoiceItem          `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	InvoiceID snowflake.ID    `gorm:"not null;index"`
	ProductID snowflake.ID    `gorm:"not null;index"`
	Position  int             `gorm:"not null"`
	Quantity  int64           `gorm:"not null;default:1"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product productdomain.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// Row is one line of the joined invoice read. Item and product columns are
// NULL for invoices without items.
type Row struct {
	InvoiceID        snowflake.ID
	InvoiceTotal     decimal.Decimal
	InvoiceRest      decimal.Decimal
	InvoiceCreatedAt time.Time

	OwnerID    snowflake.ID
	OwnerName  string
	OwnerLogin string

	PaymentID     snowflake.ID
	PaymentType   string
	PaymentAmount decimal.Decimal

	ItemID       *snowflake.ID
	ItemPosition *int
	ItemQuantity *int64
	ItemTotal    decimal.NullDecimal

	ProductName        *string
	ProductPrice       decimal.NullDecimal
	ProductDescription *string
}

// Filter narrows the joined read. Nil fields impose no constraint.
type Filter struct {
	InvoiceID   *snowflake.ID
	OwnerID     *snowflake.ID
	From        *time.Time
	To          *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
	PaymentType *paymentdomain.Type
}
