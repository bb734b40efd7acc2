package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Rows are never updated and are reused by
// every invoice line with the same name and price.
type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	Code        string          `gorm:"type:varchar(255);not null;index"`
	Name        string          `gorm:"type:varchar(255);not null;uniqueIndex:ux_products_name_price,priority:1"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;uniqueIndex:ux_products_name_price,priority:2"`
	Description *string         `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`
}

func (Product) TableName() string { return "products" }
