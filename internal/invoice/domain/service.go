// Package domain defines sales invoices, their line items and the read model
// returned to clients.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Generate validates the sale and writes invoice, payment and items in one transaction.
	Generate(ctx context.Context, owner Owner, req GenerateRequest) (*Response, error)
	List(ctx context.Context, owner Owner, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, owner Owner, id string) (*Response, error)
	// Find looks an invoice up by id alone.
	Find(ctx context.Context, id string) (*Response, error)
	Receipt(ctx context.Context, id string, opts ReceiptOptions) (string, error)
}

// Owner is the authenticated user an invoice is stamped with.
type Owner struct {
	ID    snowflake.ID
	Name  string
	Login string
}

type GenerateRequest struct {
	Products []ProductLine `json:"products"`
	Payment  *PaymentInput `json:"payment"`
}

type ProductLine struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	Quantity    *int64          `json:"quantity"`
}

type PaymentInput struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type ListRequest struct {
	FromCreatedAt string
	ToCreatedAt   string
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
	PaymentType   string
	Page          int
	Limit         *int
}

type ListResponse struct {
	CurrentPage int        `json:"current_page"`
	Limit       *int       `json:"limit"`
	LastPage    int        `json:"last_page"`
	Invoices    []Response `json:"invoices"`
}

type Response struct {
	ID        string          `json:"id"`
	Products  []ItemResponse  `json:"products"`
	Payment   PaymentResponse `json:"payment"`
	Total     decimal.Decimal `json:"total"`
	Rest      decimal.Decimal `json:"rest"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy OwnerResponse   `json:"created_by"`
}

type ItemResponse struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	Quantity    int64           `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

type PaymentResponse struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type OwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

// ReceiptOptions controls ticket layout. Zero values fall back to configured defaults.
type ReceiptOptions struct {
	Width        int
	ShopName     string
	AddressLines []string
	Footer       string
}
