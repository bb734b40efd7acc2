package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdesk/pkg/money"
)

var (
	ErrInvalidOwner         = errors.New("invalid_owner")
	ErrInvalidProducts      = errors.New("invalid_products")
	ErrInvalidProductName   = errors.New("invalid_product_name")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPayment       = errors.New("invalid_payment")
	ErrInvalidPaymentType   = errors.New("invalid_payment_type")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidPage          = errors.New("invalid_page")
	ErrInvalidLimit         = errors.New("invalid_limit")
	ErrInvalidFromCreatedAt = errors.New("invalid_from_created_at")
	ErrInvalidToCreatedAt   = errors.New("invalid_to_created_at")
	ErrInvalidMinTotal      = errors.New("invalid_min_total")
	ErrInvalidMaxTotal      = errors.New("invalid_max_total")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidWidth         = errors.New("invalid_width")

	ErrInsufficientPayment = errors.New("insufficient_payment")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
)

// InsufficientPaymentError rejects an invoice whose payment does not cover its total.
type InsufficientPaymentError struct {
	Amount decimal.Decimal
	Total  decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf(
		"Invalid invoice data. Payment amount (%s) can't be less than total (%s)",
		money.Format(e.Amount),
		money.Format(e.Total),
	)
}

func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Invoice with ID = %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrInvoiceNotFound
}
