package receipt

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() domain.Response {
	return domain.Response{
		ID: "1790000000000000001",
		Products: []domain.ItemResponse{
			{Name: "Pen", Price: decimal.RequireFromString("1.50"), Quantity: 2, Total: decimal.RequireFromString("3.00")},
			{Name: "Book", Price: decimal.RequireFromString("9.99"), Quantity: 1, Total: decimal.RequireFromString("9.99")},
		},
		Payment:   domain.PaymentResponse{ID: "2", Type: "cash", Amount: decimal.NewFromInt(15)},
		Total:     decimal.RequireFromString("12.99"),
		Rest:      decimal.RequireFromString("2.01"),
		CreatedAt: time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC),
		CreatedBy: domain.OwnerResponse{ID: "9", Name: "Alice", Login: "alice"},
	}
}

func TestFormatLayout(t *testing.T) {
	out := Format(sampleInvoice(), domain.ReceiptOptions{ShopName: "Corner Shop", Footer: "Thanks!"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), DefaultWidth, "line %q", line)
	}
	assert.Equal(t, "          CORNER SHOP", lines[0])
	assert.Contains(t, lines, "Date:           2024-06-01 12:30")
	assert.Contains(t, lines, "Cashier:                   Alice")
	assert.Contains(t, lines, "Pen")
	assert.Contains(t, lines, "2 x 1.50                    3.00")
	assert.Contains(t, lines, "TOTAL                      12.99")
	assert.Contains(t, lines, "CASH                       15.00")
	assert.Contains(t, lines, "CHANGE                      2.01")
	assert.Equal(t, "            Thanks!", lines[len(lines)-1])
}

func TestFormatHonorsWidth(t *testing.T) {
	out := Format(sampleInvoice(), domain.ReceiptOptions{Width: 48})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.NotEmpty(t, lines)
	assert.Equal(t, strings.Repeat("-", 48), lines[0])
	assert.Contains(t, lines, "TOTAL"+strings.Repeat(" ", 48-len("TOTAL")-len("12.99"))+"12.99")
}

func TestFormatWrapsLongNames(t *testing.T) {
	inv := sampleInvoice()
	inv.Products = []domain.ItemResponse{{
		Name:     "Extra large stainless steel water bottle with lid",
		Price:    decimal.NewFromInt(20),
		Quantity: 1,
		Total:    decimal.NewFromInt(20),
	}}

	out := Format(inv, domain.ReceiptOptions{Width: 20})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 20, "line %q", line)
	}
	assert.Contains(t, lines, "Extra large")
	assert.Contains(t, lines, "stainless steel")
}

func TestWrapBreaksLongWords(t *testing.T) {
	assert.Equal(t, []string{"abcde", "fgh", "ij"}, wrap("abcdefgh ij", 5))
	assert.Nil(t, wrap("   ", 5))
}
