package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	appconfig "github.com/smallbiznis/salesdesk/internal/config"
	invoicedomain "github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/pkg/money"
)

// ReceiptData is the printable form of an invoice. Amounts are preformatted.
type ReceiptData struct {
	ShopName     string
	AddressLines []string
	Footer       string

	InvoiceNumber string
	IssuedAt      string
	Cashier       string

	Items []ReceiptItem

	Total       string
	PaymentType string
	Paid        string
	Change      string
}

type ReceiptItem struct {
	Name      string
	Qty       int64
	UnitPrice string
	Amount    string
}

// NewReceiptData maps an invoice and the shop settings onto a receipt.
func NewReceiptData(inv invoicedomain.Response, shop appconfig.ReceiptConfig) ReceiptData {
	cashier := strings.TrimSpace(inv.CreatedBy.Name)
	if cashier == "" {
		cashier = inv.CreatedBy.Login
	}

	data := ReceiptData{
		ShopName:      shop.ShopName,
		AddressLines:  shop.AddressLines,
		Footer:        shop.Footer,
		InvoiceNumber: inv.ID,
		IssuedAt:      inv.CreatedAt.UTC().Format("2006-01-02 15:04"),
		Cashier:       cashier,
		Items:         make([]ReceiptItem, 0, len(inv.Products)),
		Total:         money.Format(inv.Total),
		PaymentType:   strings.ToUpper(inv.Payment.Type),
		Paid:          money.Format(inv.Payment.Amount),
		Change:        money.Format(inv.Rest),
	}
	for _, item := range inv.Products {
		data.Items = append(data.Items, ReceiptItem{
			Name:      item.Name,
			Qty:       item.Quantity,
			UnitPrice: money.Format(item.Price),
			Amount:    money.Format(item.Total),
		})
	}
	return data
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, receipt.ShopName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	for _, addr := range receipt.AddressLines {
		m.AddRow(5, text.NewCol(12, addr, props.Text{Size: 9, Align: align.Center}))
	}

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt number: "+receipt.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date: "+receipt.IssuedAt, props.Text{Top: 4}),
			text.New("Cashier: "+receipt.Cashier, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range receipt.Items {
		m.AddRow(8,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(2, line.NewCol(12))

	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, receipt.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, receipt.PaymentType, props.Text{Size: 9}),
		text.NewCol(2, receipt.Paid, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Change", props.Text{Size: 9}),
		text.NewCol(2, receipt.Change, props.Text{Size: 9, Align: align.Right}),
	)

	if receipt.Footer != "" {
		m.AddRow(15,
			text.NewCol(12, receipt.Footer, props.Text{Size: 10, Align: align.Center, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
