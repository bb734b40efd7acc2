// Package receipt renders invoices as fixed-width plain-text tickets.
package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/pkg/money"
)

// DefaultWidth fits 58mm thermal paper.
const DefaultWidth = 32

// ticket accumulates lines of a fixed character width.
type ticket struct {
	buf   strings.Builder
	width int
}

func newTicket(width int) *ticket {
	if width <= 0 {
		width = DefaultWidth
	}
	return &ticket{width: width}
}

func (t *ticket) line(s string) *ticket {
	t.buf.WriteString(s)
	t.buf.WriteByte('\n')
	return t
}

func (t *ticket) separator() *ticket {
	return t.line(strings.Repeat("-", t.width))
}

func (t *ticket) center(s string) *ticket {
	for _, part := range wrap(s, t.width) {
		pad := (t.width - utf8.RuneCountInString(part)) / 2
		t.line(strings.Repeat(" ", pad) + part)
	}
	return t
}

func (t *ticket) wrapped(s string) *ticket {
	for _, part := range wrap(s, t.width) {
		t.line(part)
	}
	return t
}

// keyValue writes key left and value right. Values that do not fit move to their own row.
func (t *ticket) keyValue(key, value string) *ticket {
	spaces := t.width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if spaces < 1 {
		t.wrapped(key)
		pad := t.width - utf8.RuneCountInString(value)
		if pad < 0 {
			pad = 0
		}
		return t.line(strings.Repeat(" ", pad) + value)
	}
	return t.line(key + strings.Repeat(" ", spaces) + value)
}

func (t *ticket) String() string {
	return t.buf.String()
}

// Format renders inv as a ticket.
func Format(inv domain.Response, opts domain.ReceiptOptions) string {
	t := newTicket(opts.Width)

	if name := strings.TrimSpace(opts.ShopName); name != "" {
		t.center(strings.ToUpper(name))
	}
	for _, addr := range opts.AddressLines {
		if addr = strings.TrimSpace(addr); addr != "" {
			t.center(addr)
		}
	}
	t.separator()

	t.keyValue("No:", inv.ID)
	t.keyValue("Date:", inv.CreatedAt.UTC().Format("2006-01-02 15:04"))
	cashier := strings.TrimSpace(inv.CreatedBy.Name)
	if cashier == "" {
		cashier = inv.CreatedBy.Login
	}
	t.keyValue("Cashier:", cashier)
	t.separator()

	for _, item := range inv.Products {
		t.wrapped(item.Name)
		t.keyValue(
			fmt.Sprintf("%d x %s", item.Quantity, money.Format(item.Price)),
			money.Format(item.Total),
		)
	}
	t.separator()

	t.keyValue("TOTAL", money.Format(inv.Total))
	t.keyValue(paymentLabel(inv.Payment.Type), money.Format(inv.Payment.Amount))
	t.keyValue("CHANGE", money.Format(inv.Rest))

	if footer := strings.TrimSpace(opts.Footer); footer != "" {
		t.separator()
		t.center(footer)
	}
	return t.String()
}

func paymentLabel(paymentType string) string {
	label := strings.ToUpper(strings.TrimSpace(paymentType))
	if label == "" {
		return "PAYMENT"
	}
	return label
}

// wrap splits s on whitespace into rows of at most width runes.
// Words longer than width are broken.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var (
		rows    []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			rows = append(rows, string(current))
			current = current[:0]
		}
	}

	for _, word := range words {
		w := []rune(word)
		for len(w) > width {
			flush()
			rows = append(rows, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= width:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			flush()
			current = append(current, w...)
		}
	}
	flush()
	return rows
}
