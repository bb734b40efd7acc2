// Package salesmetrics counts sales activity on a prometheus registry and can
// push the registry to a Pushgateway or a remote_write endpoint.
package salesmetrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "salesdesk"

// Collector is safe to use as a nil pointer, in which case nothing is recorded.
type Collector struct {
	invoicesGenerated *prometheus.CounterVec
	invoicesRejected  *prometheus.CounterVec
	revenue           *prometheus.CounterVec
	invoiceItems      prometheus.Counter
	productsCreated   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		invoicesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_generated_total",
			Help:      "Invoices committed, by payment type.",
		}, []string{"payment_type"}),
		invoicesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_rejected_total",
			Help:      "Invoice requests rejected before any write, by reason.",
		}, []string{"reason"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Sum of committed invoice totals, by payment type.",
		}, []string{"payment_type"}),
		invoiceItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_items_total",
			Help:      "Invoice lines written.",
		}),
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Catalog rows inserted by find-or-create.",
		}),
	}

	var err error
	if c.invoicesGenerated, err = register(reg, c.invoicesGenerated); err != nil {
		return nil, err
	}
	if c.invoicesRejected, err = register(reg, c.invoicesRejected); err != nil {
		return nil, err
	}
	if c.revenue, err = register(reg, c.revenue); err != nil {
		return nil, err
	}
	if c.invoiceItems, err = register(reg, c.invoiceItems); err != nil {
		return nil, err
	}
	if c.productsCreated, err = register(reg, c.productsCreated); err != nil {
		return nil, err
	}
	return c, nil
}

// register returns the collector already registered under the same name, if any.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func (c *Collector) RecordInvoiceGenerated(paymentType string, total decimal.Decimal, items int) {
	if c == nil {
		return
	}
	paymentType = normalizeLabel(paymentType)
	c.invoicesGenerated.WithLabelValues(paymentType).Inc()
	c.revenue.WithLabelValues(paymentType).Add(total.InexactFloat64())
	c.invoiceItems.Add(float64(items))
}

func (c *Collector) RecordInvoiceRejected(reason string) {
	if c == nil {
		return
	}
	c.invoicesRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (c *Collector) RecordProductCreated() {
	if c == nil {
		return
	}
	c.productsCreated.Inc()
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
