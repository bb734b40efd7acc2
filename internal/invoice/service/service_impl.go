package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salesdesk/internal/clock"
	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/internal/invoice/receipt"
	obslogger "github.com/smallbiznis/salesdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/salesdesk/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/salesdesk/internal/payment/domain"
	productdomain "github.com/smallbiznis/salesdesk/internal/product/domain"
	"github.com/smallbiznis/salesdesk/internal/salesmetrics"
	"github.com/smallbiznis/salesdesk/pkg/db/pagination"
	"github.com/smallbiznis/salesdesk/pkg/money"
	"github.com/smallbiznis/salesdesk/pkg/timeutil"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ProductSvc productdomain.Service
	PaymentSvc paymentdomain.Service

	Receipt *config.ReceiptConfigHolder `optional:"true"`
	Sales   *salesmetrics.Collector     `optional:"true"`
	Metrics *obsmetrics.Metrics         `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	productSvc productdomain.Service
	paymentSvc paymentdomain.Service

	receipt *config.ReceiptConfigHolder
	sales   *salesmetrics.Collector
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		productSvc: p.ProductSvc,
		paymentSvc: p.PaymentSvc,
		receipt:    p.Receipt,
		sales:      p.Sales,
		metrics:    p.Metrics,
	}
}

type line struct {
	name        string
	price       decimal.Decimal
	description *string
	quantity    int64
	total       decimal.Decimal
}

func (s *Service) Generate(ctx context.Context, owner domain.Owner, req domain.GenerateRequest) (*domain.Response, error) {
	if owner.ID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	lines, total, err := normalizeLines(req.Products)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}
	if req.Payment == nil {
		s.reject(ctx, domain.ErrInvalidPayment)
		return nil, domain.ErrInvalidPayment
	}
	paymentType, ok := paymentdomain.ParseType(req.Payment.Type)
	if !ok {
		s.reject(ctx, domain.ErrInvalidPaymentType)
		return nil, domain.ErrInvalidPaymentType
	}
	amount := req.Payment.Amount
	if amount.IsNegative() || !amount.Equal(money.Round(amount)) {
		s.reject(ctx, domain.ErrInvalidAmount)
		return nil, domain.ErrInvalidAmount
	}
	if amount.LessThan(total) {
		err := &domain.InsufficientPaymentError{Amount: amount, Total: total}
		s.reject(ctx, err)
		return nil, err
	}
	rest := amount.Sub(total)

	now := s.clock.Now()
	invoice := &domain.Invoice{
		ID:        s.genID.Generate(),
		Total:     total,
		Rest:      rest,
		CreatedAt: now,
		CreatedBy: owner.ID,
	}

	var payment *paymentdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		var err error
		payment, err = s.paymentSvc.Create(ctx, tx, paymentdomain.CreateRequest{
			InvoiceID: invoice.ID,
			Type:      string(paymentType),
			Amount:    amount,
		})
		if err != nil {
			return err
		}

		for i, l := range lines {
			productID, err := s.productSvc.FindOrCreate(ctx, tx, productdomain.ProductInput{
				Name:        l.name,
				Price:       l.price,
				Description: l.description,
			})
			if err != nil {
				return err
			}
			if err := s.repo.InsertItem(ctx, tx, &domain.InvoiceItem{
				ID:        s.genID.Generate(),
				InvoiceID: invoice.ID,
				ProductID: productID,
				Position:  i,
				Quantity:  l.quantity,
				Total:     l.total,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("generate invoice failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Int("items", len(lines)),
			zap.Error(err),
		)
		s.metrics.RecordInvoiceRequest(ctx, "generate", "error")
		return nil, err
	}

	s.sales.RecordInvoiceGenerated(string(paymentType), total, len(lines))
	s.metrics.RecordInvoiceRequest(ctx, "generate", "success")
	obslogger.WithContext(ctx, s.log).Info("invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("total", money.Format(total)),
		zap.String("payment_type", string(paymentType)),
		zap.Int("items", len(lines)),
	)

	resp := &domain.Response{
		ID:       invoice.ID.String(),
		Products: make([]domain.ItemResponse, 0, len(lines)),
		Payment: domain.PaymentResponse{
			ID:     payment.ID.String(),
			Type:   string(payment.Type),
			Amount: payment.Amount,
		},
		Total:     invoice.Total,
		Rest:      invoice.Rest,
		CreatedAt: invoice.CreatedAt,
		CreatedBy: domain.OwnerResponse{
			ID:    owner.ID.String(),
			Name:  owner.Name,
			Login: owner.Login,
		},
	}
	for _, l := range lines {
		resp.Products = append(resp.Products, domain.ItemResponse{
			Name:        l.name,
			Price:       l.price,
			Description: l.description,
			Quantity:    l.quantity,
			Total:       l.total,
		})
	}
	return resp, nil
}

// reject records a business-rule rejection that happened before any write.
func (s *Service) reject(ctx context.Context, err error) {
	reason := err.Error()
	var insufficient *domain.InsufficientPaymentError
	if errors.As(err, &insufficient) {
		reason = domain.ErrInsufficientPayment.Error()
	}
	s.sales.RecordInvoiceRejected(reason)
	s.metrics.RecordInvoiceRequest(ctx, "generate", "rejected")
}

func normalizeLines(products []domain.ProductLine) ([]line, decimal.Decimal, error) {
	if len(products) == 0 {
		return nil, decimal.Zero, domain.ErrInvalidProducts
	}

	total := decimal.Zero
	lines := make([]line, 0, len(products))
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, decimal.Zero, domain.ErrInvalidProductName
		}
		if p.Price.IsNegative() || !p.Price.Equal(money.Round(p.Price)) {
			return nil, decimal.Zero, domain.ErrInvalidPrice
		}
		quantity := int64(1)
		if p.Quantity != nil {
			quantity = *p.Quantity
		}
		if quantity < 0 {
			return nil, decimal.Zero, domain.ErrInvalidQuantity
		}

		lineTotal := money.LineTotal(p.Price, quantity)
		total = total.Add(lineTotal)
		lines = append(lines, line{
			name:        name,
			price:       money.Round(p.Price),
			description: p.Description,
			quantity:    quantity,
			total:       lineTotal,
		})
	}
	return lines, total, nil
}

func (s *Service) List(ctx context.Context, owner domain.Owner, req domain.ListRequest) (*domain.ListResponse, error) {
	if owner.ID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	if req.Page < 0 {
		return nil, domain.ErrInvalidPage
	}
	limit := 0
	if req.Limit != nil {
		if *req.Limit < 0 {
			return nil, domain.ErrInvalidLimit
		}
		limit = *req.Limit
	}

	filter, err := buildFilter(owner, req)
	if err != nil {
		return nil, err
	}

	invoices, err := s.load(ctx, filter)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("list invoices failed", zap.Error(err))
		s.metrics.RecordInvoiceRequest(ctx, "list", "error")
		return nil, err
	}
	s.metrics.RecordInvoiceRequest(ctx, "list", "success")

	window := pagination.NewWindow(len(invoices), req.Page, limit)
	resp := &domain.ListResponse{
		Invoices: pagination.Slice(invoices, window),
	}
	if window.Paged() {
		resp.CurrentPage = window.Page
		resp.LastPage = window.LastPage
		resp.Limit = &window.Limit
	}
	return resp, nil
}

func buildFilter(owner domain.Owner, req domain.ListRequest) (domain.Filter, error) {
	filter := domain.Filter{OwnerID: &owner.ID}

	if raw := strings.TrimSpace(req.FromCreatedAt); raw != "" {
		from, err := timeutil.ParseLoose(raw, false)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidFromCreatedAt
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(req.ToCreatedAt); raw != "" {
		to, err := timeutil.ParseLoose(raw, true)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidToCreatedAt
		}
		filter.To = &to
	}
	if req.MinTotal != nil {
		if req.MinTotal.IsNegative() {
			return domain.Filter{}, domain.ErrInvalidMinTotal
		}
		filter.MinTotal = req.MinTotal
	}
	if req.MaxTotal != nil {
		if req.MaxTotal.IsNegative() {
			return domain.Filter{}, domain.ErrInvalidMaxTotal
		}
		filter.MaxTotal = req.MaxTotal
	}
	if raw := strings.TrimSpace(req.PaymentType); raw != "" {
		paymentType, ok := paymentdomain.ParseType(raw)
		if !ok {
			return domain.Filter{}, domain.ErrInvalidPaymentType
		}
		filter.PaymentType = &paymentType
	}
	return filter, nil
}

func (s *Service) Get(ctx context.Context, owner domain.Owner, id string) (*domain.Response, error) {
	if owner.ID == 0 {
		return nil, domain.ErrInvalidOwner
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, domain.Filter{InvoiceID: &invoiceID, OwnerID: &owner.ID}, id)
}

func (s *Service) Find(ctx context.Context, id string) (*domain.Response, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, domain.Filter{InvoiceID: &invoiceID}, id)
}

func (s *Service) Receipt(ctx context.Context, id string, opts domain.ReceiptOptions) (string, error) {
	if opts.Width != 0 && (opts.Width < config.MinReceiptWidth || opts.Width > config.MaxReceiptWidth) {
		return "", domain.ErrInvalidWidth
	}

	invoice, err := s.Find(ctx, id)
	if err != nil {
		return "", err
	}

	text := receipt.Format(*invoice, s.receiptOptions(opts))
	s.metrics.RecordReceiptRender(ctx, "text")
	return text, nil
}

func (s *Service) receiptOptions(opts domain.ReceiptOptions) domain.ReceiptOptions {
	defaults := config.DefaultReceiptConfig()
	if s.receipt != nil {
		defaults = s.receipt.Get()
	}
	if opts.Width == 0 {
		opts.Width = defaults.Width
	}
	if strings.TrimSpace(opts.ShopName) == "" {
		opts.ShopName = defaults.ShopName
	}
	if len(opts.AddressLines) == 0 {
		opts.AddressLines = defaults.AddressLines
	}
	if strings.TrimSpace(opts.Footer) == "" {
		opts.Footer = defaults.Footer
	}
	return opts
}

func (s *Service) findOne(ctx context.Context, filter domain.Filter, rawID string) (*domain.Response, error) {
	invoices, err := s.load(ctx, filter)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("load invoice failed",
			zap.String("invoice_id", rawID),
			zap.Error(err),
		)
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, &domain.NotFoundError{ID: strings.TrimSpace(rawID)}
	}
	return &invoices[0], nil
}

func (s *Service) load(ctx context.Context, filter domain.Filter) ([]domain.Response, error) {
	rows, err := s.repo.Select(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return groupRows(rows), nil
}

// groupRows folds joined rows back into invoices, keeping the row order.
func groupRows(rows []domain.Row) []domain.Response {
	invoices := make([]domain.Response, 0)
	index := make(map[snowflake.ID]int)

	for _, row := range rows {
		pos, ok := index[row.InvoiceID]
		if !ok {
			pos = len(invoices)
			index[row.InvoiceID] = pos
			invoices = append(invoices, domain.Response{
				ID:       row.InvoiceID.String(),
				Products: []domain.ItemResponse{},
				Payment: domain.PaymentResponse{
					ID:     row.PaymentID.String(),
					Type:   row.PaymentType,
					Amount: money.Round(row.PaymentAmount),
				},
				Total:     money.Round(row.InvoiceTotal),
				Rest:      money.Round(row.InvoiceRest),
				CreatedAt: row.InvoiceCreatedAt.UTC(),
				CreatedBy: domain.OwnerResponse{
					ID:    row.OwnerID.String(),
					Name:  row.OwnerName,
					Login: row.OwnerLogin,
				},
			})
		}
		if row.ItemID == nil {
			continue
		}

		item := domain.ItemResponse{
			Description: row.ProductDescription,
			Total:       money.Round(row.ItemTotal.Decimal),
			Price:       money.Round(row.ProductPrice.Decimal),
		}
		if row.ProductName != nil {
			item.Name = *row.ProductName
		}
		if row.ItemQuantity != nil {
			item.Quantity = *row.ItemQuantity
		}
		invoices[pos].Products = append(invoices[pos].Products, item)
	}
	return invoices
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
