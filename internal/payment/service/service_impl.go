package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdesk/internal/clock"
	"github.com/smallbiznis/salesdesk/internal/payment/domain"
	"github.com/smallbiznis/salesdesk/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, tx *gorm.DB, req domain.CreateRequest) (*domain.Payment, error) {
	if tx == nil {
		tx = s.db
	}
	if req.InvoiceID == 0 {
		return nil, domain.ErrInvalidInvoice
	}
	paymentType, ok := domain.ParseType(req.Type)
	if !ok {
		return nil, domain.ErrInvalidType
	}
	if req.Amount.IsNegative() || !req.Amount.Equal(money.Round(req.Amount)) {
		return nil, domain.ErrInvalidAmount
	}

	payment := &domain.Payment{
		ID:        s.genID.Generate(),
		InvoiceID: req.InvoiceID,
		Type:      paymentType,
		Amount:    req.Amount,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, tx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
