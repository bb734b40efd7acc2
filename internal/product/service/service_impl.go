package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/salesdesk/internal/clock"
	obslogger "github.com/smallbiznis/salesdesk/internal/observability/logger"
	"github.com/smallbiznis/salesdesk/internal/product/domain"
	"github.com/smallbiznis/salesdesk/internal/salesmetrics"
	"github.com/smallbiznis/salesdesk/pkg/db"
	"github.com/smallbiznis/salesdesk/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *salesmetrics.Collector `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *salesmetrics.Collector
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("product.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) FindOrCreate(ctx context.Context, tx *gorm.DB, input domain.ProductInput) (snowflake.ID, error) {
	if tx == nil {
		tx = s.db
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, domain.ErrInvalidName
	}
	price := input.Price
	if price.IsNegative() || !price.Equal(money.Round(price)) {
		return 0, domain.ErrInvalidPrice
	}

	existing, err := s.repo.FindByNameAndPrice(ctx, tx, name, price)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	p := &domain.Product{
		ID:          s.genID.Generate(),
		Code:        slug.Make(name),
		Name:        name,
		Price:       money.Round(price),
		Description: normalizeDescription(input.Description),
		CreatedAt:   s.clock.Now(),
	}

	// A savepoint keeps the outer transaction usable if another request won the insert.
	err = tx.Transaction(func(sp *gorm.DB) error {
		return s.repo.Insert(ctx, sp, p)
	})
	if err == nil {
		s.metrics.RecordProductCreated()
		return p.ID, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return 0, err
	}

	winner, err := s.repo.FindByNameAndPrice(ctx, tx, name, price)
	if err != nil {
		return 0, err
	}
	if winner == nil {
		return 0, domain.ErrNotFound
	}
	obslogger.WithContext(ctx, s.log).Debug("product insert lost race, reusing row",
		zap.String("product_id", winner.ID.String()),
	)
	return winner.ID, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Name:  strings.TrimSpace(req.Name),
		Limit: req.Limit,
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Price:       money.Round(p.Price),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	value := strings.TrimSpace(*description)
	if value == "" {
		return nil
	}
	return &value
}
