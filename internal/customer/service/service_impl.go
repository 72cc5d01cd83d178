package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/clock"
	"github.com/suryashakti/partner-crm/internal/customer/domain"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
	pkgdb "github.com/suryashakti/partner-crm/pkg/db"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Journey journeydomain.Service
	Clock   clock.Clock
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	journey journeydomain.Service
	clock   clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("customer.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		journey: p.Journey,
		clock:   p.Clock,
	}
}

// Create onboards a customer and seeds their milestone journey in the same
// transaction; a customer row never exists without its journey.
func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	state := strings.TrimSpace(req.State)
	if state == "" {
		return domain.Customer{}, domain.ErrInvalidState
	}
	if !req.PanelType.Valid() {
		return domain.Customer{}, domain.ErrInvalidPanelType
	}
	if req.ProposedCapacityKw <= 0 {
		return domain.Customer{}, domain.ErrInvalidCapacity
	}
	ddpID, err := snowflake.ParseString(strings.TrimSpace(req.DDPID))
	if err != nil || ddpID == 0 {
		return domain.Customer{}, domain.ErrInvalidPartner
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:                 s.genID.Generate(),
		Name:               name,
		Phone:              strings.TrimSpace(req.Phone),
		State:              state,
		PanelType:          req.PanelType,
		ProposedCapacityKw: req.ProposedCapacityKw,
		DDPID:              ddpID,
		PipelineStatus:     domain.PipelinePending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = pkgdb.Transact(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &customer); err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return s.journey.InitializeJourneyTx(ctx, tx, customer.ID)
	})
	if err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomersRequest) (domain.ListCustomersResponse, error) {
	var ddpID snowflake.ID
	if raw := strings.TrimSpace(req.DDPID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.ListCustomersResponse{}, domain.ErrInvalidPartner
		}
		ddpID = parsed
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, ddpID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCustomersResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomersResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
