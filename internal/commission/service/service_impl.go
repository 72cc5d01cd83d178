package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/clock"
	"github.com/suryashakti/partner-crm/internal/commission/calc"
	"github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/notify"
	obsmetrics "github.com/suryashakti/partner-crm/internal/observability/metrics"
	pkgdb "github.com/suryashakti/partner-crm/pkg/db"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Rates      *config.RatesHolder
	Clock      clock.Clock
	Metrics    *obsmetrics.Metrics `optional:"true"`
	Dispatcher *notify.Dispatcher  `optional:"true"`
}

type Ledger struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	rates      *config.RatesHolder
	clock      clock.Clock
	metrics    *obsmetrics.Metrics
	dispatcher *notify.Dispatcher
}

func New(p Params) domain.Ledger {
	return &Ledger{
		db:         p.DB,
		log:        p.Log.Named("commission.ledger"),
		genID:      p.GenID,
		repo:       p.Repo,
		rates:      p.Rates,
		clock:      p.Clock,
		metrics:    p.Metrics,
		dispatcher: p.Dispatcher,
	}
}

// RecordInstallationTx computes and inserts the installation commission for a
// (partner, customer) pair inside the caller's transaction. The insert is
// idempotent on the unique (partner_id, customer_id, source=installation)
// index: a duplicate returns the existing row unchanged.
func (s *Ledger) RecordInstallationTx(ctx context.Context, tx *gorm.DB, req domain.RecordInstallationRequest) (domain.InstallationResult, error) {
	if req.PartnerID == 0 {
		return domain.InstallationResult{}, domain.ErrInvalidPartner
	}
	if !req.PartnerType.Valid() {
		return domain.InstallationResult{}, domain.ErrInvalidPartnerType
	}

	amount, err := calc.Installation(s.rates.Current(), req.PanelType, req.CapacityKw, req.PartnerType)
	if err != nil {
		return domain.InstallationResult{}, err
	}

	customerID := req.CustomerID
	commission := domain.Commission{
		ID:               s.genID.Generate(),
		PartnerID:        req.PartnerID,
		PartnerType:      req.PartnerType,
		CustomerID:       &customerID,
		Source:           domain.SourceInstallation,
		CapacityKw:       req.CapacityKw,
		CommissionAmount: amount,
		Status:           domain.StatusPending,
		Metadata: datatypes.JSONMap{
			"panel_type": string(req.PanelType),
		},
		CreatedAt: s.clock.Now(),
	}

	created, err := s.repo.InsertInstallation(ctx, tx, &commission)
	if err != nil {
		return domain.InstallationResult{}, fmt.Errorf("insert installation commission: %w", err)
	}
	if !created {
		existing, findErr := s.repo.FindInstallation(ctx, tx, req.PartnerID, req.CustomerID)
		if findErr != nil {
			return domain.InstallationResult{}, findErr
		}
		if existing == nil {
			// lost the race and the winner rolled back
			return domain.InstallationResult{}, fmt.Errorf("installation commission for partner %s customer %s conflicted but is not visible", req.PartnerID, req.CustomerID)
		}
		return domain.InstallationResult{Commission: *existing, Created: false}, nil
	}

	if s.metrics != nil {
		s.metrics.CommissionsRecorded.WithLabelValues(string(domain.SourceInstallation)).Inc()
	}
	return domain.InstallationResult{Commission: commission, Created: true}, nil
}

// RecordInverter appends one commission row per inverter sale event. Each
// sale is a distinct event, so there is no idempotency key here.
func (s *Ledger) RecordInverter(ctx context.Context, partnerID snowflake.ID, partnerType domain.PartnerType, unitsSold int) (domain.Commission, error) {
	if partnerID == 0 {
		return domain.Commission{}, domain.ErrInvalidPartner
	}
	if !partnerType.Valid() {
		return domain.Commission{}, domain.ErrInvalidPartnerType
	}
	if unitsSold <= 0 {
		return domain.Commission{}, domain.ErrInvalidUnits
	}

	perUnit, err := calc.Inverter(s.rates.Current(), partnerType)
	if err != nil {
		return domain.Commission{}, err
	}

	commission := domain.Commission{
		ID:               s.genID.Generate(),
		PartnerID:        partnerID,
		PartnerType:      partnerType,
		Source:           domain.SourceInverter,
		CommissionAmount: perUnit * int64(unitsSold),
		Status:           domain.StatusPending,
		Metadata: datatypes.JSONMap{
			"units_sold": unitsSold,
		},
		CreatedAt: s.clock.Now(),
	}

	err = pkgdb.Transact(ctx, s.db, func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &commission)
	})
	if err != nil {
		return domain.Commission{}, fmt.Errorf("insert inverter commission: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CommissionsRecorded.WithLabelValues(string(domain.SourceInverter)).Inc()
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(notify.Event{
			Type:      notify.EventCommissionEarned,
			PartnerID: partnerID.String(),
			Message:   fmt.Sprintf("Inverter commission of ₹%d recorded (%d units)", commission.CommissionAmount, unitsSold),
			Context: map[string]any{
				"source": string(domain.SourceInverter),
				"amount": commission.CommissionAmount,
			},
		})
	}
	return commission, nil
}

// RecordBonusTx appends a bonus commission inside the caller's transaction.
// The once-per-period rule is enforced by the incentive aggregator's status
// transition, not here.
func (s *Ledger) RecordBonusTx(ctx context.Context, tx *gorm.DB, partnerID snowflake.ID, partnerType domain.PartnerType, amount int64) (domain.Commission, error) {
	if partnerID == 0 {
		return domain.Commission{}, domain.ErrInvalidPartner
	}
	if !partnerType.Valid() {
		return domain.Commission{}, domain.ErrInvalidPartnerType
	}
	if amount <= 0 {
		return domain.Commission{}, domain.ErrInvalidAmount
	}

	commission := domain.Commission{
		ID:               s.genID.Generate(),
		PartnerID:        partnerID,
		PartnerType:      partnerType,
		Source:           domain.SourceBonus,
		CommissionAmount: amount,
		Status:           domain.StatusPending,
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, &commission); err != nil {
		return domain.Commission{}, fmt.Errorf("insert bonus commission: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CommissionsRecorded.WithLabelValues(string(domain.SourceBonus)).Inc()
		s.metrics.BonusesAwarded.Inc()
	}
	return commission, nil
}

func (s *Ledger) ListByPartner(ctx context.Context, req domain.ListByPartnerRequest) (domain.ListByPartnerResponse, error) {
	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return domain.ListByPartnerResponse{}, domain.ErrInvalidPartner
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByPartner(ctx, s.db, partnerID, domain.Source(strings.TrimSpace(req.Source)), pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListByPartnerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(commission *domain.Commission) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        commission.ID.String(),
			CreatedAt: commission.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	commissions := make([]domain.Commission, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		commissions = append(commissions, *item)
	}

	resp := domain.ListByPartnerResponse{Commissions: commissions}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
