package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/clock"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/incentive/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Rates  *config.RatesHolder
	Clock  clock.Clock
	Ledger commissiondomain.Ledger
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	rates  *config.RatesHolder
	clock  clock.Clock
	ledger commissiondomain.Ledger
}

func New(p Params) domain.Aggregator {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("incentive.aggregator"),
		genID:  p.GenID,
		repo:   p.Repo,
		rates:  p.Rates,
		clock:  p.Clock,
		ledger: p.Ledger,
	}
}

// ApplyInstallationTx rolls one installation into the partner's target for
// the month containing at. The row is created lazily with default targets,
// counters are incremented in SQL so concurrent rollups never lose an
// update, and the achieved transition plus its bonus fire at most once.
func (s *Service) ApplyInstallationTx(ctx context.Context, tx *gorm.DB, partnerID snowflake.ID, partnerType commissiondomain.PartnerType, capacityKw float64, at time.Time) (domain.ApplyResult, error) {
	if partnerID == 0 {
		return domain.ApplyResult{}, domain.ErrInvalidPartner
	}

	year, month := periodOf(at)
	target, err := s.fetchOrCreate(ctx, tx, partnerID, partnerType, year, month)
	if err != nil {
		return domain.ApplyResult{}, err
	}

	if err := s.repo.IncrementAchieved(ctx, tx, target.ID, capacityKw, s.clock.Now()); err != nil {
		return domain.ApplyResult{}, fmt.Errorf("increment incentive counters: %w", err)
	}

	achieved, err := s.repo.MarkAchieved(ctx, tx, target.ID, s.clock.Now())
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("mark incentive achieved: %w", err)
	}

	result := domain.ApplyResult{Achieved: achieved}
	if achieved {
		bonus, err := s.ledger.RecordBonusTx(ctx, tx, partnerID, partnerType, target.BonusAmount)
		if err != nil {
			return domain.ApplyResult{}, fmt.Errorf("award incentive bonus: %w", err)
		}
		result.Bonus = &bonus
	}

	updated, err := s.repo.Find(ctx, tx, partnerID, year, month)
	if err != nil {
		return domain.ApplyResult{}, err
	}
	if updated != nil {
		result.Target = *updated
	}
	return result, nil
}

func (s *Service) CurrentTarget(ctx context.Context, req domain.CurrentTargetRequest) (domain.IncentiveTarget, error) {
	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return domain.IncentiveTarget{}, domain.ErrInvalidPartner
	}

	year, month := periodOf(s.clock.Now())
	target, err := s.repo.Find(ctx, s.db, partnerID, year, month)
	if err != nil {
		return domain.IncentiveTarget{}, err
	}
	if target == nil {
		return domain.IncentiveTarget{}, domain.ErrNotFound
	}
	return *target, nil
}

func (s *Service) fetchOrCreate(ctx context.Context, tx *gorm.DB, partnerID snowflake.ID, partnerType commissiondomain.PartnerType, year, month int) (*domain.IncentiveTarget, error) {
	existing, err := s.repo.Find(ctx, tx, partnerID, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	defaults := s.rates.Current().Incentive
	now := s.clock.Now()
	target := domain.IncentiveTarget{
		ID:                  s.genID.Generate(),
		PartnerID:           partnerID,
		PartnerType:         partnerType,
		Month:               month,
		Year:                year,
		TargetInstallations: defaults.TargetInstallations,
		TargetCapacityKw:    defaults.TargetCapacityKw,
		BonusAmount:         defaults.BonusAmount,
		Status:              domain.StatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	created, err := s.repo.Insert(ctx, tx, &target)
	if err != nil {
		return nil, fmt.Errorf("create incentive target: %w", err)
	}
	if !created {
		// concurrent creator won; use their row
		return s.repo.Find(ctx, tx, partnerID, year, month)
	}
	return &target, nil
}

// periodOf maps a timestamp to its calendar-month period in UTC.
func periodOf(at time.Time) (year, month int) {
	t := at.UTC()
	return t.Year(), int(t.Month())
}
