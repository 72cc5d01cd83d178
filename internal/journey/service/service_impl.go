package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
	"github.com/suryashakti/partner-crm/internal/clock"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	customerdomain "github.com/suryashakti/partner-crm/internal/customer/domain"
	incentivedomain "github.com/suryashakti/partner-crm/internal/incentive/domain"
	"github.com/suryashakti/partner-crm/internal/journey/domain"
	"github.com/suryashakti/partner-crm/internal/notify"
	obsmetrics "github.com/suryashakti/partner-crm/internal/observability/metrics"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
	pkgdb "github.com/suryashakti/partner-crm/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Catalog    *catalog.Catalog
	Customers  customerdomain.Repository
	VendorSvc  vendordomain.Service
	Ledger     commissiondomain.Ledger
	Incentive  incentivedomain.Aggregator
	Clock      clock.Clock
	Metrics    *obsmetrics.Metrics `optional:"true"`
	Dispatcher *notify.Dispatcher  `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	catalog    *catalog.Catalog
	customers  customerdomain.Repository
	vendorSvc  vendordomain.Service
	ledger     commissiondomain.Ledger
	incentive  incentivedomain.Aggregator
	clock      clock.Clock
	metrics    *obsmetrics.Metrics
	dispatcher *notify.Dispatcher
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("journey.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		catalog:    p.Catalog,
		customers:  p.Customers,
		vendorSvc:  p.VendorSvc,
		ledger:     p.Ledger,
		incentive:  p.Incentive,
		clock:      p.Clock,
		metrics:    p.Metrics,
		dispatcher: p.Dispatcher,
	}
}

// InitializeJourneyTx seeds one pending record per catalog entry. The unique
// (customer_id, milestone_key) index makes re-invocation a no-op.
func (s *Service) InitializeJourneyTx(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) error {
	if customerID == 0 {
		return domain.ErrInvalidCustomer
	}

	now := s.clock.Now()
	entries := s.catalog.Entries()
	records := make([]*domain.MilestoneRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, &domain.MilestoneRecord{
			ID:           s.genID.Generate(),
			CustomerID:   customerID,
			MilestoneKey: entry.Key,
			OrdinalIndex: entry.OrdinalIndex,
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := s.repo.InsertAll(ctx, tx, records); err != nil {
		return fmt.Errorf("initialize journey: %w", err)
	}
	return nil
}

// CompleteMilestone performs the whole operator action in one transaction:
// the optional vendor assignment, the sequence-checked completion, and on
// the terminal milestone the installation commission plus incentive rollup.
// Notifications go out only after the transaction commits.
func (s *Service) CompleteMilestone(ctx context.Context, req domain.CompleteMilestoneRequest) (domain.CompleteMilestoneResult, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.CompleteMilestoneResult{}, domain.ErrInvalidCustomer
	}

	def, defErr := s.catalog.Lookup(strings.TrimSpace(req.MilestoneKey))
	if defErr != nil {
		return domain.CompleteMilestoneResult{}, domain.ErrNotFound
	}

	var vendorID snowflake.ID
	if strings.TrimSpace(req.VendorID) != "" {
		vendorID, err = parseID(req.VendorID)
		if err != nil {
			return domain.CompleteMilestoneResult{}, vendordomain.ErrInvalidVendor
		}
		if !def.Gated() {
			return domain.CompleteMilestoneResult{}, fmt.Errorf("%w: milestone %s is not vendor-gated", vendordomain.ErrAssignmentFailed, def.Key)
		}
	}

	var result domain.CompleteMilestoneResult
	err = pkgdb.Transact(ctx, s.db, func(tx *gorm.DB) error {
		// Vendor assignment first: if it fails the milestone stays pending.
		if vendorID != 0 {
			assignment, assignErr := s.vendorSvc.AssignTx(ctx, tx, vendordomain.AssignRequest{
				CustomerID:   customerID,
				VendorID:     vendorID,
				JobRole:      def.VendorGate,
				JourneyStage: def.Key,
				Notes:        req.Notes,
			})
			if assignErr != nil {
				return assignErr
			}
			result.Assignment = &assignment
		}

		record, findErr := s.repo.Find(ctx, tx, customerID, def.Key)
		if findErr != nil {
			return findErr
		}
		if record == nil {
			return domain.ErrNotFound
		}
		if record.Status == domain.StatusCompleted {
			return domain.ErrAlreadyCompleted
		}

		pendingBefore, countErr := s.repo.CountPendingBefore(ctx, tx, customerID, def.OrdinalIndex)
		if countErr != nil {
			return countErr
		}
		if pendingBefore > 0 {
			return domain.ErrOutOfOrder
		}

		completedAt := s.clock.Now()
		rows, updateErr := s.repo.Complete(ctx, tx, customerID, def.Key, completedAt, strings.TrimSpace(req.Notes), req.Actor)
		if updateErr != nil {
			return updateErr
		}
		if rows == 0 {
			// concurrent completion won between the read and the update
			return domain.ErrAlreadyCompleted
		}

		record.Status = domain.StatusCompleted
		record.CompletedAt = &completedAt
		record.Notes = strings.TrimSpace(req.Notes)
		record.UpdatedByRole = req.Actor.Role
		record.UpdatedByID = req.Actor.ID
		record.UpdatedAt = completedAt
		result.Record = s.view(*record, def)

		if !s.catalog.IsTerminal(def.Key) {
			return nil
		}
		return s.settleInstallation(ctx, tx, customerID, &result)
	})
	if err != nil {
		return domain.CompleteMilestoneResult{}, err
	}

	s.afterComplete(req, def, result)
	return result, nil
}

// settleInstallation runs inside the completion transaction once the
// terminal milestone flipped: it records the installation commission for the
// customer's owning partner and rolls the installation into the monthly
// incentive target.
func (s *Service) settleInstallation(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, result *domain.CompleteMilestoneResult) error {
	customer, err := s.customers.FindByID(ctx, tx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrInvalidCustomer
	}

	ledgerResult, err := s.ledger.RecordInstallationTx(ctx, tx, commissiondomain.RecordInstallationRequest{
		CustomerID:  customer.ID,
		PartnerID:   customer.DDPID,
		PartnerType: commissiondomain.PartnerDDP,
		PanelType:   customer.PanelType,
		CapacityKw:  customer.ProposedCapacityKw,
	})
	if err != nil {
		return err
	}
	result.Commission = &ledgerResult.Commission

	// A suppressed duplicate means this installation was already counted.
	if !ledgerResult.Created {
		return nil
	}

	applied, err := s.incentive.ApplyInstallationTx(ctx, tx, customer.DDPID, commissiondomain.PartnerDDP, customer.ProposedCapacityKw, ledgerResult.Commission.CreatedAt)
	if err != nil {
		return err
	}
	if applied.Achieved {
		incentive := domain.CompletedIncentive{Achieved: true}
		if applied.Bonus != nil {
			incentive.BonusAmount = applied.Bonus.CommissionAmount
		}
		result.Incentive = &incentive
	}
	return nil
}

func (s *Service) GetJourney(ctx context.Context, customerID string) ([]domain.MilestoneView, error) {
	id, err := parseID(customerID)
	if err != nil {
		return nil, domain.ErrInvalidCustomer
	}

	records, err := s.repo.ListByCustomer(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}

	views := make([]domain.MilestoneView, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		def, defErr := s.catalog.Lookup(record.MilestoneKey)
		if defErr != nil {
			// record for a retired catalog entry; surface it bare
			views = append(views, domain.MilestoneView{MilestoneRecord: *record})
			continue
		}
		views = append(views, s.view(*record, def))
	}
	return views, nil
}

func (s *Service) view(record domain.MilestoneRecord, def catalog.MilestoneDefinition) domain.MilestoneView {
	return domain.MilestoneView{
		MilestoneRecord: record,
		Label:           def.Label,
		Description:     def.Description,
		VendorGate:      def.VendorGate,
		Terminal:        s.catalog.IsTerminal(def.Key),
	}
}

// afterComplete emits metrics and best-effort notifications once the
// transaction is committed.
func (s *Service) afterComplete(req domain.CompleteMilestoneRequest, def catalog.MilestoneDefinition, result domain.CompleteMilestoneResult) {
	if s.metrics != nil {
		s.metrics.MilestonesCompleted.WithLabelValues(def.Key).Inc()
	}
	if s.dispatcher == nil {
		return
	}

	s.dispatcher.Dispatch(notify.Event{
		Type:       notify.EventMilestoneCompleted,
		CustomerID: req.CustomerID,
		Message:    fmt.Sprintf("Milestone %q completed", def.Label),
		Context: map[string]any{
			"milestone_key": def.Key,
			"terminal":      s.catalog.IsTerminal(def.Key),
		},
	})
	if result.Assignment != nil {
		s.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventVendorAssigned,
			CustomerID: req.CustomerID,
			VendorID:   result.Assignment.VendorID.String(),
			Message:    fmt.Sprintf("Vendor assigned for %s", result.Assignment.JobRole),
			Context:    map[string]any{"job_role": string(result.Assignment.JobRole)},
		})
	}
	if result.Commission != nil {
		s.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventCommissionEarned,
			CustomerID: req.CustomerID,
			PartnerID:  result.Commission.PartnerID.String(),
			Message:    fmt.Sprintf("Installation commission of ₹%d recorded", result.Commission.CommissionAmount),
			Context: map[string]any{
				"source": string(result.Commission.Source),
				"amount": result.Commission.CommissionAmount,
			},
		})
	}
	if result.Incentive != nil && result.Incentive.Achieved {
		partnerID := ""
		if result.Commission != nil {
			partnerID = result.Commission.PartnerID.String()
		}
		s.dispatcher.Dispatch(notify.Event{
			Type:      notify.EventIncentiveAchieved,
			PartnerID: partnerID,
			Message:   fmt.Sprintf("Monthly incentive target achieved, bonus ₹%d awarded", result.Incentive.BonusAmount),
			Context:   map[string]any{"bonus_amount": result.Incentive.BonusAmount},
		})
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, errors.New("invalid_id")
	}
	return id, nil
}
