package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
	"github.com/suryashakti/partner-crm/internal/clock"
	"github.com/suryashakti/partner-crm/internal/notify"
	obsmetrics "github.com/suryashakti/partner-crm/internal/observability/metrics"
	"github.com/suryashakti/partner-crm/internal/vendors/domain"
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
	Clock      clock.Clock
	Metrics    *obsmetrics.Metrics `optional:"true"`
	Dispatcher *notify.Dispatcher  `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	clock      clock.Clock
	metrics    *obsmetrics.Metrics
	dispatcher *notify.Dispatcher
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("vendor.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		clock:      p.Clock,
		metrics:    p.Metrics,
		dispatcher: p.Dispatcher,
	}
}

// AssignTx validates the vendor and creates or supersedes the assignment for
// (customer, job role) inside the caller's transaction. Every failure is
// wrapped in ErrAssignmentFailed so composite operations abort cleanly.
func (s *Service) AssignTx(ctx context.Context, tx *gorm.DB, req domain.AssignRequest) (domain.VendorAssignment, error) {
	if req.CustomerID == 0 {
		return domain.VendorAssignment{}, domain.ErrInvalidCustomer
	}
	if req.VendorID == 0 {
		return domain.VendorAssignment{}, domain.ErrInvalidVendor
	}
	if req.JobRole == catalog.GateNone {
		return domain.VendorAssignment{}, domain.ErrInvalidJobRole
	}

	vendor, err := s.repo.FindVendor(ctx, tx, req.VendorID)
	if err != nil {
		return domain.VendorAssignment{}, err
	}
	if vendor == nil {
		return domain.VendorAssignment{}, fmt.Errorf("%w: vendor %s not found", domain.ErrAssignmentFailed, req.VendorID)
	}
	if vendor.Status != domain.VendorApproved {
		return domain.VendorAssignment{}, fmt.Errorf("%w: vendor %s is %s", domain.ErrAssignmentFailed, req.VendorID, vendor.Status)
	}
	if vendor.VendorType != req.JobRole {
		return domain.VendorAssignment{}, fmt.Errorf("%w: vendor type %s does not match job role %s", domain.ErrAssignmentFailed, vendor.VendorType, req.JobRole)
	}

	now := s.clock.Now()
	assignment := domain.VendorAssignment{
		ID:           s.genID.Generate(),
		CustomerID:   req.CustomerID,
		VendorID:     req.VendorID,
		JobRole:      req.JobRole,
		JourneyStage: req.JourneyStage,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Upsert(ctx, tx, &assignment); err != nil {
		return domain.VendorAssignment{}, fmt.Errorf("%w: %v", domain.ErrAssignmentFailed, err)
	}

	if s.metrics != nil {
		s.metrics.VendorAssignments.Inc()
	}
	return assignment, nil
}

func (s *Service) Assign(ctx context.Context, req domain.AssignRequest) (domain.VendorAssignment, error) {
	var assignment domain.VendorAssignment
	err := pkgdb.Transact(ctx, s.db, func(tx *gorm.DB) error {
		var txErr error
		assignment, txErr = s.AssignTx(ctx, tx, req)
		return txErr
	})
	if err != nil {
		return domain.VendorAssignment{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(notify.Event{
			Type:       notify.EventVendorAssigned,
			CustomerID: req.CustomerID.String(),
			VendorID:   req.VendorID.String(),
			Message:    fmt.Sprintf("Vendor assigned for %s", req.JobRole),
			Context:    map[string]any{"job_role": string(req.JobRole)},
		})
	}
	return assignment, nil
}

// ListCandidates returns approved vendors of the matching type, with vendors
// in the customer's state first. The sort is stable: within each group the
// directory's native order is preserved.
func (s *Service) ListCandidates(ctx context.Context, req domain.ListCandidatesRequest) ([]domain.Vendor, error) {
	if req.JobRole == catalog.GateNone {
		return nil, domain.ErrInvalidJobRole
	}

	items, err := s.repo.ListApprovedByType(ctx, s.db, req.JobRole)
	if err != nil {
		return nil, err
	}

	vendors := make([]domain.Vendor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		vendors = append(vendors, *item)
	}

	state := strings.TrimSpace(req.CustomerState)
	if state != "" {
		sort.SliceStable(vendors, func(i, j int) bool {
			return matchesState(vendors[i], state) && !matchesState(vendors[j], state)
		})
	}
	return vendors, nil
}

func (s *Service) ListAssignments(ctx context.Context, customerID snowflake.ID) ([]domain.VendorAssignment, error) {
	if customerID == 0 {
		return nil, domain.ErrInvalidCustomer
	}

	items, err := s.repo.ListByCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}

	assignments := make([]domain.VendorAssignment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		assignments = append(assignments, *item)
	}
	return assignments, nil
}

func matchesState(vendor domain.Vendor, state string) bool {
	return strings.EqualFold(strings.TrimSpace(vendor.State), state)
}
