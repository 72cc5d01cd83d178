package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrNotFound        = errors.New("milestone_not_found")

	// ErrAlreadyCompleted: completed records are immutable; a repeat
	// completion (or the loser of a concurrent race) gets this.
	ErrAlreadyCompleted = errors.New("milestone_already_completed")

	// ErrOutOfOrder: an earlier milestone is still pending.
	ErrOutOfOrder = errors.New("milestone_out_of_order")
)

// Actor identifies who performed an operator action, for audit only.
type Actor struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

type CompleteMilestoneRequest struct {
	CustomerID   string
	MilestoneKey string
	Notes        string
	// VendorID gates the completion: when set on a vendor-gated milestone
	// the assignment and the completion commit in one transaction.
	VendorID string
	Actor    Actor
}

type CompleteMilestoneResult struct {
	Record     MilestoneView                  `json:"record"`
	Assignment *vendordomain.VendorAssignment `json:"assignment,omitempty"`
	Commission *commissiondomain.Commission   `json:"commission,omitempty"`
	Incentive  *CompletedIncentive            `json:"incentive,omitempty"`
}

type CompletedIncentive struct {
	Achieved    bool  `json:"achieved"`
	BonusAmount int64 `json:"bonus_amount,omitempty"`
}

type Service interface {
	// InitializeJourneyTx seeds one pending record per catalog entry inside
	// the caller's transaction. Idempotent: re-invocation is a no-op.
	InitializeJourneyTx(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) error

	CompleteMilestone(ctx context.Context, req CompleteMilestoneRequest) (CompleteMilestoneResult, error)
	GetJourney(ctx context.Context, customerID string) ([]MilestoneView, error)
}

type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, records []*MilestoneRecord) error
	Find(ctx context.Context, db *gorm.DB, customerID snowflake.ID, milestoneKey string) (*MilestoneRecord, error)
	CountPendingBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, ordinalIndex int) (int64, error)
	Complete(ctx context.Context, db *gorm.DB, customerID snowflake.ID, milestoneKey string, completedAt time.Time, notes string, actor Actor) (int64, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*MilestoneRecord, error)
}
