package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	"gorm.io/gorm"
)

var (
	ErrInvalidPartner = errors.New("invalid_partner")
	ErrNotFound       = errors.New("not_found")
)

// ApplyResult reports the target state after one installation was rolled up.
type ApplyResult struct {
	Target IncentiveTarget
	// Achieved is true only for the call that flipped the period to
	// achieved; that call also carries the awarded bonus.
	Achieved bool
	Bonus    *commissiondomain.Commission
}

type CurrentTargetRequest struct {
	PartnerID string
}

// Aggregator rolls installations up into monthly targets and awards the
// period bonus at most once. ApplyInstallationTx participates in the caller's
// transaction so the increment and the bonus commit atomically with the
// triggering commission.
type Aggregator interface {
	ApplyInstallationTx(ctx context.Context, tx *gorm.DB, partnerID snowflake.ID, partnerType commissiondomain.PartnerType, capacityKw float64, at time.Time) (ApplyResult, error)
	CurrentTarget(ctx context.Context, req CurrentTargetRequest) (IncentiveTarget, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, target *IncentiveTarget) (created bool, err error)
	Find(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, year, month int) (*IncentiveTarget, error)
	IncrementAchieved(ctx context.Context, db *gorm.DB, id snowflake.ID, capacityKw float64, at time.Time) error
	MarkAchieved(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
}
