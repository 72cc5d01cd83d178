package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusAchieved Status = "achieved"
	StatusExpired  Status = "expired"
)

// IncentiveTarget is one partner's quota for one calendar month. Created
// lazily on the first qualifying installation of the period. The
// active->achieved transition happens exactly once and never reverts.
type IncentiveTarget struct {
	ID                    snowflake.ID                 `gorm:"primaryKey" json:"id"`
	PartnerID             snowflake.ID                 `gorm:"not null;index" json:"partner_id"`
	PartnerType           commissiondomain.PartnerType `gorm:"not null" json:"partner_type"`
	Month                 int                          `gorm:"not null" json:"month"`
	Year                  int                          `gorm:"not null" json:"year"`
	TargetInstallations   int                          `gorm:"not null" json:"target_installations"`
	TargetCapacityKw      float64                      `gorm:"not null" json:"target_capacity_kw"`
	AchievedInstallations int                          `gorm:"not null;default:0" json:"achieved_installations"`
	AchievedCapacityKw    float64                      `gorm:"not null;default:0" json:"achieved_capacity_kw"`
	BonusAmount           int64                        `gorm:"not null" json:"bonus_amount"`
	Status                Status                       `gorm:"not null;default:'active'" json:"status"`
	CreatedAt             time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (IncentiveTarget) TableName() string {
	return "incentive_targets"
}
