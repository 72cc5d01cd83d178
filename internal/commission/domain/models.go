package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type PartnerType string

const (
	PartnerBDP PartnerType = "bdp"
	PartnerDDP PartnerType = "ddp"
)

func (t PartnerType) Valid() bool {
	return t == PartnerBDP || t == PartnerDDP
}

type PanelType string

const (
	PanelDCR    PanelType = "dcr"
	PanelNonDCR PanelType = "non_dcr"
)

func (t PanelType) Valid() bool {
	return t == PanelDCR || t == PanelNonDCR
}

type Source string

const (
	SourceInstallation Source = "installation"
	SourceInverter     Source = "inverter"
	SourceBonus        Source = "bonus"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// Commission is one earned payout line for a partner. Rows are only ever
// created pending here; approved/paid transitions belong to the payout
// subsystem.
type Commission struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	PartnerID        snowflake.ID      `gorm:"not null;index" json:"partner_id"`
	PartnerType      PartnerType       `gorm:"not null" json:"partner_type"`
	CustomerID       *snowflake.ID     `gorm:"index" json:"customer_id,omitempty"`
	Source           Source            `gorm:"not null" json:"source"`
	CapacityKw       float64           `gorm:"not null;default:0" json:"capacity_kw"`
	CommissionAmount int64             `gorm:"not null" json:"commission_amount"`
	Status           Status            `gorm:"not null;default:'pending'" json:"status"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Commission) TableName() string {
	return "commissions"
}
