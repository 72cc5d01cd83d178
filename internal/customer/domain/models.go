package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
)

// PipelineStatus is the coarse, operator-driven lifecycle. It is a separate
// state machine from the milestone journey and neither advances the other.
type PipelineStatus string

const (
	PipelinePending               PipelineStatus = "pending"
	PipelineVerified              PipelineStatus = "verified"
	PipelineApproved              PipelineStatus = "approved"
	PipelineInstallationScheduled PipelineStatus = "installation_scheduled"
	PipelineCompleted             PipelineStatus = "completed"
)

// Customer is the slice of the external customer aggregate this core reads:
// panel classification, proposed capacity, state, and the owning partner.
type Customer struct {
	ID                 snowflake.ID               `gorm:"primaryKey" json:"id"`
	Name               string                     `gorm:"not null" json:"name"`
	Phone              string                     `json:"phone,omitempty"`
	State              string                     `gorm:"not null" json:"state"`
	PanelType          commissiondomain.PanelType `gorm:"not null" json:"panel_type"`
	ProposedCapacityKw float64                    `gorm:"not null" json:"proposed_capacity_kw"`
	DDPID              snowflake.ID               `gorm:"not null;index" json:"ddp_id"`
	PipelineStatus     PipelineStatus             `gorm:"not null;default:'pending'" json:"pipeline_status"`
	CreatedAt          time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
