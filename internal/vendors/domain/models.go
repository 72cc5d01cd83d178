package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
)

type VendorStatus string

const (
	VendorApproved  VendorStatus = "approved"
	VendorPending   VendorStatus = "pending"
	VendorSuspended VendorStatus = "suspended"
)

// Vendor is the external directory entry. This core reads vendors and never
// mutates them; CRUD lives with the wider CRM.
type Vendor struct {
	ID         snowflake.ID       `gorm:"primaryKey" json:"id"`
	Name       string             `gorm:"not null" json:"name"`
	VendorType catalog.VendorGate `gorm:"not null" json:"vendor_type"`
	State      string             `gorm:"not null" json:"state"`
	Status     VendorStatus       `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Vendor) TableName() string {
	return "vendors"
}

// VendorAssignment couples a customer to a third-party facilitator for one
// job role. At most one assignment per (customer, job role) is active;
// re-assignment supersedes in place.
type VendorAssignment struct {
	ID           snowflake.ID       `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID       `gorm:"not null;index" json:"customer_id"`
	VendorID     snowflake.ID       `gorm:"not null" json:"vendor_id"`
	JobRole      catalog.VendorGate `gorm:"not null" json:"job_role"`
	JourneyStage string             `gorm:"not null" json:"journey_stage"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (VendorAssignment) TableName() string {
	return "vendor_assignments"
}
