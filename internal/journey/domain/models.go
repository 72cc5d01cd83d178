package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// MilestoneRecord is one customer's progress against one catalog entry.
// Created pending at customer creation, completed at most once, never
// deleted. The ordinal index is denormalized from the catalog so the
// sequence invariant can be enforced in SQL.
type MilestoneRecord struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;index" json:"customer_id"`
	MilestoneKey  string       `gorm:"not null" json:"milestone_key"`
	OrdinalIndex  int          `gorm:"not null" json:"ordinal_index"`
	Status        Status       `gorm:"not null;default:'pending'" json:"status"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	UpdatedByRole string       `json:"updated_by_role,omitempty"`
	UpdatedByID   string       `json:"updated_by_id,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MilestoneRecord) TableName() string {
	return "milestone_records"
}

// MilestoneView joins a record with its catalog metadata.
type MilestoneView struct {
	MilestoneRecord
	Label       string             `json:"label"`
	Description string             `json:"description"`
	VendorGate  catalog.VendorGate `json:"vendor_gate,omitempty"`
	Terminal    bool               `json:"terminal"`
}
