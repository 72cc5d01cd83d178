package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrInvalidPartner     = errors.New("invalid_partner")
	ErrInvalidPartnerType = errors.New("invalid_partner_type")
	ErrInvalidPanelType   = errors.New("invalid_panel_type")
	ErrInvalidCapacity    = errors.New("invalid_capacity")
	ErrInvalidUnits       = errors.New("invalid_units")
	ErrInvalidAmount      = errors.New("invalid_amount")
)

type RecordInstallationRequest struct {
	CustomerID  snowflake.ID
	PartnerID   snowflake.ID
	PartnerType PartnerType
	PanelType   PanelType
	CapacityKw  float64
}

// InstallationResult reports whether the ledger row was created by this call
// or an earlier one; duplicates are suppressed, not errors.
type InstallationResult struct {
	Commission Commission
	Created    bool
}

type ListByPartnerRequest struct {
	PartnerID string
	Source    string
	PageToken string
	PageSize  int
}

type ListByPartnerResponse struct {
	pagination.PageInfo
	Commissions []Commission `json:"commissions"`
}

// Ledger creates commission records. RecordInstallationTx participates in the
// caller's transaction so milestone completion and commission creation commit
// together.
type Ledger interface {
	RecordInstallationTx(ctx context.Context, tx *gorm.DB, req RecordInstallationRequest) (InstallationResult, error)
	RecordInverter(ctx context.Context, partnerID snowflake.ID, partnerType PartnerType, unitsSold int) (Commission, error)
	RecordBonusTx(ctx context.Context, tx *gorm.DB, partnerID snowflake.ID, partnerType PartnerType, amount int64) (Commission, error)
	ListByPartner(ctx context.Context, req ListByPartnerRequest) (ListByPartnerResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, commission *Commission) error
	InsertInstallation(ctx context.Context, db *gorm.DB, commission *Commission) (created bool, err error)
	FindInstallation(ctx context.Context, db *gorm.DB, partnerID, customerID snowflake.ID) (*Commission, error)
	ListByPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, source Source, page pagination.Pagination) ([]*Commission, error)
}
