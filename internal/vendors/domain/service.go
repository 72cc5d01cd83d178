package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
	"gorm.io/gorm"
)

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidVendor   = errors.New("invalid_vendor")
	ErrInvalidJobRole  = errors.New("invalid_job_role")
	ErrVendorNotFound  = errors.New("vendor_not_found")

	// ErrAssignmentFailed aborts any composite operation it occurs in; the
	// caller must leave no partial effect behind.
	ErrAssignmentFailed = errors.New("vendor_assignment_failed")
)

type AssignRequest struct {
	CustomerID   snowflake.ID
	VendorID     snowflake.ID
	JobRole      catalog.VendorGate
	JourneyStage string
	Notes        string
}

type ListCandidatesRequest struct {
	JobRole       catalog.VendorGate
	CustomerState string
}

// Service gates vendor assignment. AssignTx participates in the caller's
// transaction so a gated milestone completion and its assignment commit
// together.
type Service interface {
	AssignTx(ctx context.Context, tx *gorm.DB, req AssignRequest) (VendorAssignment, error)
	Assign(ctx context.Context, req AssignRequest) (VendorAssignment, error)
	ListCandidates(ctx context.Context, req ListCandidatesRequest) ([]Vendor, error)
	ListAssignments(ctx context.Context, customerID snowflake.ID) ([]VendorAssignment, error)
}

type Repository interface {
	FindVendor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vendor, error)
	ListApprovedByType(ctx context.Context, db *gorm.DB, vendorType catalog.VendorGate) ([]*Vendor, error)
	Upsert(ctx context.Context, db *gorm.DB, assignment *VendorAssignment) error
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*VendorAssignment, error)
}
