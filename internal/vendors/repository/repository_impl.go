package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
	"github.com/suryashakti/partner-crm/internal/vendors/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindVendor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM vendors WHERE id = ?`,
		id,
	).Scan(&vendor).Error
	if err != nil {
		return nil, err
	}
	if vendor.ID == 0 {
		return nil, nil
	}
	return &vendor, nil
}

// ListApprovedByType preserves the directory's native order (insertion
// order); the service layers state preference on top with a stable sort.
func (r *repo) ListApprovedByType(ctx context.Context, db *gorm.DB, vendorType catalog.VendorGate) ([]*domain.Vendor, error) {
	var vendors []*domain.Vendor
	err := db.WithContext(ctx).
		Model(&domain.Vendor{}).
		Where("vendor_type = ? AND status = ?", vendorType, domain.VendorApproved).
		Order("created_at asc, id asc").
		Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

// Upsert keys on (customer_id, job_role): re-assignment supersedes the
// existing row instead of adding one.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, assignment *domain.VendorAssignment) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "job_role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"vendor_id", "journey_stage", "notes", "updated_at",
		}),
	}).Create(assignment).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.VendorAssignment, error) {
	var assignments []*domain.VendorAssignment
	err := db.WithContext(ctx).
		Model(&domain.VendorAssignment{}).
		Where("customer_id = ?", customerID).
		Order("created_at asc, id asc").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
