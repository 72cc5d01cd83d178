package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/journey/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertAll seeds journey records with ON CONFLICT DO NOTHING on
// (customer_id, milestone_key): rows that already exist are skipped per-row
// instead of failing the batch, which keeps the surrounding postgres
// transaction usable on re-initialization.
func (r *repo) InsertAll(ctx context.Context, db *gorm.DB, records []*domain.MilestoneRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "milestone_key"}},
		DoNothing: true,
	}).Create(records).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, customerID snowflake.ID, milestoneKey string) (*domain.MilestoneRecord, error) {
	var record domain.MilestoneRecord
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM milestone_records
		 WHERE customer_id = ? AND milestone_key = ?`,
		customerID,
		milestoneKey,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) CountPendingBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, ordinalIndex int) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.MilestoneRecord{}).
		Where("customer_id = ? AND ordinal_index < ? AND status = ?", customerID, ordinalIndex, domain.StatusPending).
		Count(&count).Error
	return count, err
}

// Complete flips the record to completed iff it is still pending. The
// conditional WHERE serializes concurrent completions: exactly one caller
// sees rows affected = 1.
func (r *repo) Complete(ctx context.Context, db *gorm.DB, customerID snowflake.ID, milestoneKey string, completedAt time.Time, notes string, actor domain.Actor) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE milestone_records
		 SET status = ?, completed_at = ?, notes = ?, updated_by_role = ?, updated_by_id = ?, updated_at = ?
		 WHERE customer_id = ? AND milestone_key = ? AND status = ?`,
		domain.StatusCompleted,
		completedAt,
		notes,
		actor.Role,
		actor.ID,
		completedAt,
		customerID,
		milestoneKey,
		domain.StatusPending,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.MilestoneRecord, error) {
	var records []*domain.MilestoneRecord
	err := db.WithContext(ctx).
		Model(&domain.MilestoneRecord{}).
		Where("customer_id = ?", customerID).
		Order("ordinal_index asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
