package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/incentive/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert uses ON CONFLICT DO NOTHING on (partner_id, year, month) so a lost
// period-creation race does not abort the caller's transaction; created is
// false when another session already made the period row.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, target *domain.IncentiveTarget) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partner_id"}, {Name: "year"}, {Name: "month"}},
		DoNothing: true,
	}).Create(target)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, year, month int) (*domain.IncentiveTarget, error) {
	var target domain.IncentiveTarget
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM incentive_targets
		 WHERE partner_id = ? AND year = ? AND month = ?`,
		partnerID,
		year,
		month,
	).Scan(&target).Error
	if err != nil {
		return nil, err
	}
	if target.ID == 0 {
		return nil, nil
	}
	return &target, nil
}

func (r *repo) IncrementAchieved(ctx context.Context, db *gorm.DB, id snowflake.ID, capacityKw float64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE incentive_targets
		 SET achieved_installations = achieved_installations + 1,
		     achieved_capacity_kw = achieved_capacity_kw + ?,
		     updated_at = ?
		 WHERE id = ?`,
		capacityKw,
		at,
		id,
	).Error
}

// MarkAchieved flips the period to achieved iff it is still active and both
// thresholds are met. The returned bool is true only for the winning update,
// which makes the bonus award race-free.
func (r *repo) MarkAchieved(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE incentive_targets
		 SET status = ?, updated_at = ?
		 WHERE id = ?
		   AND status = ?
		   AND achieved_installations >= target_installations
		   AND achieved_capacity_kw >= target_capacity_kw`,
		domain.StatusAchieved,
		at,
		id,
		domain.StatusActive,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
