package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, commission *domain.Commission) error {
	return db.WithContext(ctx).Create(commission).Error
}

// InsertInstallation inserts with ON CONFLICT DO NOTHING against the partial
// installation index. A plain insert would raise the constraint violation and
// abort the surrounding postgres transaction; DO NOTHING keeps it usable so
// the caller can fetch the existing row. created is false on a duplicate.
func (r *repo) InsertInstallation(ctx context.Context, db *gorm.DB, commission *domain.Commission) (bool, error) {
	result := db.WithContext(ctx).Clauses(installationConflictClause(db)).Create(commission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func installationConflictClause(db *gorm.DB) clause.OnConflict {
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "partner_id"}, {Name: "customer_id"}},
		DoNothing: true,
	}
	// the index is partial, so the conflict target has to carry its predicate
	// on dialects that take a target (mysql rewrites this clause entirely)
	switch strings.ToLower(db.Dialector.Name()) {
	case "postgres", "sqlite":
		conflict.TargetWhere = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "source = 'installation'"},
		}}
	}
	return conflict
}

func (r *repo) FindInstallation(ctx context.Context, db *gorm.DB, partnerID, customerID snowflake.ID) (*domain.Commission, error) {
	var commission domain.Commission
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM commissions
		 WHERE partner_id = ? AND customer_id = ? AND source = ?`,
		partnerID,
		customerID,
		domain.SourceInstallation,
	).Scan(&commission).Error
	if err != nil {
		return nil, err
	}
	if commission.ID == 0 {
		return nil, nil
	}
	return &commission, nil
}

func (r *repo) ListByPartner(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, source domain.Source, page pagination.Pagination) ([]*domain.Commission, error) {
	var commissions []*domain.Commission
	stmt := db.WithContext(ctx).
		Model(&domain.Commission{}).
		Where("partner_id = ?", partnerID)
	if source != "" {
		stmt = stmt.Where("source = ?", source)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		cursorAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}
	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&commissions).Error
	if err != nil {
		return nil, err
	}
	return commissions, nil
}
