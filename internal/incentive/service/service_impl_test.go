package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suryashakti/partner-crm/internal/clock"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	commissionrepo "github.com/suryashakti/partner-crm/internal/commission/repository"
	commissionservice "github.com/suryashakti/partner-crm/internal/commission/service"
	"github.com/suryashakti/partner-crm/internal/config"
	"github.com/suryashakti/partner-crm/internal/incentive/domain"
	incentiverepo "github.com/suryashakti/partner-crm/internal/incentive/repository"
	incentiveservice "github.com/suryashakti/partner-crm/internal/incentive/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAggregatorTest(t *testing.T) (*gorm.DB, *snowflake.Node, *clock.FakeClock, domain.Aggregator) {
	t.Helper()

	dsn := fmt.Sprintf("file:incentive_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.IncentiveTarget{}, &commissiondomain.Commission{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_incentive_targets ON incentive_targets(partner_id, year, month)`,
	).Error)

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	rates := config.NewStaticRatesHolder(config.DefaultCommissionRates())
	log := zap.NewNop()

	ledger := commissionservice.New(commissionservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  commissionrepo.Provide(),
		Rates: rates,
		Clock: clk,
	})
	aggregator := incentiveservice.New(incentiveservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   incentiverepo.Provide(),
		Rates:  rates,
		Clock:  clk,
		Ledger: ledger,
	})
	return db, node, clk, aggregator
}

func apply(t *testing.T, db *gorm.DB, agg domain.Aggregator, partnerID snowflake.ID, capacityKw float64, at time.Time) domain.ApplyResult {
	t.Helper()

	result, err := agg.ApplyInstallationTx(context.Background(), db, partnerID, commissiondomain.PartnerDDP, capacityKw, at)
	require.NoError(t, err)
	return result
}

func TestApplyInstallation_CreatesTargetLazily(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	result := apply(t, db, agg, partnerID, 3, clk.Now())
	assert.Equal(t, 1, result.Target.AchievedInstallations)
	assert.InDelta(t, 3.0, result.Target.AchievedCapacityKw, 1e-9)
	assert.Equal(t, 5, result.Target.TargetInstallations)
	assert.InDelta(t, 15.0, result.Target.TargetCapacityKw, 1e-9)
	assert.Equal(t, int64(5000), result.Target.BonusAmount)
	assert.Equal(t, 2025, result.Target.Year)
	assert.Equal(t, 3, result.Target.Month)
	assert.Equal(t, domain.StatusActive, result.Target.Status)
	assert.False(t, result.Achieved)
}

func TestApplyInstallation_BonusOnBothThresholds(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	for i := 0; i < 4; i++ {
		result := apply(t, db, agg, partnerID, 3, clk.Now())
		assert.False(t, result.Achieved, "installation %d must not award yet", i+1)
	}

	// fifth installation hits 5 installations and 15 kW together
	result := apply(t, db, agg, partnerID, 3, clk.Now())
	assert.True(t, result.Achieved)
	require.NotNil(t, result.Bonus)
	assert.Equal(t, int64(5000), result.Bonus.CommissionAmount)
	assert.Equal(t, commissiondomain.SourceBonus, result.Bonus.Source)
	assert.Equal(t, domain.StatusAchieved, result.Target.Status)
}

func TestApplyInstallation_InstallationCountAloneIsNotEnough(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	// five 1 kW installations: count met, capacity 5 < 15
	var result domain.ApplyResult
	for i := 0; i < 5; i++ {
		result = apply(t, db, agg, partnerID, 1, clk.Now())
	}
	assert.False(t, result.Achieved)
	assert.Nil(t, result.Bonus)
	assert.Equal(t, domain.StatusActive, result.Target.Status)
}

func TestApplyInstallation_BonusIsAwardedAtMostOnce(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	for i := 0; i < 5; i++ {
		apply(t, db, agg, partnerID, 3, clk.Now())
	}

	// further installations keep counting but never re-award
	result := apply(t, db, agg, partnerID, 3, clk.Now())
	assert.False(t, result.Achieved)
	assert.Nil(t, result.Bonus)
	assert.Equal(t, 6, result.Target.AchievedInstallations)
	assert.Equal(t, domain.StatusAchieved, result.Target.Status)

	var bonuses int64
	require.NoError(t, db.Model(&commissiondomain.Commission{}).
		Where("partner_id = ? AND source = ?", partnerID, commissiondomain.SourceBonus).
		Count(&bonuses).Error)
	assert.Equal(t, int64(1), bonuses)
}

func TestInsertTarget_DuplicatePeriodIsAbsorbed(t *testing.T) {
	db, node, clk, _ := setupAggregatorTest(t)
	repo := incentiverepo.Provide()
	partnerID := node.Generate()

	now := clk.Now()
	makeTarget := func() *domain.IncentiveTarget {
		return &domain.IncentiveTarget{
			ID:                  node.Generate(),
			PartnerID:           partnerID,
			PartnerType:         commissiondomain.PartnerDDP,
			Month:               3,
			Year:                2025,
			TargetInstallations: 5,
			TargetCapacityKw:    15,
			BonusAmount:         5000,
			Status:              domain.StatusActive,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
	}

	created, err := repo.Insert(context.Background(), db, makeTarget())
	require.NoError(t, err)
	assert.True(t, created)

	// the lost period-creation race must not raise a constraint error, which
	// would abort an open postgres transaction
	created, err = repo.Insert(context.Background(), db, makeTarget())
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&domain.IncentiveTarget{}).
		Where("partner_id = ?", partnerID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyInstallation_NewMonthStartsFresh(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	for i := 0; i < 5; i++ {
		apply(t, db, agg, partnerID, 3, clk.Now())
	}

	april := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	result := apply(t, db, agg, partnerID, 3, april)
	assert.Equal(t, 4, result.Target.Month)
	assert.Equal(t, 1, result.Target.AchievedInstallations)
	assert.Equal(t, domain.StatusActive, result.Target.Status)
}

func TestCurrentTarget(t *testing.T) {
	db, node, clk, agg := setupAggregatorTest(t)
	partnerID := node.Generate()

	_, err := agg.CurrentTarget(context.Background(), domain.CurrentTargetRequest{
		PartnerID: partnerID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	apply(t, db, agg, partnerID, 3, clk.Now())

	target, err := agg.CurrentTarget(context.Background(), domain.CurrentTargetRequest{
		PartnerID: partnerID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, target.AchievedInstallations)

	_, err = agg.CurrentTarget(context.Background(), domain.CurrentTargetRequest{PartnerID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidPartner)
}
