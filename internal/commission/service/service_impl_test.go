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
	"github.com/suryashakti/partner-crm/internal/commission/domain"
	commissionrepo "github.com/suryashakti/partner-crm/internal/commission/repository"
	commissionservice "github.com/suryashakti/partner-crm/internal/commission/service"
	"github.com/suryashakti/partner-crm/internal/config"
	pkgdb "github.com/suryashakti/partner-crm/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*gorm.DB, *snowflake.Node, *clock.FakeClock, domain.Ledger) {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Commission{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_commissions_installation ON commissions(partner_id, customer_id) WHERE source = 'installation'`,
	).Error)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	ledger := commissionservice.New(commissionservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  commissionrepo.Provide(),
		Rates: config.NewStaticRatesHolder(config.DefaultCommissionRates()),
		Clock: clk,
	})
	return db, node, clk, ledger
}

func TestRecordInstallation_CreatesOnce(t *testing.T) {
	db, node, _, ledger := setupLedgerTest(t)
	partnerID := node.Generate()
	customerID := node.Generate()

	req := domain.RecordInstallationRequest{
		CustomerID:  customerID,
		PartnerID:   partnerID,
		PartnerType: domain.PartnerDDP,
		PanelType:   domain.PanelDCR,
		CapacityKw:  3,
	}

	first, err := ledger.RecordInstallationTx(context.Background(), db, req)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, int64(9000), first.Commission.CommissionAmount)
	assert.Equal(t, domain.SourceInstallation, first.Commission.Source)
	assert.Equal(t, "dcr", first.Commission.Metadata["panel_type"])

	// duplicate is suppressed, the original row comes back
	second, err := ledger.RecordInstallationTx(context.Background(), db, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Commission.ID, second.Commission.ID)

	var count int64
	require.NoError(t, db.Model(&domain.Commission{}).
		Where("partner_id = ?", partnerID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordInstallation_DuplicateKeepsTransactionUsable(t *testing.T) {
	db, node, _, ledger := setupLedgerTest(t)
	partnerID := node.Generate()
	customerID := node.Generate()

	req := domain.RecordInstallationRequest{
		CustomerID:  customerID,
		PartnerID:   partnerID,
		PartnerType: domain.PartnerBDP,
		PanelType:   domain.PanelDCR,
		CapacityKw:  5,
	}

	// the duplicate must be absorbed without tripping the unique constraint,
	// so later statements in the same open transaction still succeed
	err := pkgdb.Transact(context.Background(), db, func(tx *gorm.DB) error {
		first, err := ledger.RecordInstallationTx(context.Background(), tx, req)
		require.NoError(t, err)
		require.True(t, first.Created)

		second, err := ledger.RecordInstallationTx(context.Background(), tx, req)
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Commission.ID, second.Commission.ID)

		var count int64
		return tx.Model(&domain.Commission{}).
			Where("partner_id = ?", partnerID).Count(&count).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Commission{}).
		Where("partner_id = ?", partnerID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordInstallation_DistinctCustomersEarnSeparately(t *testing.T) {
	db, node, _, ledger := setupLedgerTest(t)
	partnerID := node.Generate()

	for i := 0; i < 2; i++ {
		result, err := ledger.RecordInstallationTx(context.Background(), db, domain.RecordInstallationRequest{
			CustomerID:  node.Generate(),
			PartnerID:   partnerID,
			PartnerType: domain.PartnerDDP,
			PanelType:   domain.PanelNonDCR,
			CapacityKw:  5,
		})
		require.NoError(t, err)
		assert.True(t, result.Created)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Commission{}).
		Where("partner_id = ?", partnerID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRecordInstallation_Validation(t *testing.T) {
	db, node, _, ledger := setupLedgerTest(t)

	_, err := ledger.RecordInstallationTx(context.Background(), db, domain.RecordInstallationRequest{
		CustomerID:  node.Generate(),
		PartnerType: domain.PartnerDDP,
		PanelType:   domain.PanelDCR,
		CapacityKw:  3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPartner)

	_, err = ledger.RecordInstallationTx(context.Background(), db, domain.RecordInstallationRequest{
		CustomerID:  node.Generate(),
		PartnerID:   node.Generate(),
		PartnerType: domain.PartnerType("bad"),
		PanelType:   domain.PanelDCR,
		CapacityKw:  3,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPartnerType)
}

func TestRecordInverter_MultipliesUnits(t *testing.T) {
	_, node, _, ledger := setupLedgerTest(t)
	partnerID := node.Generate()

	commission, err := ledger.RecordInverter(context.Background(), partnerID, domain.PartnerBDP, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), commission.CommissionAmount)
	assert.Equal(t, domain.SourceInverter, commission.Source)

	// each sale event is its own row
	again, err := ledger.RecordInverter(context.Background(), partnerID, domain.PartnerBDP, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), again.CommissionAmount)
	assert.NotEqual(t, commission.ID, again.ID)
}

func TestRecordInverter_Validation(t *testing.T) {
	_, node, _, ledger := setupLedgerTest(t)

	_, err := ledger.RecordInverter(context.Background(), node.Generate(), domain.PartnerBDP, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidUnits)

	_, err = ledger.RecordInverter(context.Background(), 0, domain.PartnerBDP, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidPartner)
}

func TestRecordBonus_AppendsRow(t *testing.T) {
	db, node, _, ledger := setupLedgerTest(t)
	partnerID := node.Generate()

	commission, err := ledger.RecordBonusTx(context.Background(), db, partnerID, domain.PartnerDDP, 5000)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceBonus, commission.Source)
	assert.Equal(t, int64(5000), commission.CommissionAmount)

	_, err = ledger.RecordBonusTx(context.Background(), db, partnerID, domain.PartnerDDP, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListByPartner_FiltersAndPaginates(t *testing.T) {
	db, node, clk, ledger := setupLedgerTest(t)
	partnerID := node.Generate()

	for i := 0; i < 3; i++ {
		_, err := ledger.RecordInverter(context.Background(), partnerID, domain.PartnerDDP, 1)
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}
	_, err := ledger.RecordInstallationTx(context.Background(), db, domain.RecordInstallationRequest{
		CustomerID:  node.Generate(),
		PartnerID:   partnerID,
		PartnerType: domain.PartnerDDP,
		PanelType:   domain.PanelDCR,
		CapacityKw:  3,
	})
	require.NoError(t, err)

	all, err := ledger.ListByPartner(context.Background(), domain.ListByPartnerRequest{
		PartnerID: partnerID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, all.Commissions, 4)

	inverterOnly, err := ledger.ListByPartner(context.Background(), domain.ListByPartnerRequest{
		PartnerID: partnerID.String(),
		Source:    "inverter",
	})
	require.NoError(t, err)
	assert.Len(t, inverterOnly.Commissions, 3)

	firstPage, err := ledger.ListByPartner(context.Background(), domain.ListByPartnerRequest{
		PartnerID: partnerID.String(),
		PageSize:  2,
	})
	require.NoError(t, err)
	assert.Len(t, firstPage.Commissions, 2)
	assert.True(t, firstPage.HasMore)
	assert.NotEmpty(t, firstPage.NextPageToken)

	secondPage, err := ledger.ListByPartner(context.Background(), domain.ListByPartnerRequest{
		PartnerID: partnerID.String(),
		PageSize:  2,
		PageToken: firstPage.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, secondPage.Commissions, 2)
	assert.False(t, secondPage.HasMore)
}

func TestListByPartner_InvalidPartner(t *testing.T) {
	_, _, _, ledger := setupLedgerTest(t)

	_, err := ledger.ListByPartner(context.Background(), domain.ListByPartnerRequest{PartnerID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidPartner)
}
