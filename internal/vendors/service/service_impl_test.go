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
	"github.com/suryashakti/partner-crm/internal/catalog"
	"github.com/suryashakti/partner-crm/internal/clock"
	"github.com/suryashakti/partner-crm/internal/vendors/domain"
	vendorrepo "github.com/suryashakti/partner-crm/internal/vendors/repository"
	vendorservice "github.com/suryashakti/partner-crm/internal/vendors/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupVendorTest(t *testing.T) (*gorm.DB, *snowflake.Node, domain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:vendor_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Vendor{}, &domain.VendorAssignment{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_vendor_assignments ON vendor_assignments(customer_id, job_role)`,
	).Error)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := vendorservice.New(vendorservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  vendorrepo.Provide(),
		Clock: clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
	return db, node, svc
}

func insertVendor(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, vendorType catalog.VendorGate, state string, status domain.VendorStatus) domain.Vendor {
	t.Helper()

	vendor := domain.Vendor{
		ID:         node.Generate(),
		Name:       name,
		VendorType: vendorType,
		State:      state,
		Status:     status,
	}
	require.NoError(t, db.Create(&vendor).Error)
	return vendor
}

func TestListCandidates_StateFirstStableOrder(t *testing.T) {
	db, node, svc := setupVendorTest(t)

	a := insertVendor(t, db, node, "A", catalog.GateDiscomNetMetering, "Bihar", domain.VendorApproved)
	b := insertVendor(t, db, node, "B", catalog.GateDiscomNetMetering, "Jharkhand", domain.VendorApproved)
	c := insertVendor(t, db, node, "C", catalog.GateDiscomNetMetering, "bihar", domain.VendorApproved)
	insertVendor(t, db, node, "D", catalog.GateDiscomNetMetering, "Bihar", domain.VendorPending)
	insertVendor(t, db, node, "E", catalog.GateBankLoanFacilitation, "Bihar", domain.VendorApproved)

	vendors, err := svc.ListCandidates(context.Background(), domain.ListCandidatesRequest{
		JobRole:       catalog.GateDiscomNetMetering,
		CustomerState: "Bihar",
	})
	require.NoError(t, err)
	require.Len(t, vendors, 3)

	// in-state first (case-insensitive), directory order preserved within groups
	assert.Equal(t, a.ID, vendors[0].ID)
	assert.Equal(t, c.ID, vendors[1].ID)
	assert.Equal(t, b.ID, vendors[2].ID)
}

func TestListCandidates_NoStateKeepsDirectoryOrder(t *testing.T) {
	db, node, svc := setupVendorTest(t)

	a := insertVendor(t, db, node, "A", catalog.GateBankLoanFacilitation, "Bihar", domain.VendorApproved)
	b := insertVendor(t, db, node, "B", catalog.GateBankLoanFacilitation, "Jharkhand", domain.VendorApproved)

	vendors, err := svc.ListCandidates(context.Background(), domain.ListCandidatesRequest{
		JobRole: catalog.GateBankLoanFacilitation,
	})
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, a.ID, vendors[0].ID)
	assert.Equal(t, b.ID, vendors[1].ID)
}

func TestListCandidates_RequiresJobRole(t *testing.T) {
	_, _, svc := setupVendorTest(t)

	_, err := svc.ListCandidates(context.Background(), domain.ListCandidatesRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidJobRole)
}

func TestAssign_CreatesAssignment(t *testing.T) {
	db, node, svc := setupVendorTest(t)
	vendor := insertVendor(t, db, node, "A", catalog.GateDiscomNetMetering, "Bihar", domain.VendorApproved)
	customerID := node.Generate()

	assignment, err := svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID:   customerID,
		VendorID:     vendor.ID,
		JobRole:      catalog.GateDiscomNetMetering,
		JourneyStage: "net_metering",
		Notes:        "first visit scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, assignment.VendorID)
	assert.Equal(t, "first visit scheduled", assignment.Notes)

	assignments, err := svc.ListAssignments(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
}

func TestAssign_SupersedesInPlace(t *testing.T) {
	db, node, svc := setupVendorTest(t)
	first := insertVendor(t, db, node, "A", catalog.GateDiscomNetMetering, "Bihar", domain.VendorApproved)
	second := insertVendor(t, db, node, "B", catalog.GateDiscomNetMetering, "Bihar", domain.VendorApproved)
	customerID := node.Generate()

	_, err := svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID: customerID,
		VendorID:   first.ID,
		JobRole:    catalog.GateDiscomNetMetering,
	})
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID: customerID,
		VendorID:   second.ID,
		JobRole:    catalog.GateDiscomNetMetering,
	})
	require.NoError(t, err)

	// one row per (customer, job role), pointing at the later vendor
	assignments, err := svc.ListAssignments(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, second.ID, assignments[0].VendorID)
}

func TestAssign_RejectsUnapprovedVendor(t *testing.T) {
	db, node, svc := setupVendorTest(t)
	vendor := insertVendor(t, db, node, "A", catalog.GateDiscomNetMetering, "Bihar", domain.VendorSuspended)

	_, err := svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID: node.Generate(),
		VendorID:   vendor.ID,
		JobRole:    catalog.GateDiscomNetMetering,
	})
	assert.ErrorIs(t, err, domain.ErrAssignmentFailed)
}

func TestAssign_RejectsTypeMismatch(t *testing.T) {
	db, node, svc := setupVendorTest(t)
	vendor := insertVendor(t, db, node, "A", catalog.GateBankLoanFacilitation, "Bihar", domain.VendorApproved)

	_, err := svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID: node.Generate(),
		VendorID:   vendor.ID,
		JobRole:    catalog.GateDiscomNetMetering,
	})
	assert.ErrorIs(t, err, domain.ErrAssignmentFailed)
}

func TestAssign_RejectsMissingVendor(t *testing.T) {
	_, node, svc := setupVendorTest(t)

	_, err := svc.Assign(context.Background(), domain.AssignRequest{
		CustomerID: node.Generate(),
		VendorID:   node.Generate(),
		JobRole:    catalog.GateDiscomNetMetering,
	})
	assert.ErrorIs(t, err, domain.ErrAssignmentFailed)
}
