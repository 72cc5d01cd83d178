package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/suryashakti/partner-crm/internal/catalog"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
	"gorm.io/gorm"
)

// EnsureDemoVendors inserts a small approved vendor directory for local and
// demo environments. Idempotent: a non-empty vendors table is left alone.
func EnsureDemoVendors(conn *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := conn.Model(&vendordomain.Vendor{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	vendors := []vendordomain.Vendor{
		{Name: "Surya Net Metering Services", VendorType: catalog.GateDiscomNetMetering, State: "Bihar", Status: vendordomain.VendorApproved},
		{Name: "GridLink DISCOM Facilitators", VendorType: catalog.GateDiscomNetMetering, State: "Uttar Pradesh", Status: vendordomain.VendorApproved},
		{Name: "Patna Power Liaison", VendorType: catalog.GateDiscomNetMetering, State: "Bihar", Status: vendordomain.VendorApproved},
		{Name: "SolarFin Loan Desk", VendorType: catalog.GateBankLoanFacilitation, State: "Bihar", Status: vendordomain.VendorApproved},
		{Name: "GreenCredit Facilitation", VendorType: catalog.GateBankLoanFacilitation, State: "Jharkhand", Status: vendordomain.VendorApproved},
		{Name: "Awaiting Review Metering Co", VendorType: catalog.GateDiscomNetMetering, State: "Bihar", Status: vendordomain.VendorPending},
	}
	for i := range vendors {
		vendors[i].ID = node.Generate()
	}

	return conn.Create(&vendors).Error
}
