package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/suryashakti/partner-crm/internal/catalog"
	vendordomain "github.com/suryashakti/partner-crm/internal/vendors/domain"
)

type assignVendorRequest struct {
	VendorID     string `json:"vendor_id"`
	JobRole      string `json:"job_role"`
	JourneyStage string `json:"journey_stage"`
	Notes        string `json:"notes"`
}

func (s *Server) AssignVendor(c *gin.Context) {
	var req assignVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil || customerID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	vendorID, err := snowflake.ParseString(strings.TrimSpace(req.VendorID))
	if err != nil || vendorID == 0 {
		AbortWithError(c, newValidationError("vendor_id", "invalid_vendor", "invalid vendor id"))
		return
	}

	resp, err := s.vendorSvc.Assign(c.Request.Context(), vendordomain.AssignRequest{
		CustomerID:   customerID,
		VendorID:     vendorID,
		JobRole:      catalog.VendorGate(strings.TrimSpace(req.JobRole)),
		JourneyStage: strings.TrimSpace(req.JourneyStage),
		Notes:        strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVendorAssignments(c *gin.Context) {
	customerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil || customerID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.vendorSvc.ListAssignments(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCandidateVendors(c *gin.Context) {
	var query struct {
		JobRole string `form:"job_role"`
		State   string `form:"state"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vendorSvc.ListCandidates(c.Request.Context(), vendordomain.ListCandidatesRequest{
		JobRole:       catalog.VendorGate(strings.TrimSpace(query.JobRole)),
		CustomerState: strings.TrimSpace(query.State),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
