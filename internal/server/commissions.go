package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	incentivedomain "github.com/suryashakti/partner-crm/internal/incentive/domain"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
)

func (s *Server) ListPartnerCommissions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Source string `form:"source"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledger.ListByPartner(c.Request.Context(), commissiondomain.ListByPartnerRequest{
		PartnerID: c.Param("id"),
		Source:    strings.TrimSpace(query.Source),
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type recordInverterRequest struct {
	PartnerType string `json:"partner_type"`
	UnitsSold   int    `json:"units_sold"`
}

func (s *Server) RecordInverterCommission(c *gin.Context) {
	var req recordInverterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	partnerID, err := snowflake.ParseString(c.Param("id"))
	if err != nil || partnerID == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.ledger.RecordInverter(
		c.Request.Context(),
		partnerID,
		commissiondomain.PartnerType(strings.TrimSpace(req.PartnerType)),
		req.UnitsSold,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetIncentiveTarget(c *gin.Context) {
	resp, err := s.incentiveSvc.CurrentTarget(c.Request.Context(), incentivedomain.CurrentTargetRequest{
		PartnerID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
