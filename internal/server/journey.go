package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
)

func (s *Server) GetJourney(c *gin.Context) {
	resp, err := s.journeySvc.GetJourney(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type completeMilestoneRequest struct {
	Notes    string `json:"notes"`
	VendorID string `json:"vendor_id"`
}

func (s *Server) CompleteMilestone(c *gin.Context) {
	var req completeMilestoneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.journeySvc.CompleteMilestone(c.Request.Context(), journeydomain.CompleteMilestoneRequest{
		CustomerID:   c.Param("id"),
		MilestoneKey: strings.TrimSpace(c.Param("key")),
		Notes:        strings.TrimSpace(req.Notes),
		VendorID:     strings.TrimSpace(req.VendorID),
		Actor:        actorFromContext(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalog.Entries()})
}
