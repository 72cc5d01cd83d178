package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	customerdomain "github.com/suryashakti/partner-crm/internal/customer/domain"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	State              string  `json:"state"`
	PanelType          string  `json:"panel_type"`
	ProposedCapacityKw float64 `json:"proposed_capacity_kw"`
	DDPID              string  `json:"ddp_id"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:               strings.TrimSpace(req.Name),
		Phone:              strings.TrimSpace(req.Phone),
		State:              strings.TrimSpace(req.State),
		PanelType:          commissiondomain.PanelType(strings.TrimSpace(req.PanelType)),
		ProposedCapacityKw: req.ProposedCapacityKw,
		DDPID:              strings.TrimSpace(req.DDPID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		DDPID string `form:"ddp_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomersRequest{
		DDPID:     strings.TrimSpace(query.DDPID),
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
