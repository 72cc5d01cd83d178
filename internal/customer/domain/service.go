package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/suryashakti/partner-crm/internal/commission/domain"
	"github.com/suryashakti/partner-crm/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidState     = errors.New("invalid_state")
	ErrInvalidPanelType = errors.New("invalid_panel_type")
	ErrInvalidCapacity  = errors.New("invalid_capacity")
	ErrInvalidPartner   = errors.New("invalid_partner")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)

type CreateCustomerRequest struct {
	Name               string
	Phone              string
	State              string
	PanelType          commissiondomain.PanelType
	ProposedCapacityKw float64
	DDPID              string
}

type GetCustomerRequest struct {
	ID string
}

// ListCustomersRequest filters by owning partner when DDPID is set.
type ListCustomersRequest struct {
	DDPID     string
	PageToken string
	PageSize  int
}

type ListCustomersResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	List(context.Context, ListCustomersRequest) (ListCustomersResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, ddpID snowflake.ID, page pagination.Pagination) ([]*Customer, error)
}
