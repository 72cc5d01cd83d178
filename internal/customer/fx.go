package customer

import (
	"github.com/suryashakti/partner-crm/internal/customer/repository"
	"github.com/suryashakti/partner-crm/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
