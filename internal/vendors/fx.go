package vendor

import (
	"github.com/suryashakti/partner-crm/internal/vendors/repository"
	"github.com/suryashakti/partner-crm/internal/vendors/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
