package incentive

import (
	"github.com/suryashakti/partner-crm/internal/incentive/repository"
	"github.com/suryashakti/partner-crm/internal/incentive/service"
	"go.uber.org/fx"
)

var Module = fx.Module("incentive.aggregator",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
