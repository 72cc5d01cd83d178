package journey

import (
	"github.com/suryashakti/partner-crm/internal/journey/repository"
	"github.com/suryashakti/partner-crm/internal/journey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("journey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
