package commission

import (
	"github.com/suryashakti/partner-crm/internal/commission/repository"
	"github.com/suryashakti/partner-crm/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.ledger",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
