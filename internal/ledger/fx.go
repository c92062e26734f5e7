package ledger

import (
	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	"github.com/Kiranppatil21/glass/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(
		service.NewService,
		service.NewOutbox,
		func(o *service.Outbox) ledgerdomain.Recorder { return o },
	),
	fx.Invoke(service.RegisterHooks),
)
