package settings

import (
	"github.com/Kiranppatil21/glass/internal/settings/repository"
	"github.com/Kiranppatil21/glass/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
