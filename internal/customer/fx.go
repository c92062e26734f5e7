package customer

import (
	"github.com/Kiranppatil21/glass/internal/customer/repository"
	"github.com/Kiranppatil21/glass/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
