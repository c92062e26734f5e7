package order

import (
	"github.com/Kiranppatil21/glass/internal/credit"
	"github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/Kiranppatil21/glass/internal/order/repository"
	"github.com/Kiranppatil21/glass/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(
		repository.Provide,
		func(r domain.Repository) credit.OutstandingQuerier { return r },
		service.NewService,
	),
)
