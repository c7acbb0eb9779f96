package notify

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/wxgate/internal/notify/repository"
	"github.com/smallbiznis/wxgate/internal/notify/service"
)

var Module = fx.Module("notify.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
