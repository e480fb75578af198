package bootstrap

import (
	"time"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/connection"
	"web-ui-optimizer/internal/console"
	"web-ui-optimizer/internal/ports"
	"web-ui-optimizer/internal/session"
	"web-ui-optimizer/internal/transport"
	"web-ui-optimizer/internal/usecase"

	"go.uber.org/fx"
)

func NewApp() *fx.App {
	return fx.New(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(transport.NewClient, fx.As(new(ports.Transport))),
			fx.Annotate(session.NewClient, fx.As(new(ports.SessionClient))),
			fx.Annotate(connection.NewChecker, fx.As(new(ports.ConnectionChecker))),

			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),

		fx.StartTimeout(2*time.Minute),
	)
}
