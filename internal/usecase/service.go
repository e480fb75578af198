package usecase

import (
	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/ports"
	"web-ui-optimizer/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Optimizer  adapters.OptimizerService
	Session    adapters.SessionService
	Connection adapters.ConnectionService
}

type Params struct {
	fx.In

	Logger     *zap.Logger
	Config     *config.Config
	Session    ports.SessionClient
	Connection ports.ConnectionChecker
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Optimizer:  factory.CreateOptimizerService(),
		Session:    factory.CreateSessionService(),
		Connection: factory.CreateConnectionService(),
	}
}
