package usecase

import (
	"web-ui-optimizer/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateOptimizerService() adapters.OptimizerService {
	return NewOptimizer(OptimizerParams{
		Session: f.deps.Session,
		Config:  f.deps.Config,
		Logger:  f.deps.Logger,
	})
}

func (f *serviceFactory) CreateSessionService() adapters.SessionService {
	return f.deps.Session
}

func (f *serviceFactory) CreateConnectionService() adapters.ConnectionService {
	return f.deps.Connection
}
