package bootstrap

import (
	"context"

	"web-ui-optimizer/internal/console"
	"web-ui-optimizer/internal/ports"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func runConsole(lc fx.Lifecycle, consoleInterface *console.Interface, checker ports.ConnectionChecker, session ports.SessionClient, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting Web UI Optimizer console...")

			logger.Info("Waiting for browser-automation service...")

			snapshot, err := checker.WaitUntilReady(ctx, 0, -1)
			if err != nil {
				logger.Error("Service did not become ready", zap.Error(err))

				return err
			}

			logger.Info("Service is ready",
				zap.String("browser_version", snapshot.Browser.Version))

			go func() {
				if err := consoleInterface.Start(); err != nil {
					logger.Error("Console interface error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down Web UI Optimizer...")

			if err := consoleInterface.Stop(); err != nil {
				logger.Error("Failed to stop console", zap.Error(err))
			}

			if session.ContextID() != "" {
				if _, err := session.Close(ctx); err != nil {
					logger.Error("Failed to close browser context", zap.Error(err))
				}
			}

			return nil
		},
	})
}
