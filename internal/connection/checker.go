package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/entity"
	"web-ui-optimizer/internal/ports"
	"web-ui-optimizer/pkg/apperr"
	"web-ui-optimizer/pkg/logg"
	"web-ui-optimizer/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	checkerName   = "ConnectionChecker"
	checkerTracer = "service.connection"

	healthEndpoint = "/health"
)

// Checker blocks callers until the service answers its health endpoint and
// carries the richer verification operations built on top of it.
type Checker struct {
	config    *config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
	transport ports.Transport
}

type Params struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Transport ports.Transport
}

func NewChecker(params Params) *Checker {
	return &Checker{
		config:    params.Config,
		logger:    params.Logger.With(zap.String(logg.Layer, checkerName)),
		tracer:    otel.Tracer(checkerTracer),
		transport: params.Transport,
	}
}

// CheckHealth performs a single health request; failures are whatever the
// transport raised, untouched.
func (c *Checker) CheckHealth(ctx context.Context) (snapshot *entity.HealthSnapshot, err error) {
	const op = "CheckHealth"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	raw, err := c.transport.Request(ctx, http.MethodGet, healthEndpoint, nil)
	if err != nil {
		return nil, err
	}

	snapshot = &entity.HealthSnapshot{}

	if err := json.Unmarshal(raw, snapshot); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "unmarshal_failed",
			apperr.MetaStage:  apperr.StageReadiness,
		})
	}

	logger.Debug("Health check completed", zap.String("status", snapshot.Status))

	return snapshot, nil
}

// WaitUntilReady polls the health endpoint until it answers or the attempt
// budget runs out. Readiness is transport-level only: any failure, including
// a non-2xx status, counts as "not yet ready". Zero maxAttempts and a
// negative delay fall back to the configured defaults.
func (c *Checker) WaitUntilReady(ctx context.Context, maxAttempts int, delay time.Duration) (snapshot *entity.HealthSnapshot, err error) {
	const op = "WaitUntilReady"
	logger := c.logger.With(zap.String(logg.Operation, op))

	if maxAttempts <= 0 {
		maxAttempts = c.config.ServiceConfig.ReadyAttempts
	}

	if delay < 0 {
		delay = c.config.ServiceConfig.ReadyInterval()
	}

	ctx, step := tracing.StartSpan(ctx, c.tracer, op,
		attribute.Int("max_attempts", maxAttempts))
	defer func() {
		step.End(err)
	}()

	logger.Info("Waiting for service to become ready",
		zap.String(logg.Endpoint, c.transport.BaseURL()),
		zap.Int("max_attempts", maxAttempts))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, reqErr := c.transport.Request(ctx, http.MethodGet, healthEndpoint, nil)
		if reqErr == nil {
			snapshot = &entity.HealthSnapshot{}

			if err := json.Unmarshal(raw, snapshot); err != nil {
				return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
					apperr.MetaReason: "unmarshal_failed",
					apperr.MetaStage:  apperr.StageReadiness,
				})
			}

			step.AddEvent("service ready", attribute.Int("attempt", attempt))
			logger.Info("Service is ready",
				zap.Int(logg.Attempt, attempt),
				zap.String("browser_version", snapshot.Browser.Version))

			return snapshot, nil
		}

		logger.Debug("Service not ready yet",
			zap.Int(logg.Attempt, attempt),
			zap.Error(reqErr))

		if attempt < maxAttempts {
			if err := sleepContext(ctx, delay); err != nil {
				return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
					apperr.MetaReason: "wait_cancelled",
					apperr.MetaStage:  apperr.StageReadiness,
				})
			}
		}
	}

	return nil, apperr.Wrap(op, apperr.CodeServiceUnavailable,
		fmt.Errorf("service not available at %s after %d attempts", c.transport.BaseURL(), maxAttempts),
		map[string]any{
			apperr.MetaReason:   "attempts_exhausted",
			apperr.MetaStage:    apperr.StageReadiness,
			apperr.MetaEndpoint: c.transport.BaseURL(),
			apperr.MetaAttempts: maxAttempts,
		})
}

// ServiceInfo returns the health snapshot annotated with the endpoint it
// was fetched from.
func (c *Checker) ServiceInfo(ctx context.Context) (*entity.HealthSnapshot, error) {
	snapshot, err := c.CheckHealth(ctx)
	if err != nil {
		return nil, err
	}

	snapshot.ServiceURL = c.transport.BaseURL()

	return snapshot, nil
}

// Verify goes beyond reachability: the body status must be healthy. A
// stopped browser is reported as a warning only, since the service can
// still answer and recover on its own.
func (c *Checker) Verify(ctx context.Context) (snapshot *entity.HealthSnapshot, err error) {
	const op = "Verify"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	snapshot, err = c.CheckHealth(ctx)
	if err != nil {
		return nil, err
	}

	step.AddEvent("service reachable")

	if snapshot.Status != entity.StatusHealthy {
		return nil, apperr.Wrap(op, apperr.CodeServiceUnavailable,
			fmt.Errorf("service reports unhealthy status: %s", snapshot.Status),
			map[string]any{
				apperr.MetaReason:   "unhealthy_status",
				apperr.MetaStage:    apperr.StageReadiness,
				apperr.MetaEndpoint: c.transport.BaseURL(),
			})
	}

	if !snapshot.Browser.Running {
		logger.Warn("Browser is not running on the service")
	}

	logger.Info("Connection verified",
		zap.String("browser_version", snapshot.Browser.Version),
		zap.Float64("uptime", snapshot.Uptime),
		zap.Int("contexts", snapshot.Browser.Contexts))

	return snapshot, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
