package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/entity"
	"web-ui-optimizer/internal/ports"
	"web-ui-optimizer/pkg/apperr"
	"web-ui-optimizer/pkg/logg"
	"web-ui-optimizer/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	optimizerName   = "UIOptimizer"
	optimizerTracer = "usecase.optimizer"

	beforeFilename = "before.png"
	afterFilename  = "after.png"
)

// Optimizer composes session operations into fixed higher-level reports:
// responsive screenshots, color histograms, accessibility heuristics,
// performance metrics, and before/after comparisons. Strictly sequential;
// only one context is tracked at a time.
type Optimizer struct {
	config  *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	session ports.SessionClient
}

type OptimizerParams struct {
	Session ports.SessionClient
	Config  *config.Config
	Logger  *zap.Logger
}

func NewOptimizer(params OptimizerParams) *Optimizer {
	return &Optimizer{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, optimizerName)),
		tracer:  otel.Tracer(optimizerTracer),
		session: params.Session,
	}
}

// CaptureResponsive screenshots url once per viewport, recreating the
// context each time so the viewport is applied from a clean slate. A nil
// viewport list uses the default device set. Every viewport gets its own
// create/close cycle; the facade ends with no context held.
func (o *Optimizer) CaptureResponsive(ctx context.Context, url string, viewports []entity.Viewport) (shots []entity.ResponsiveShot, err error) {
	const op = "CaptureResponsive"

	runID := uuid.NewString()
	logger := o.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.URL, url),
		zap.String("run_id", runID))

	ctx, step := tracing.StartSpan(ctx, o.tracer, op,
		attribute.String("url", url),
		attribute.String("run_id", runID))
	defer func() {
		step.End(err)
	}()

	if len(viewports) == 0 {
		viewports = entity.DefaultViewports()
	}

	shots = make([]entity.ResponsiveShot, 0, len(viewports))

	for _, vp := range viewports {
		if o.session.ContextID() != "" {
			if _, closeErr := o.session.Close(ctx); closeErr != nil {
				logger.Warn("Failed to close previous context", zap.Error(closeErr))
			}
		}

		_, err = o.session.NewContext(ctx, &entity.ContextOptions{
			Viewport: &entity.Size{Width: vp.Width, Height: vp.Height},
		})
		if err != nil {
			return nil, err
		}

		if _, err = o.session.Navigate(ctx, url, entity.WaitUntilNetworkIdle); err != nil {
			return nil, err
		}

		filename := fmt.Sprintf("%s-%s.png", vp.Device, vp.Dimensions())

		result, shotErr := o.session.Screenshot(ctx, filename, o.config.OptimizerConfig.FullPage, entity.ImageTypePNG)
		if shotErr != nil {
			return nil, shotErr
		}

		shots = append(shots, entity.ResponsiveShot{
			Device:     vp.Device,
			Dimensions: vp.Dimensions(),
			Path:       result.Path,
			LocalPath:  filepath.Join(o.config.OptimizerConfig.OutputDir, filename),
		})

		step.AddEvent("viewport captured", attribute.String("device", vp.Device))
		logger.Info("Captured viewport",
			zap.String(logg.Device, vp.Device),
			zap.String("dimensions", vp.Dimensions()))
	}

	if o.session.ContextID() != "" {
		if _, closeErr := o.session.Close(ctx); closeErr != nil {
			logger.Warn("Failed to close final context", zap.Error(closeErr))
		}
	}

	return shots, nil
}

// AnalyzeColors builds an ordered color histogram of the current page via a
// single script evaluation. The script payload is opaque to this layer;
// only the result field is interpreted.
func (o *Optimizer) AnalyzeColors(ctx context.Context) (samples []entity.ColorSample, err error) {
	const op = "AnalyzeColors"

	ctx, step := tracing.StartSpan(ctx, o.tracer, op)
	defer func() {
		step.End(err)
	}()

	result, err := o.session.Evaluate(ctx, colorAnalysisScript())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(result.Result, &samples); err != nil {
		return nil, o.resultErr(op, err)
	}

	o.logger.Info("Color analysis completed",
		zap.String(logg.Operation, op),
		zap.Int("distinct_colors", len(samples)))

	return samples, nil
}

func (o *Optimizer) CheckAccessibility(ctx context.Context) (report *entity.AccessibilityReport, err error) {
	const op = "CheckAccessibility"

	ctx, step := tracing.StartSpan(ctx, o.tracer, op)
	defer func() {
		step.End(err)
	}()

	result, err := o.session.Evaluate(ctx, accessibilityChecksScript())
	if err != nil {
		return nil, err
	}

	report = &entity.AccessibilityReport{}

	if err := json.Unmarshal(result.Result, report); err != nil {
		return nil, o.resultErr(op, err)
	}

	o.logger.Info("Accessibility checks completed",
		zap.String(logg.Operation, op),
		zap.Int("images_without_alt", len(report.ImagesWithoutAlt)),
		zap.Int("missing_labels", len(report.MissingLabels)),
		zap.Int("links_without_text", len(report.LinksWithoutText)))

	return report, nil
}

// MeasurePerformance navigates to url and samples the page's navigation
// and paint timings.
func (o *Optimizer) MeasurePerformance(ctx context.Context, url string) (metrics *entity.PerformanceMetrics, err error) {
	const op = "MeasurePerformance"
	logger := o.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, o.tracer, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if _, err = o.session.Navigate(ctx, url, entity.WaitUntilNetworkIdle); err != nil {
		return nil, err
	}

	step.AddEvent("sampling timings")

	result, err := o.session.Evaluate(ctx, performanceScript())
	if err != nil {
		return nil, err
	}

	metrics = &entity.PerformanceMetrics{}

	if err := json.Unmarshal(result.Result, metrics); err != nil {
		return nil, o.resultErr(op, err)
	}

	logger.Info("Performance measured",
		zap.Float64("dom_interactive", metrics.DOMInteractive),
		zap.Float64("response_time", metrics.ResponseTime))

	return metrics, nil
}

// CompareBeforeAfter screenshots url, injects the given CSS, waits a fixed
// settle delay for styles to apply, and screenshots again.
func (o *Optimizer) CompareBeforeAfter(ctx context.Context, url, cssChanges string) (comparison *entity.Comparison, err error) {
	const op = "CompareBeforeAfter"
	logger := o.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, o.tracer, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if _, err = o.session.Navigate(ctx, url, entity.WaitUntilNetworkIdle); err != nil {
		return nil, err
	}

	before, err := o.session.Screenshot(ctx, beforeFilename, true, entity.ImageTypePNG)
	if err != nil {
		return nil, err
	}

	step.AddEvent("before captured")

	if _, err = o.session.Evaluate(ctx, injectStyleScript(cssChanges)); err != nil {
		return nil, err
	}

	if err = settle(ctx, o.config.OptimizerConfig.SettleDelay()); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "settle_cancelled",
			apperr.MetaStage:  apperr.StageAnalysis,
		})
	}

	after, err := o.session.Screenshot(ctx, afterFilename, true, entity.ImageTypePNG)
	if err != nil {
		return nil, err
	}

	step.AddEvent("after captured")
	logger.Info("Before/after comparison captured")

	return &entity.Comparison{
		Before:      before.Path,
		After:       after.Path,
		LocalBefore: filepath.Join(o.config.OptimizerConfig.OutputDir, beforeFilename),
		LocalAfter:  filepath.Join(o.config.OptimizerConfig.OutputDir, afterFilename),
	}, nil
}

// ExtractText returns the visible text content of the current page.
func (o *Optimizer) ExtractText(ctx context.Context) (text string, err error) {
	const op = "ExtractText"

	ctx, step := tracing.StartSpan(ctx, o.tracer, op)
	defer func() {
		step.End(err)
	}()

	result, err := o.session.Evaluate(ctx, extractTextScript())
	if err != nil {
		return "", err
	}

	if err := json.Unmarshal(result.Result, &text); err != nil {
		return "", o.resultErr(op, err)
	}

	return text, nil
}

func (o *Optimizer) resultErr(op string, err error) error {
	return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
		apperr.MetaReason: "result_decode_failed",
		apperr.MetaStage:  apperr.StageAnalysis,
	})
}

func settle(ctx context.Context, d time.Duration) error {
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
