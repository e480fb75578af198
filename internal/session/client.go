package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

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
	sessionClientName = "SessionClient"
	sessionTracer     = "service.session"
)

// Client owns at most one remote browser context and proxies the
// context-scoped operations of the service. It is not safe for concurrent
// use from multiple goroutines; drive it from one goroutine or add external
// locking.
type Client struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	transport ports.Transport
	contextID string
}

type Params struct {
	fx.In

	Logger    *zap.Logger
	Transport ports.Transport
}

func NewClient(params Params) *Client {
	return &Client{
		logger:    params.Logger.With(zap.String(logg.Layer, sessionClientName)),
		tracer:    otel.Tracer(sessionTracer),
		transport: params.Transport,
	}
}

type newContextRequest struct {
	Options *entity.ContextOptions `json:"options"`
}

type navigateRequest struct {
	ContextID string           `json:"contextId"`
	URL       string           `json:"url"`
	WaitUntil entity.WaitUntil `json:"waitUntil"`
}

type screenshotRequest struct {
	ContextID string           `json:"contextId"`
	Path      string           `json:"path"`
	FullPage  bool             `json:"fullPage"`
	Type      entity.ImageType `json:"type"`
}

type evaluateRequest struct {
	ContextID string `json:"contextId"`
	Script    string `json:"script"`
}

type pdfRequest struct {
	ContextID string             `json:"contextId"`
	Path      string             `json:"path"`
	Format    entity.PaperFormat `json:"format"`
	Landscape bool               `json:"landscape"`
}

type accessibilityRequest struct {
	ContextID string `json:"contextId"`
}

// ContextID returns the active handle, or "" when no context is open.
func (c *Client) ContextID() string {
	return c.contextID
}

func (c *Client) HealthCheck(ctx context.Context) (snapshot *entity.HealthSnapshot, err error) {
	const op = "HealthCheck"

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	raw, err := c.transport.Request(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	snapshot = &entity.HealthSnapshot{}

	if err := json.Unmarshal(raw, snapshot); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	return snapshot, nil
}

// NewContext creates a fresh isolated browsing context and stores its
// handle. An already-active context is closed first rather than leaked on
// the service; a failed close is logged and creation proceeds.
func (c *Client) NewContext(ctx context.Context, options *entity.ContextOptions) (contextID string, err error) {
	const op = "NewContext"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	if c.contextID != "" {
		logger.Warn("Context already active, closing it before creating a new one",
			zap.String(logg.ContextID, c.contextID))

		if _, closeErr := c.Close(ctx); closeErr != nil {
			logger.Warn("Failed to close previous context", zap.Error(closeErr))
		}
	}

	if options == nil {
		options = &entity.ContextOptions{}
	}

	step.AddEvent("creating context")

	raw, err := c.transport.Request(ctx, http.MethodPost, "/browser/new", newContextRequest{Options: options})
	if err != nil {
		return "", err
	}

	var resp struct {
		ContextID string `json:"contextId"`
	}

	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", c.unmarshalErr(op, err)
	}

	if resp.ContextID == "" {
		return "", apperr.Wrap(op, apperr.CodeInternal, fmt.Errorf("service returned empty context id"), map[string]any{
			apperr.MetaReason: "empty_context_id",
			apperr.MetaStage:  apperr.StageSession,
		})
	}

	c.contextID = resp.ContextID
	logger.Info("Browser context created", zap.String(logg.ContextID, c.contextID))

	return c.contextID, nil
}

func (c *Client) Navigate(ctx context.Context, url string, waitUntil entity.WaitUntil) (result *entity.NavigateResult, err error) {
	const op = "Navigate"
	logger := c.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	if waitUntil == "" {
		waitUntil = entity.WaitUntilNetworkIdle
	}

	raw, err := c.transport.Request(ctx, http.MethodPost, "/navigate", navigateRequest{
		ContextID: c.contextID,
		URL:       url,
		WaitUntil: waitUntil,
	})
	if err != nil {
		return nil, err
	}

	result = &entity.NavigateResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	logger.Debug("Navigation completed", zap.String("title", result.Title))

	return result, nil
}

// Screenshot captures the current page. The path is a remote filename; the
// service decides where artifacts are stored.
func (c *Client) Screenshot(ctx context.Context, path string, fullPage bool, imageType entity.ImageType) (result *entity.ScreenshotResult, err error) {
	const op = "Screenshot"

	ctx, step := tracing.StartSpan(ctx, c.tracer, op,
		attribute.String("path", path),
		attribute.Bool("full_page", fullPage))
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	if imageType == "" {
		imageType = entity.ImageTypePNG
	}

	raw, err := c.transport.Request(ctx, http.MethodPost, "/screenshot", screenshotRequest{
		ContextID: c.contextID,
		Path:      path,
		FullPage:  fullPage,
		Type:      imageType,
	})
	if err != nil {
		return nil, err
	}

	result = &entity.ScreenshotResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	return result, nil
}

// Evaluate runs an opaque script in the page; the result is passed through
// untyped.
func (c *Client) Evaluate(ctx context.Context, script string) (result *entity.EvaluateResult, err error) {
	const op = "Evaluate"

	ctx, step := tracing.StartSpan(ctx, c.tracer, op,
		attribute.Int("script_length", len(script)))
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	raw, err := c.transport.Request(ctx, http.MethodPost, "/evaluate", evaluateRequest{
		ContextID: c.contextID,
		Script:    script,
	})
	if err != nil {
		return nil, err
	}

	result = &entity.EvaluateResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	return result, nil
}

func (c *Client) PDF(ctx context.Context, path string, format entity.PaperFormat, landscape bool) (result *entity.PDFResult, err error) {
	const op = "PDF"

	ctx, step := tracing.StartSpan(ctx, c.tracer, op, attribute.String("path", path))
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	if format == "" {
		format = entity.PaperFormatA4
	}

	raw, err := c.transport.Request(ctx, http.MethodPost, "/pdf", pdfRequest{
		ContextID: c.contextID,
		Path:      path,
		Format:    format,
		Landscape: landscape,
	})
	if err != nil {
		return nil, err
	}

	result = &entity.PDFResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	return result, nil
}

func (c *Client) AccessibilitySnapshot(ctx context.Context) (result *entity.AccessibilityResult, err error) {
	const op = "AccessibilitySnapshot"

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	raw, err := c.transport.Request(ctx, http.MethodPost, "/accessibility", accessibilityRequest{
		ContextID: c.contextID,
	})
	if err != nil {
		return nil, err
	}

	result = &entity.AccessibilityResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	return result, nil
}

// Close releases the active context. The local handle is cleared no matter
// how the remote call goes, so closing is always locally idempotent-safe.
func (c *Client) Close(ctx context.Context) (result *entity.CloseResult, err error) {
	const op = "Close"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op)
	defer func() {
		step.End(err)
	}()

	if err := c.requireContext(op); err != nil {
		return nil, err
	}

	contextID := c.contextID
	defer func() {
		c.contextID = ""
	}()

	raw, err := c.transport.Request(ctx, http.MethodPost, "/browser/"+contextID+"/close", nil)
	if err != nil {
		return nil, err
	}

	result = &entity.CloseResult{}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, c.unmarshalErr(op, err)
	}

	logger.Info("Browser context closed", zap.String(logg.ContextID, contextID))

	return result, nil
}

// WithSession runs fn inside a freshly created context and always attempts
// to close it on the way out. A cleanup failure is logged, never
// propagated, so it cannot mask fn's error or abort unwinding.
func (c *Client) WithSession(ctx context.Context, options *entity.ContextOptions, fn func(ctx context.Context) error) error {
	if _, err := c.NewContext(ctx, options); err != nil {
		return err
	}

	defer func() {
		if c.contextID == "" {
			return
		}

		if _, closeErr := c.Close(ctx); closeErr != nil {
			c.logger.Warn("Failed to close context during cleanup", zap.Error(closeErr))
		}
	}()

	return fn(ctx)
}

func (c *Client) requireContext(op string) error {
	if c.contextID == "" {
		return apperr.Wrap(op, apperr.CodeNoActiveContext,
			fmt.Errorf("no active context, call NewContext first"),
			map[string]any{
				apperr.MetaReason: "no_active_context",
				apperr.MetaStage:  apperr.StageSession,
			})
	}

	return nil
}

func (c *Client) unmarshalErr(op string, err error) error {
	return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
		apperr.MetaReason: "unmarshal_failed",
		apperr.MetaStage:  apperr.StageSession,
	})
}
