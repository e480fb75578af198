package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/pkg/apperr"
	"web-ui-optimizer/pkg/logg"
	"web-ui-optimizer/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	transportName   = "Transport"
	transportTracer = "service.transport"
)

// Client issues one HTTP request against the browser-automation service and
// normalizes failures into the apperr taxonomy. It never retries; retry
// policy belongs to the readiness checker.
type Client struct {
	baseURL    string
	logger     *zap.Logger
	tracer     trace.Tracer
	httpClient *http.Client
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewClient(params Params) *Client {
	return &Client{
		baseURL:    strings.TrimRight(params.Config.ServiceConfig.URL, "/"),
		logger:     params.Logger.With(zap.String(logg.Layer, transportName)),
		tracer:     otel.Tracer(transportTracer),
		httpClient: &http.Client{Timeout: params.Config.ServiceConfig.Timeout()},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Request(ctx context.Context, method, path string, body any) (raw json.RawMessage, err error) {
	const op = "Request"

	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Endpoint, path),
		zap.String(logg.RequestID, requestID))

	ctx, step := tracing.StartSpan(ctx, c.tracer, op,
		attribute.String("http.method", method),
		attribute.String("endpoint", path),
		attribute.String("request_id", requestID))
	defer func() {
		step.End(err)
	}()

	logger.Debug("Sending request to service")

	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason:   "marshal_failed",
				apperr.MetaStage:    apperr.StageTransport,
				apperr.MetaEndpoint: path,
			})
		}

		reqBody = bytes.NewBuffer(jsonData)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "request_create_failed",
			apperr.MetaStage:    apperr.StageTransport,
			apperr.MetaEndpoint: path,
		})
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	step.AddEvent("sending HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(op, path, err)
	}
	defer resp.Body.Close()

	step.AddEvent("reading response")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason:   "read_body_failed",
			apperr.MetaStage:    apperr.StageTransport,
			apperr.MetaEndpoint: path,
		})
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Debug("Service rejected request",
			zap.Int("status_code", resp.StatusCode))

		return nil, apperr.Wrap(op, apperr.CodeRemoteRejected,
			fmt.Errorf("service error (status %d): %s", resp.StatusCode, remoteMessage(respBody, resp.Status)),
			map[string]any{
				apperr.MetaReason:   "remote_rejected",
				apperr.MetaStage:    apperr.StageTransport,
				apperr.MetaEndpoint: path,
				apperr.MetaStatus:   resp.StatusCode,
			})
	}

	if !json.Valid(respBody) {
		return nil, apperr.Wrap(op, apperr.CodeInternal, fmt.Errorf("non-JSON response body"), map[string]any{
			apperr.MetaReason:   "invalid_json",
			apperr.MetaStage:    apperr.StageTransport,
			apperr.MetaEndpoint: path,
		})
	}

	step.AddEvent("request completed")

	return json.RawMessage(respBody), nil
}

// classify splits client-side request failures into the timeout and
// connection-unavailable branches of the taxonomy.
func (c *Client) classify(op, path string, err error) error {
	meta := map[string]any{
		apperr.MetaStage:    apperr.StageTransport,
		apperr.MetaEndpoint: path,
	}

	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		meta[apperr.MetaReason] = "request_timeout"

		return apperr.Wrap(op, apperr.CodeTimeout, err, meta)
	case errors.As(err, &netErr) && netErr.Timeout():
		meta[apperr.MetaReason] = "request_timeout"

		return apperr.Wrap(op, apperr.CodeTimeout, err, meta)
	default:
		meta[apperr.MetaReason] = "connection_failed"

		return apperr.Wrap(op, apperr.CodeConnectionUnavailable, err, meta)
	}
}

// remoteMessage prefers the service-supplied error field over the raw
// HTTP status line.
func remoteMessage(body []byte, status string) string {
	var payload struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	return status
}
