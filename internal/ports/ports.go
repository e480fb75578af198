package ports

import (
	"context"
	"encoding/json"
	"time"

	"web-ui-optimizer/internal/entity"
)

type Transport interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
	BaseURL() string
}

type ConnectionChecker interface {
	WaitUntilReady(ctx context.Context, maxAttempts int, delay time.Duration) (*entity.HealthSnapshot, error)
	CheckHealth(ctx context.Context) (*entity.HealthSnapshot, error)
	ServiceInfo(ctx context.Context) (*entity.HealthSnapshot, error)
	Verify(ctx context.Context) (*entity.HealthSnapshot, error)
}

type SessionClient interface {
	HealthCheck(ctx context.Context) (*entity.HealthSnapshot, error)
	NewContext(ctx context.Context, options *entity.ContextOptions) (string, error)
	Navigate(ctx context.Context, url string, waitUntil entity.WaitUntil) (*entity.NavigateResult, error)
	Screenshot(ctx context.Context, path string, fullPage bool, imageType entity.ImageType) (*entity.ScreenshotResult, error)
	Evaluate(ctx context.Context, script string) (*entity.EvaluateResult, error)
	PDF(ctx context.Context, path string, format entity.PaperFormat, landscape bool) (*entity.PDFResult, error)
	AccessibilitySnapshot(ctx context.Context) (*entity.AccessibilityResult, error)
	Close(ctx context.Context) (*entity.CloseResult, error)
	WithSession(ctx context.Context, options *entity.ContextOptions, fn func(ctx context.Context) error) error
	ContextID() string
}
