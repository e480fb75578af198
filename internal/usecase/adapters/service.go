package adapters

import (
	"context"
	"time"

	"web-ui-optimizer/internal/entity"
)

type SessionService interface {
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

type ConnectionService interface {
	WaitUntilReady(ctx context.Context, maxAttempts int, delay time.Duration) (*entity.HealthSnapshot, error)
	CheckHealth(ctx context.Context) (*entity.HealthSnapshot, error)
	ServiceInfo(ctx context.Context) (*entity.HealthSnapshot, error)
	Verify(ctx context.Context) (*entity.HealthSnapshot, error)
}

type OptimizerService interface {
	CaptureResponsive(ctx context.Context, url string, viewports []entity.Viewport) ([]entity.ResponsiveShot, error)
	AnalyzeColors(ctx context.Context) ([]entity.ColorSample, error)
	CheckAccessibility(ctx context.Context) (*entity.AccessibilityReport, error)
	MeasurePerformance(ctx context.Context, url string) (*entity.PerformanceMetrics, error)
	CompareBeforeAfter(ctx context.Context, url, cssChanges string) (*entity.Comparison, error)
	ExtractText(ctx context.Context) (string, error)
}
