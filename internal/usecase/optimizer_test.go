package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/entity"

	"go.uber.org/zap"
)

// fakeSession records the operation sequence the facade drives and answers
// evaluate calls from a scripted result queue.
type fakeSession struct {
	ops         []string
	contextID   string
	nextID      int
	options     []*entity.ContextOptions
	evalScripts []string
	evalResults []string
}

func (f *fakeSession) HealthCheck(context.Context) (*entity.HealthSnapshot, error) {
	f.ops = append(f.ops, "health")

	return &entity.HealthSnapshot{Status: "healthy"}, nil
}

func (f *fakeSession) NewContext(_ context.Context, options *entity.ContextOptions) (string, error) {
	f.nextID++
	f.contextID = fmt.Sprintf("ctx-%d", f.nextID)
	f.ops = append(f.ops, "new")
	f.options = append(f.options, options)

	return f.contextID, nil
}

func (f *fakeSession) Navigate(_ context.Context, url string, _ entity.WaitUntil) (*entity.NavigateResult, error) {
	f.ops = append(f.ops, "navigate:"+url)

	return &entity.NavigateResult{Status: "success", URL: url, Title: "Example"}, nil
}

func (f *fakeSession) Screenshot(_ context.Context, path string, _ bool, _ entity.ImageType) (*entity.ScreenshotResult, error) {
	f.ops = append(f.ops, "screenshot:"+path)

	return &entity.ScreenshotResult{
		Status:   "success",
		Path:     "/artifacts/screenshots/" + path,
		Filename: path,
	}, nil
}

func (f *fakeSession) Evaluate(_ context.Context, script string) (*entity.EvaluateResult, error) {
	f.ops = append(f.ops, "evaluate")
	f.evalScripts = append(f.evalScripts, script)

	result := "null"
	if len(f.evalResults) > 0 {
		result = f.evalResults[0]
		f.evalResults = f.evalResults[1:]
	}

	return &entity.EvaluateResult{Status: "success", Result: json.RawMessage(result)}, nil
}

func (f *fakeSession) PDF(_ context.Context, path string, _ entity.PaperFormat, _ bool) (*entity.PDFResult, error) {
	f.ops = append(f.ops, "pdf:"+path)

	return &entity.PDFResult{Status: "success", Path: "/artifacts/pdfs/" + path}, nil
}

func (f *fakeSession) AccessibilitySnapshot(context.Context) (*entity.AccessibilityResult, error) {
	f.ops = append(f.ops, "accessibility")

	return &entity.AccessibilityResult{Status: "success"}, nil
}

func (f *fakeSession) Close(context.Context) (*entity.CloseResult, error) {
	closed := f.contextID
	f.contextID = ""
	f.ops = append(f.ops, "close")

	return &entity.CloseResult{Status: "closed", ContextID: closed}, nil
}

func (f *fakeSession) WithSession(ctx context.Context, options *entity.ContextOptions, fn func(ctx context.Context) error) error {
	if _, err := f.NewContext(ctx, options); err != nil {
		return err
	}
	defer f.Close(ctx)

	return fn(ctx)
}

func (f *fakeSession) ContextID() string {
	return f.contextID
}

func (f *fakeSession) countOps(prefix string) int {
	count := 0

	for _, op := range f.ops {
		if strings.HasPrefix(op, prefix) {
			count++
		}
	}

	return count
}

func testOptimizer(fake *fakeSession) *Optimizer {
	return NewOptimizer(OptimizerParams{
		Session: fake,
		Config: &config.Config{
			AppConfig:     &config.AppConfig{},
			ServiceConfig: &config.ServiceConfig{URL: "http://playwright:3000"},
			OptimizerConfig: &config.OptimizerConfig{
				OutputDir:     "./screenshots",
				SettleDelayMs: 0,
				FullPage:      true,
			},
		},
		Logger: zap.NewNop(),
	})
}

func TestOptimizer_CaptureResponsive(t *testing.T) {
	fake := &fakeSession{}
	optimizer := testOptimizer(fake)

	viewports := []entity.Viewport{
		{Width: 375, Height: 667, Device: "phone"},
		{Width: 1920, Height: 1080, Device: "desktop"},
	}

	shots, err := optimizer.CaptureResponsive(context.Background(), "https://example.com", viewports)
	if err != nil {
		t.Fatalf("CaptureResponsive failed: %v", err)
	}

	if len(shots) != 2 {
		t.Fatalf("shots = %d, want 2", len(shots))
	}

	// One create/close cycle per viewport, nothing left open.
	if got := fake.countOps("new"); got != 2 {
		t.Errorf("context creates = %d, want 2", got)
	}

	if got := fake.countOps("close"); got != 2 {
		t.Errorf("context closes = %d, want 2", got)
	}

	if fake.ContextID() != "" {
		t.Errorf("context still open after capture: %q", fake.ContextID())
	}

	wantDimensions := []string{"375x667", "1920x1080"}
	wantDevices := []string{"phone", "desktop"}

	for i, shot := range shots {
		if shot.Dimensions != wantDimensions[i] {
			t.Errorf("shot %d dimensions = %q, want %q", i, shot.Dimensions, wantDimensions[i])
		}

		if shot.Device != wantDevices[i] {
			t.Errorf("shot %d device = %q, want %q", i, shot.Device, wantDevices[i])
		}
	}

	if shots[0].Path != "/artifacts/screenshots/phone-375x667.png" {
		t.Errorf("shot path = %q", shots[0].Path)
	}

	// The viewport options must flow into context creation verbatim.
	if fake.options[0] == nil || fake.options[0].Viewport == nil {
		t.Fatal("first context created without viewport options")
	}

	if fake.options[0].Viewport.Width != 375 || fake.options[0].Viewport.Height != 667 {
		t.Errorf("first viewport = %dx%d, want 375x667",
			fake.options[0].Viewport.Width, fake.options[0].Viewport.Height)
	}
}

func TestOptimizer_CaptureResponsive_DefaultViewports(t *testing.T) {
	fake := &fakeSession{}
	optimizer := testOptimizer(fake)

	shots, err := optimizer.CaptureResponsive(context.Background(), "https://example.com", nil)
	if err != nil {
		t.Fatalf("CaptureResponsive failed: %v", err)
	}

	if len(shots) != 4 {
		t.Errorf("shots = %d, want the 4 default devices", len(shots))
	}

	if shots[0].Device != "iPhone-SE" || shots[3].Device != "desktop" {
		t.Errorf("unexpected device order: %q ... %q", shots[0].Device, shots[3].Device)
	}
}

func TestOptimizer_AnalyzeColors(t *testing.T) {
	fake := &fakeSession{
		contextID:   "ctx-1",
		evalResults: []string{`[{"color":"rgb(255, 255, 255)","count":120},{"color":"rgb(0, 0, 0)","count":80}]`},
	}
	optimizer := testOptimizer(fake)

	samples, err := optimizer.AnalyzeColors(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeColors failed: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}

	if samples[0].Color != "rgb(255, 255, 255)" || samples[0].Count != 120 {
		t.Errorf("first sample = %+v", samples[0])
	}
}

func TestOptimizer_CheckAccessibility(t *testing.T) {
	fake := &fakeSession{
		contextID: "ctx-1",
		evalResults: []string{`{
			"images_without_alt": ["https://example.com/logo.png"],
			"missing_labels": [{"type":"text","name":"q","id":"search"}],
			"heading_structure": [{"level":"H1","text":"Welcome"}],
			"links_without_text": []
		}`},
	}
	optimizer := testOptimizer(fake)

	report, err := optimizer.CheckAccessibility(context.Background())
	if err != nil {
		t.Fatalf("CheckAccessibility failed: %v", err)
	}

	if len(report.ImagesWithoutAlt) != 1 {
		t.Errorf("images without alt = %d, want 1", len(report.ImagesWithoutAlt))
	}

	if len(report.MissingLabels) != 1 || report.MissingLabels[0].ID != "search" {
		t.Errorf("missing labels = %+v", report.MissingLabels)
	}

	if len(report.HeadingStructure) != 1 || report.HeadingStructure[0].Level != "H1" {
		t.Errorf("heading structure = %+v", report.HeadingStructure)
	}
}

func TestOptimizer_MeasurePerformance(t *testing.T) {
	fake := &fakeSession{
		contextID: "ctx-1",
		evalResults: []string{`{
			"domContentLoaded": 12.5,
			"loadComplete": 34.0,
			"domInteractive": 210.0,
			"responseTime": 88.0,
			"firstPaint": 150.0,
			"firstContentfulPaint": null
		}`},
	}
	optimizer := testOptimizer(fake)

	metrics, err := optimizer.MeasurePerformance(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("MeasurePerformance failed: %v", err)
	}

	// Navigation happens before sampling.
	if fake.ops[0] != "navigate:https://example.com" || fake.ops[1] != "evaluate" {
		t.Errorf("op sequence = %v", fake.ops)
	}

	if metrics.DOMInteractive != 210.0 {
		t.Errorf("domInteractive = %v, want 210", metrics.DOMInteractive)
	}

	if metrics.FirstPaint == nil || *metrics.FirstPaint != 150.0 {
		t.Errorf("firstPaint = %v, want 150", metrics.FirstPaint)
	}

	if metrics.FirstContentfulPaint != nil {
		t.Errorf("firstContentfulPaint = %v, want nil", *metrics.FirstContentfulPaint)
	}
}

func TestOptimizer_CompareBeforeAfter(t *testing.T) {
	fake := &fakeSession{contextID: "ctx-1"}
	optimizer := testOptimizer(fake)

	css := "body { background: blue; }"

	comparison, err := optimizer.CompareBeforeAfter(context.Background(), "https://example.com", css)
	if err != nil {
		t.Fatalf("CompareBeforeAfter failed: %v", err)
	}

	wantOps := []string{
		"navigate:https://example.com",
		"screenshot:before.png",
		"evaluate",
		"screenshot:after.png",
	}

	if len(fake.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", fake.ops, wantOps)
	}

	for i, want := range wantOps {
		if fake.ops[i] != want {
			t.Errorf("op %d = %q, want %q", i, fake.ops[i], want)
		}
	}

	if comparison.Before != "/artifacts/screenshots/before.png" {
		t.Errorf("before = %q", comparison.Before)
	}

	if comparison.After != "/artifacts/screenshots/after.png" {
		t.Errorf("after = %q", comparison.After)
	}

	// The stylesheet rides inside the injected script.
	if !strings.Contains(fake.evalScripts[0], "background: blue") {
		t.Errorf("injected script does not carry the CSS: %s", fake.evalScripts[0])
	}
}

func TestOptimizer_ExtractText(t *testing.T) {
	fake := &fakeSession{
		contextID:   "ctx-1",
		evalResults: []string{`"Welcome to Example"`},
	}
	optimizer := testOptimizer(fake)

	text, err := optimizer.ExtractText(context.Background())
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	if text != "Welcome to Example" {
		t.Errorf("text = %q", text)
	}
}
