package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"web-ui-optimizer/internal/config"
	"web-ui-optimizer/internal/entity"
	"web-ui-optimizer/internal/usecase"
	"web-ui-optimizer/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	usecase  *usecase.Service
	ctx      context.Context
	cancel   context.CancelFunc
	sigChan  chan os.Signal
	stopping bool
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Usecase *usecase.Service
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)

	return &Interface{
		config:   params.Config,
		logger:   params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase:  params.Usecase,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  sigChan,
		stopping: false,
	}
}

func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-i.sigChan
		fmt.Println("\n\nInterrupt received, shutting down...")
		i.stopping = true
		i.Stop()
	}()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		if i.stopping {
			break
		}

		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if err.Error() == "exit" {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Printf("Error: %v\n", err)
		}
	}

	return i.Stop()
}

func (i *Interface) Stop() error {
	if i.stopping {
		return nil
	}

	i.stopping = true
	i.logger.Info("Stopping console interface...")

	i.cancel()

	fmt.Println("Goodbye!")
	os.Exit(0)

	return nil
}

func (i *Interface) handleCommand(input string) error {
	fields := strings.Fields(input)
	command := fields[0]
	args := fields[1:]

	switch command {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Println("Shutting down...")

		return fmt.Errorf("exit")
	case "health":
		return i.health()
	case "info":
		return i.info()
	case "verify":
		return i.verify()
	case "open":
		return i.open(args)
	case "close":
		return i.close()
	case "goto":
		return i.navigate(args)
	case "shot":
		return i.screenshot(args)
	case "pdf":
		return i.pdf(args)
	case "capture":
		return i.capture(args)
	case "colors":
		return i.colors()
	case "a11y":
		return i.accessibility()
	case "perf":
		return i.performance(args)
	case "compare":
		return i.compare(args)
	case "text":
		return i.text()
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", command)

		return nil
	}
}

func (i *Interface) health() error {
	health, err := i.usecase.Session.HealthCheck(i.ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Status:   %s\n", health.Status)
	fmt.Printf("Browser:  %s (running: %v, contexts: %d)\n",
		health.Browser.Version, health.Browser.Running, health.Browser.Contexts)
	fmt.Printf("Uptime:   %.1fs\n", health.Uptime)
	fmt.Printf("Memory:   %.0f/%.0f %s\n", health.Memory.Used, health.Memory.Total, health.Memory.Unit)

	return nil
}

func (i *Interface) info() error {
	info, err := i.usecase.Connection.ServiceInfo(i.ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

func (i *Interface) verify() error {
	snapshot, err := i.usecase.Connection.Verify(i.ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Service is healthy (browser %s, %d active contexts)\n",
		snapshot.Browser.Version, snapshot.Browser.Contexts)

	return nil
}

func (i *Interface) open(args []string) error {
	var options *entity.ContextOptions

	if len(args) > 0 {
		width, height, err := parseDimensions(args[0])
		if err != nil {
			return err
		}

		options = &entity.ContextOptions{
			Viewport: &entity.Size{Width: width, Height: height},
		}
	}

	contextID, err := i.usecase.Session.NewContext(i.ctx, options)
	if err != nil {
		return err
	}

	fmt.Printf("Context created: %s\n", contextID)

	return nil
}

func (i *Interface) close() error {
	result, err := i.usecase.Session.Close(i.ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Context closed: %s\n", result.ContextID)

	return nil
}

func (i *Interface) navigate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: goto <url>")
	}

	result, err := i.usecase.Session.Navigate(i.ctx, args[0], entity.WaitUntilNetworkIdle)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded: %s (%s)\n", result.Title, result.URL)

	return nil
}

func (i *Interface) screenshot(args []string) error {
	filename := "screenshot.png"
	if len(args) > 0 {
		filename = args[0]
	}

	result, err := i.usecase.Session.Screenshot(i.ctx, filename, i.config.OptimizerConfig.FullPage, entity.ImageTypePNG)
	if err != nil {
		return err
	}

	fmt.Printf("Screenshot saved: %s\n", result.Path)

	return nil
}

func (i *Interface) pdf(args []string) error {
	filename := "page.pdf"
	if len(args) > 0 {
		filename = args[0]
	}

	result, err := i.usecase.Session.PDF(i.ctx, filename, entity.PaperFormatA4, false)
	if err != nil {
		return err
	}

	fmt.Printf("PDF saved: %s\n", result.Path)

	return nil
}

func (i *Interface) capture(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: capture <url>")
	}

	fmt.Printf("Capturing %s across %d viewports...\n", args[0], len(entity.DefaultViewports()))

	shots, err := i.usecase.Optimizer.CaptureResponsive(i.ctx, args[0], nil)
	if err != nil {
		return err
	}

	for _, shot := range shots {
		fmt.Printf("  %-12s %-10s %s\n", shot.Device, shot.Dimensions, shot.Path)
	}

	return nil
}

func (i *Interface) colors() error {
	samples, err := i.usecase.Optimizer.AnalyzeColors(i.ctx)
	if err != nil {
		return err
	}

	limit := len(samples)
	if limit > 10 {
		limit = 10
	}

	fmt.Printf("Top %d colors:\n", limit)

	for _, sample := range samples[:limit] {
		fmt.Printf("  %6d  %s\n", sample.Count, sample.Color)
	}

	return nil
}

func (i *Interface) accessibility() error {
	report, err := i.usecase.Optimizer.CheckAccessibility(i.ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Images without alt:  %d\n", len(report.ImagesWithoutAlt))
	fmt.Printf("Inputs w/o labels:   %d\n", len(report.MissingLabels))
	fmt.Printf("Links without text:  %d\n", len(report.LinksWithoutText))
	fmt.Printf("Headings:            %d\n", len(report.HeadingStructure))

	return nil
}

func (i *Interface) performance(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: perf <url>")
	}

	metrics, err := i.usecase.Optimizer.MeasurePerformance(i.ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("DOM content loaded:  %.1fms\n", metrics.DOMContentLoaded)
	fmt.Printf("Load complete:       %.1fms\n", metrics.LoadComplete)
	fmt.Printf("DOM interactive:     %.1fms\n", metrics.DOMInteractive)
	fmt.Printf("Response time:       %.1fms\n", metrics.ResponseTime)

	if metrics.FirstPaint != nil {
		fmt.Printf("First paint:         %.1fms\n", *metrics.FirstPaint)
	}

	if metrics.FirstContentfulPaint != nil {
		fmt.Printf("First contentful:    %.1fms\n", *metrics.FirstContentfulPaint)
	}

	return nil
}

func (i *Interface) compare(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: compare <url> <css>")
	}

	css := strings.Join(args[1:], " ")

	comparison, err := i.usecase.Optimizer.CompareBeforeAfter(i.ctx, args[0], css)
	if err != nil {
		return err
	}

	fmt.Printf("Before: %s\n", comparison.Before)
	fmt.Printf("After:  %s\n", comparison.After)

	return nil
}

func (i *Interface) text() error {
	text, err := i.usecase.Optimizer.ExtractText(i.ctx)
	if err != nil {
		return err
	}

	fmt.Println(text)

	return nil
}

func parseDimensions(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}

	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}

	return width, height, nil
}

func (i *Interface) printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║                  Web UI Optimizer                         ║
║                                                           ║
║   Responsive capture, color and accessibility analysis    ║
║   driven by a remote browser-automation service           ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  health              - Service health snapshot
  info                - Detailed service information
  verify              - Full connection verification
  open [WxH]          - Create a browser context (optional viewport)
  close               - Close the active context
  goto <url>          - Navigate the active context
  shot [file]         - Screenshot the current page
  pdf [file]          - Render the current page to PDF
  capture <url>       - Responsive screenshots across default viewports
  colors              - Color histogram of the current page
  a11y                - Accessibility heuristics for the current page
  perf <url>          - Page load performance metrics
  compare <url> <css> - Before/after screenshots with injected CSS
  text                - Extract visible page text
  help, h             - Show this help message
  exit, quit, q       - Exit the application
`
	fmt.Println(help)
}
