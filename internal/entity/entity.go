package entity

import (
	"encoding/json"
	"fmt"
)

// StatusHealthy is the body-level status the service reports when fully up.
// Readiness polling does not inspect it; connection verification does.
const StatusHealthy = "healthy"

type HealthSnapshot struct {
	Status      string         `json:"status"`
	Browser     BrowserInfo    `json:"browser"`
	Uptime      float64        `json:"uptime"`
	Memory      MemoryInfo     `json:"memory"`
	Environment map[string]any `json:"environment,omitempty"`

	// ServiceURL is attached locally by the service-info operation and is
	// never part of the wire payload.
	ServiceURL string `json:"service_url,omitempty"`
}

type BrowserInfo struct {
	Running  bool   `json:"running"`
	Version  string `json:"version"`
	Contexts int    `json:"contexts"`
}

type MemoryInfo struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
	Unit  string  `json:"unit"`
}

// ContextOptions is passed through to the service verbatim; unset fields
// are omitted so the outbound body carries exactly what the caller set.
type ContextOptions struct {
	Viewport   *Size          `json:"viewport,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Locale     string         `json:"locale,omitempty"`
	TimezoneID string         `json:"timezoneId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type WaitUntil string

const (
	WaitUntilLoad             WaitUntil = "load"
	WaitUntilDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitUntilNetworkIdle      WaitUntil = "networkidle"
)

type ImageType string

const (
	ImageTypePNG  ImageType = "png"
	ImageTypeJPEG ImageType = "jpeg"
)

type PaperFormat string

const (
	PaperFormatA4     PaperFormat = "A4"
	PaperFormatLetter PaperFormat = "Letter"
)

type NavigateResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

type ScreenshotResult struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

type EvaluateResult struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

type PDFResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type AccessibilityResult struct {
	Status   string          `json:"status"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type CloseResult struct {
	Status    string `json:"status"`
	ContextID string `json:"contextId"`
}

// Viewport is a named device profile for responsive capture.
type Viewport struct {
	Width  int
	Height int
	Device string
}

func (v Viewport) Dimensions() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// DefaultViewports covers the common breakpoints from phone to desktop.
func DefaultViewports() []Viewport {
	return []Viewport{
		{Width: 375, Height: 667, Device: "iPhone-SE"},
		{Width: 768, Height: 1024, Device: "iPad"},
		{Width: 1366, Height: 768, Device: "laptop"},
		{Width: 1920, Height: 1080, Device: "desktop"},
	}
}

type ResponsiveShot struct {
	Device     string `json:"device"`
	Dimensions string `json:"dimensions"`
	Path       string `json:"path"`
	LocalPath  string `json:"local_path,omitempty"`
}

type ColorSample struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

type AccessibilityReport struct {
	ImagesWithoutAlt []string     `json:"images_without_alt"`
	MissingLabels    []InputField `json:"missing_labels"`
	HeadingStructure []Heading    `json:"heading_structure"`
	LinksWithoutText []string     `json:"links_without_text"`
}

type InputField struct {
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type PerformanceMetrics struct {
	DOMContentLoaded     float64  `json:"domContentLoaded"`
	LoadComplete         float64  `json:"loadComplete"`
	DOMInteractive       float64  `json:"domInteractive"`
	ResponseTime         float64  `json:"responseTime"`
	FirstPaint           *float64 `json:"firstPaint"`
	FirstContentfulPaint *float64 `json:"firstContentfulPaint"`
}

type Comparison struct {
	Before      string `json:"before"`
	After       string `json:"after"`
	LocalBefore string `json:"local_before,omitempty"`
	LocalAfter  string `json:"local_after,omitempty"`
}
