package config

import (
	"testing"
	"time"
)

func TestGetConfig_Defaults(t *testing.T) {
	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	if conf.ServiceConfig.URL != "http://playwright:3000" {
		t.Errorf("service URL = %q, want default", conf.ServiceConfig.URL)
	}

	if conf.ServiceConfig.Timeout() != 30*time.Second {
		t.Errorf("request timeout = %v, want 30s", conf.ServiceConfig.Timeout())
	}

	if conf.ServiceConfig.ReadyAttempts != 30 {
		t.Errorf("ready attempts = %d, want 30", conf.ServiceConfig.ReadyAttempts)
	}

	if conf.ServiceConfig.ReadyInterval() != 2*time.Second {
		t.Errorf("ready interval = %v, want 2s", conf.ServiceConfig.ReadyInterval())
	}

	if conf.OptimizerConfig.SettleDelay() != 500*time.Millisecond {
		t.Errorf("settle delay = %v, want 500ms", conf.OptimizerConfig.SettleDelay())
	}

	if !conf.OptimizerConfig.FullPage {
		t.Error("full page should default to true")
	}
}

func TestGetConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("PLAYWRIGHT_SERVICE_URL", "http://localhost:3000/")
	t.Setenv("SERVICE_REQUEST_TIMEOUT", "5")
	t.Setenv("LOG_LEVEL", "debug")

	conf, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	// Trailing separator is stripped once at load time.
	if conf.ServiceConfig.URL != "http://localhost:3000" {
		t.Errorf("service URL = %q, want trimmed", conf.ServiceConfig.URL)
	}

	if conf.ServiceConfig.Timeout() != 5*time.Second {
		t.Errorf("request timeout = %v, want 5s", conf.ServiceConfig.Timeout())
	}

	if conf.AppConfig.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", conf.AppConfig.LogLevel)
	}
}
