package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig       *AppConfig
	ServiceConfig   *ServiceConfig
	OptimizerConfig *OptimizerConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServiceConfig struct {
	URL            string `envconfig:"PLAYWRIGHT_SERVICE_URL" default:"http://playwright:3000"`
	RequestTimeout int    `envconfig:"SERVICE_REQUEST_TIMEOUT" default:"30"`
	ReadyAttempts  int    `envconfig:"SERVICE_READY_ATTEMPTS" default:"30"`
	ReadyDelay     int    `envconfig:"SERVICE_READY_DELAY" default:"2"`
}

type OptimizerConfig struct {
	OutputDir     string `envconfig:"OPTIMIZER_OUTPUT_DIR" default:"./screenshots"`
	SettleDelayMs int    `envconfig:"OPTIMIZER_SETTLE_DELAY_MS" default:"500"`
	FullPage      bool   `envconfig:"OPTIMIZER_FULL_PAGE" default:"true"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	// The service URL is joined with relative endpoint paths; a trailing
	// separator would double up.
	conf.ServiceConfig.URL = strings.TrimRight(conf.ServiceConfig.URL, "/")

	return &conf, nil
}

func (c *ServiceConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *ServiceConfig) ReadyInterval() time.Duration {
	return time.Duration(c.ReadyDelay) * time.Second
}

func (c *OptimizerConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}
