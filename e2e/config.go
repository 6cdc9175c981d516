package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points at a running backend, e.g. http://localhost:8080.
	// When empty the e2e suites skip themselves.
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// WS_ADDR is the websocket base, e.g. ws://localhost:8080.
	WSAddr string `envconfig:"WS_ADDR"`
	// E2E_DEBUG_JSON allows dumping full HTTP request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
