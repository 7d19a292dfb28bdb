package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

// ServiceName prefixes environment variables, e.g. PRODUCT_AUTH_APIKEY.
const ServiceName = "product"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	Auth       config.AuthConfig      `koanf:"auth"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
	Events     config.EventsConfig    `koanf:"events"`
}

// Defaults returns the values used when neither config.yaml nor the environment set a key.
// Keys are lower case so environment overrides land on the same path.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "5s",

		"log.level":        "info",
		"pprof.enabled":    false,
		"pprof.addr":       "localhost:6060",
		"shutdown.timeout": "10s",

		"telemetry.servicename":              "product-service",
		"telemetry.traces.enabled":           false,
		"telemetry.traces.otlphttp.endpoint": "localhost:4318",
		"telemetry.traces.otlphttp.insecure": true,
		"telemetry.traces.otlphttp.timeout":  "5s",

		"events.enabled":      false,
		"events.stream":       "PRODUCTS",
		"events.nats.url":     "nats://localhost:4222",
		"events.nats.timeout": "5s",
	}
}

// EnvAliases lists the unprefixed environment variables the service also honours.
func EnvAliases() map[string]string {
	return map[string]string{
		"API_KEY": "auth.apikey",
		"PORT":    "server.port",
	}
}

// Load reads the service configuration from defaults, config.yaml, .env and the environment.
func Load() (*Config, error) {
	return configloader.Load[*Config](ServiceName,
		configloader.WithDefaults(Defaults()),
		configloader.WithEnvAliases(EnvAliases()),
	)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Server Configuration ---")
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Events.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.Auth,
		&c.Telemetry,
		&c.Events,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
