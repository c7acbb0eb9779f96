package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

type HTTPConfig struct {
	Addr string
}

type DBConfig struct {
	Driver string
	DSN    string
}

type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TelemetryConfig struct {
	TracingEnabled   bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Config is the resolved process configuration. Gateway credentials are
// resolved once at startup; nothing re-reads the environment afterwards.
type Config struct {
	ServiceName string
	Environment string

	AppID       string
	MchID       string
	APIKey      string
	CertPath    string
	CertKeyPath string

	HTTP      HTTPConfig
	DB        DBConfig
	Gateway   GatewayConfig
	Telemetry TelemetryConfig
}

func (c Config) IsSandbox() bool {
	return strings.EqualFold(c.Environment, EnvSandbox)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load reads configuration from the environment (plus a local .env if one
// exists) and resolves gateway credentials. A missing appid, mch_id, or
// apikey aborts startup; it is never a per-request condition.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ServiceName: getenv("WXGATE_SERVICE_NAME", "wxgate"),
		Environment: strings.ToLower(getenv("WXGATE_ENV", EnvProduction)),
		CertPath:    os.Getenv("WXGATE_CERT_PATH"),
		CertKeyPath: os.Getenv("WXGATE_CERT_KEY_PATH"),
		HTTP: HTTPConfig{
			Addr: getenv("WXGATE_HTTP_ADDR", ":8080"),
		},
		DB: DBConfig{
			Driver: getenv("WXGATE_DB_DRIVER", "postgres"),
			DSN:    os.Getenv("WXGATE_DB_DSN"),
		},
		Gateway: GatewayConfig{
			BaseURL: getenv("WXGATE_GATEWAY_BASE_URL", "https://api.mch.weixin.qq.com"),
			Timeout: getenvDuration("WXGATE_GATEWAY_TIMEOUT", 10*time.Second),
		},
		Telemetry: TelemetryConfig{
			TracingEnabled:   getenvBool("WXGATE_TRACING_ENABLED", false),
			ExporterEndpoint: os.Getenv("WXGATE_TRACING_ENDPOINT"),
			ExporterProtocol: getenv("WXGATE_TRACING_PROTOCOL", "grpc"),
			SamplingRatio:    getenvFloat("WXGATE_TRACING_SAMPLING_RATIO", 1.0),
		},
	}

	var missing []string
	for _, credential := range []struct {
		name   string
		raw    string
		target *string
	}{
		{"appid", os.Getenv("WXGATE_APPID"), &cfg.AppID},
		{"mch_id", os.Getenv("WXGATE_MCH_ID"), &cfg.MchID},
		{"apikey", os.Getenv("WXGATE_API_KEY"), &cfg.APIKey},
	} {
		value, err := Resolve(credential.raw)
		if err != nil || value == "" {
			missing = append(missing, credential.name)
			continue
		}
		*credential.target = value
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required gateway configuration: %s", strings.Join(missing, ", "))
	}

	if cfg.Environment != EnvSandbox && cfg.Environment != EnvProduction {
		return Config{}, fmt.Errorf("invalid WXGATE_ENV %q: want %s or %s", cfg.Environment, EnvSandbox, EnvProduction)
	}

	return cfg, nil
}

// Resolve expands a configured value. A literal is returned as-is; "$NAME",
// "${NAME}", and "$NAME:-default" resolve through the named environment
// variable, with the default used when the variable is unset or empty.
func Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "$") {
		return raw, nil
	}

	expr := strings.TrimPrefix(raw, "$")
	if strings.HasPrefix(expr, "{") && strings.HasSuffix(expr, "}") {
		expr = expr[1 : len(expr)-1]
	}
	name, fallback, hasFallback := strings.Cut(expr, ":-")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("invalid indirection %q", raw)
	}

	if value := os.Getenv(name); value != "" {
		return value, nil
	}
	if hasFallback {
		return fallback, nil
	}
	return "", fmt.Errorf("environment variable %s is not set", name)
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
