package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (LUMEA_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	ShippingFee string `default:"160" usage:"Flat shipping fee added at checkout" flag:"shipping-fee"`
	Upstream    UpstreamConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// UpstreamConfig points at the storefront API the service fronts.
type UpstreamConfig struct {
	BaseURL string        `usage:"Storefront API base URL (LUMEA_UPSTREAM_BASE_URL)" flag:"upstream-base-url"`
	Path    string        `default:"" usage:"Storefront API path prefix, e.g. /v2/api/lumea-skincare" flag:"upstream-path"`
	Timeout time.Duration `default:"10s" usage:"Per-request timeout for storefront calls" flag:"upstream-timeout"`
}

// SessionConfig controls shopper session lifecycle.
type SessionConfig struct {
	TTL             time.Duration `default:"30m" usage:"Idle time before a shopper session is evicted"`
	JanitorInterval time.Duration `default:"5m" usage:"How often idle sessions are swept" flag:"janitor-interval"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (session cookie)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// ShippingFeeAmount parses the configured shipping fee.
func (c *Config) ShippingFeeAmount() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse shipping fee")
	}
	if fee.IsNegative() {
		return decimal.Decimal{}, errors.New("shipping fee must not be negative")
	}
	return fee, nil
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "LUMEA",
		Files:     []string{"config.yaml", "/etc/lumea/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Upstream.BaseURL == "" {
		return nil, errors.New("storefront base URL is required: set LUMEA_UPSTREAM_BASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like PORT to the application's
// LUMEA_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
