package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TRENDGATE_*), then the well-known
// environment names the deployment platforms use.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: TRENDGATE_MODEL -> model,
	// TRENDGATE_S3_BUCKET -> s3.bucket, etc.
	if err := k.Load(env.Provider("TRENDGATE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TRENDGATE_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyWellKnownEnv(cfg)

	return cfg, nil
}

// applyWellKnownEnv overlays the unprefixed environment names recognized for
// compatibility with hosted deployments. They win over file values.
func applyWellKnownEnv(cfg *Config) {
	if v := os.Getenv("SESSION_SIGNING_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SESSION_TTL_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.SessionTTLMS = n
		}
	}
	if v := os.Getenv("BASE_VECTOR_STORE_ID"); v != "" {
		cfg.BaseVectorStoreID = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v := os.Getenv("DEMO_TOKEN"); v != "" {
		cfg.DemoToken = v
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// SigningSecret returns the session signing secret: the dedicated secret when
// configured, otherwise the OpenAI API key. Empty means the gateway cannot
// issue tokens and must refuse to start.
func (c *Config) SigningSecret() string {
	if c.SessionSecret != "" {
		return c.SessionSecret
	}
	return c.OpenAIKey
}

// Validate checks that the configuration contains the values the gateway
// cannot run without.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Provider != "" && c.Provider != "openai" && c.Provider != "ollama" {
		return fmt.Errorf("unsupported provider %q (want openai or ollama)", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.SigningSecret() == "" {
		return fmt.Errorf("missing SESSION_SIGNING_SECRET (or OPENAI_API_KEY)")
	}
	if c.BaseVectorStoreID == "" {
		return fmt.Errorf("missing BASE_VECTOR_STORE_ID (run 'trendgate create-index' first)")
	}
	if c.SessionTTLMS <= 0 {
		return fmt.Errorf("session_ttl_ms must be positive")
	}
	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}
	return nil
}
