package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trendgate.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %s", cfg.Model)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %s", cfg.Provider)
	}
	if cfg.SessionTTLMS != DefaultTTLMS {
		t.Errorf("ttl = %d", cfg.SessionTTLMS)
	}
	if cfg.S3.Bucket != "trend-library" {
		t.Errorf("bucket = %s", cfg.S3.Bucket)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
provider: ollama
model: gpt-4o
base_vector_store_id: vs_123
s3:
  bucket: reports
  endpoint: http://localhost:9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.Model != "gpt-4o" || cfg.BaseVectorStoreID != "vs_123" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("provider = %s", cfg.Provider)
	}
	if cfg.S3.Bucket != "reports" || cfg.S3.Endpoint != "http://localhost:9000" {
		t.Errorf("s3 = %+v", cfg.S3)
	}
	// Region falls back to the default when the file omits it.
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("region = %s", cfg.S3.Region)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "model: gpt-4o\n")

	t.Setenv("TRENDGATE_MODEL", "gpt-4.1")
	t.Setenv("TRENDGATE_S3_BUCKET", "override-bucket")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4.1" {
		t.Errorf("model = %s, want env override", cfg.Model)
	}
	if cfg.S3.Bucket != "override-bucket" {
		t.Errorf("bucket = %s, want env override", cfg.S3.Bucket)
	}
}

func TestLoadWellKnownEnv(t *testing.T) {
	path := writeConfig(t, "session_secret: from-file\n")

	t.Setenv("SESSION_SIGNING_SECRET", "from-env")
	t.Setenv("SESSION_TTL_MS", "60000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionSecret != "from-env" {
		t.Errorf("secret = %s, env must win over file", cfg.SessionSecret)
	}
	if cfg.SessionTTLMS != 60000 {
		t.Errorf("ttl = %d", cfg.SessionTTLMS)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestSigningSecretFallback(t *testing.T) {
	cfg := &Config{SessionSecret: "dedicated", OpenAIKey: "sk-key"}
	if got := cfg.SigningSecret(); got != "dedicated" {
		t.Errorf("SigningSecret = %s", got)
	}

	cfg.SessionSecret = ""
	if got := cfg.SigningSecret(); got != "sk-key" {
		t.Errorf("SigningSecret = %s, want OpenAI key fallback", got)
	}

	cfg.OpenAIKey = ""
	if got := cfg.SigningSecret(); got != "" {
		t.Errorf("SigningSecret = %s, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.OpenAIKey = "sk-key"
		cfg.BaseVectorStoreID = "vs_123"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"bad port":      func(c *Config) { c.Port = 0 },
		"bad provider":  func(c *Config) { c.Provider = "anthropic" },
		"no model":      func(c *Config) { c.Model = "" },
		"no secret":     func(c *Config) { c.OpenAIKey = "" },
		"no base index": func(c *Config) { c.BaseVectorStoreID = "" },
		"bad ttl":       func(c *Config) { c.SessionTTLMS = -1 },
		"no bucket":     func(c *Config) { c.S3.Bucket = "" },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yml")

	cfg := DefaultConfig()
	cfg.Port = 9999
	cfg.BaseVectorStoreID = "vs_save"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Port != 9999 || loaded.BaseVectorStoreID != "vs_save" {
		t.Errorf("loaded = %+v", loaded)
	}
}
