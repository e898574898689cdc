package config

// Config is the top-level trendgate configuration, corresponding to trendgate.yml.
type Config struct {
	Port              int      `yaml:"port" koanf:"port"`
	Provider          string   `yaml:"provider" koanf:"provider"`
	Model             string   `yaml:"model" koanf:"model"`
	OpenAIKey         string   `yaml:"openai_key" koanf:"openai_key"`
	SessionSecret     string   `yaml:"session_secret" koanf:"session_secret"`
	SessionTTLMS      int64    `yaml:"session_ttl_ms" koanf:"session_ttl_ms"`
	BaseVectorStoreID string   `yaml:"base_vector_store_id" koanf:"base_vector_store_id"`
	AllowedOrigins    []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	DemoToken         string   `yaml:"demo_token" koanf:"demo_token"`
	S3                S3Config `yaml:"s3" koanf:"s3"`
}

// S3Config holds the blob storage connection settings. Endpoint may point at
// MinIO or any other S3-compatible service.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	Region    string `yaml:"region" koanf:"region"`
	Bucket    string `yaml:"bucket" koanf:"bucket"`
	AccessKey string `yaml:"access_key" koanf:"access_key"`
	SecretKey string `yaml:"secret_key" koanf:"secret_key"`
}
