package config

// DefaultTTLMS is the session lifetime applied when none is configured: 24 hours.
const DefaultTTLMS = 24 * 60 * 60 * 1000

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		SessionTTLMS: DefaultTTLMS,
		S3: S3Config{
			Region: "us-east-1",
			Bucket: "trend-library",
		},
	}
}
