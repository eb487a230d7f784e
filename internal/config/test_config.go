package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	def := defaultConfig()
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		API: APIConfig{
			Source:              "tmdb",
			BaseURL:             "http://127.0.0.1",
			HTTPTimeout:         5 * time.Second,
			UserAgent:           "flick-test/1.0",
			CacheTTL:            time.Minute,
			AllowLocalEndpoints: true,
		},
		Search: SearchConfig{
			Debounce:   10 * time.Millisecond,
			MaxResults: 30,
		},
		Analytics: AnalyticsConfig{
			Backend:    "none",
			Delay:      10 * time.Millisecond,
			Timeout:    time.Second,
			Collection: "metrics",
		},
		UI:    def.UI,
		Media: def.Media,
		Keys:  def.Keys,
		Log:   LogConfig{Level: "off"},
	}
}
