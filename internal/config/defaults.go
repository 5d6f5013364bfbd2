package config

// Default returns the default configuration
func Default() *Config {
	enabled := true
	return &Config{
		Version: 1,
		Fetch: &FetchConfig{
			Remote:      "origin",
			MaxAttempts: 4,
			BackoffBase: "2s",
			Timeout:     "120s",
		},
		Locks: &LocksConfig{
			Enabled: &enabled,
			MinAge:  "10m",
		},
		Paths: &PathsConfig{
			Include: []string{"**"},
			Exclude: []string{},
		},
		Output: &OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}
