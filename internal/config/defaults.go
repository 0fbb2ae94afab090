package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir: DefaultBaseDir(),

		Server: ServerConfig{
			RateLimit:     30,
			Messaging:     false,
			ProbeInterval: 30,
		},

		RetentionDays: 30,
	}
}
