package coach

import "time"

// Config holds reflection settings.
type Config struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the built-in reflection settings.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxTokens:   400,
		Temperature: 0.4,
		Timeout:     20 * time.Second,
	}
}
