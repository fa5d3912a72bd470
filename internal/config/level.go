package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// ParseLevel accepts zap level names such as "debug" or "WARN".
func ParseLevel(s string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return l, fmt.Errorf("logging.level: %w", err)
	}
	return l, nil
}
