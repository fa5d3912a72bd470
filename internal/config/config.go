// Package config loads biaslab settings from defaults, an optional YAML
// file, BIASLAB_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aieduca/biaslab/internal/coach"
	"github.com/aieduca/biaslab/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. BIASLAB_SERVER_ADDR.
const EnvPrefix = "BIASLAB"

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	LLM     llm.Config    `mapstructure:"llm"`
	Coach   coach.Config  `mapstructure:"coach"`
}

// ServerConfig holds HTTP shell settings.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	Mode          string        `mapstructure:"mode"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
	SessionIdle   time.Duration `mapstructure:"session_idle"`
	SecureCookie  bool          `mapstructure:"secure_cookie"`
}

// DataConfig locates the scenario and catalog files.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// StoreConfig locates the SQLite session store. An empty path means the
// per-user default.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the console and rotating file logs.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.session_max_age", 30*24*time.Hour)
	v.SetDefault("server.session_idle", 30*time.Minute)
	v.SetDefault("server.secure_cookie", false)

	v.SetDefault("data.dir", "data")
	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.directory", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)

	c := coach.DefaultConfig()
	v.SetDefault("coach.enabled", c.Enabled)
	v.SetDefault("coach.max_tokens", c.MaxTokens)
	v.SetDefault("coach.temperature", c.Temperature)
	v.SetDefault("coach.timeout", c.Timeout)
}

// Loader owns the viper instance and the current decoded Config.
type Loader struct {
	v *viper.Viper

	mu  sync.RWMutex
	cfg *Config
}

// New prepares a loader. file is an explicit config file path; when empty
// biaslab.yaml is searched in the working directory and in
// $XDG_CONFIG_HOME/biaslab. Nothing is read until Load.
func New(file string) *Loader {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("biaslab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "biaslab"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlags lets command-line flags override config keys. keys maps a
// config key such as "data.dir" to a flag name; flags that do not exist
// in fs are skipped.
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and decodes the result. A missing
// file in the search path is fine; a missing explicit file is an error.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Discover()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Current returns the most recently loaded config.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the config whenever the file changes and passes the new
// value to onChange. Invalid edits are logged and the previous config
// stays current. It is a no-op when no file was loaded.
func (l *Loader) Watch(logger *zap.Logger, onChange func(*Config)) {
	if l.File() == "" {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed, reloading", zap.String("file", e.Name))
		cfg, err := l.decode()
		if err != nil {
			logger.Error("reload config", zap.Error(err))
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Coach.MaxTokens <= 0 {
		return fmt.Errorf("coach.max_tokens must be positive")
	}
	return c.LLM.Validate()
}
