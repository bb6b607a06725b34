package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. GPAPI_TIMEOUT=5000.
const EnvPrefix = "GPAPI"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the gpapi settings file
type Config struct {
	Timeout         int               `json:"timeout,omitempty" mapstructure:"timeout" yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty" mapstructure:"followRedirects" yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty" mapstructure:"maxRedirects" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" mapstructure:"validateSSL" yaml:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty" mapstructure:"proxy" yaml:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" mapstructure:"headers" yaml:"headers,omitempty"` // Default headers for all requests
	BaseDir         string            `json:"baseDir,omitempty" mapstructure:"baseDir" yaml:"baseDir,omitempty"` // Root for multipart attachments
	Workspace       string            `json:"workspace,omitempty" mapstructure:"workspace" yaml:"workspace,omitempty"`
	LogLevel        string            `json:"logLevel,omitempty" mapstructure:"logLevel" yaml:"logLevel,omitempty"`
	Output          string            `json:"output,omitempty" mapstructure:"output" yaml:"output,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" mapstructure:"noColor" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".gpapi.json",
	"gpapi.json",
	".gpapirc",
	".gpapirc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
		return load(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory. With no
// file present the defaults are returned, still subject to GPAPI_* overrides.
func FindAndLoadConfig(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return load(configPath)
		}
	}

	return load("")
}

// Path returns the first existing config file in dir, or the default name
// for a new one.
func Path(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return filepath.Join(dir, ConfigFilenames[0])
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("followRedirects", *d.FollowRedirects)
	v.SetDefault("maxRedirects", d.MaxRedirects)
	v.SetDefault("validateSSL", *d.ValidateSSL)
	v.SetDefault("proxy", d.Proxy)
	v.SetDefault("baseDir", d.BaseDir)
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("output", d.Output)
	v.SetDefault("noColor", *d.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return v
}

// load reads path (JSON, whatever its extension) over the defaults and
// applies environment overrides.
func load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Headers = canonicalHeaders(cfg.Headers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// canonicalHeaders restores header name casing, which viper lowercases.
func canonicalHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// Validate rejects settings the dispatcher cannot honour.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be a positive number of milliseconds, got %d", ErrInvalid, c.Timeout)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("%w: maxRedirects must not be negative, got %d", ErrInvalid, c.MaxRedirects)
	}
	if !validOutput(c.Output) {
		return fmt.Errorf("%w: unknown output %q (expected console, json or yaml)", ErrInvalid, c.Output)
	}
	return nil
}

func validOutput(name string) bool {
	switch name {
	case "console", "json", "yaml":
		return true
	}
	return false
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.BaseDir != "" {
		result.BaseDir = other.BaseDir
	}
	if other.Workspace != "" {
		result.Workspace = other.Workspace
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.Output != "" {
		result.Output = other.Output
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range other.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
