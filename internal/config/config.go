package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/pkg/scheduler"
)

const (
	// DefaultPort is the default port of the live demo server.
	DefaultPort = 3000

	// DefaultHost is the default host of the live demo server.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vela"

	// DefaultDemo is the demo application run when none is named.
	DefaultDemo = "counter"
)

// FileNames are the configuration files looked for, in order. JSON files
// are read with the YAML decoder.
var FileNames = []string{"vela.yaml", "vela.yml", "vela.json"}

// Config represents the complete vela configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Demo is the demo application to run.
	Demo string `yaml:"demo,omitempty"`

	// Scheduler contains scheduler settings.
	Scheduler SchedulerConfig `yaml:"scheduler,omitempty"`

	// Server contains live server settings.
	Server ServerConfig `yaml:"server,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains scheduler settings.
type SchedulerConfig struct {
	// MaxSteps is the step budget shared by all processes in one tick.
	MaxSteps int `yaml:"maxSteps,omitempty"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `yaml:"port,omitempty"`

	// MetricsPath is the HTTP path of the metrics endpoint.
	MetricsPath string `yaml:"metricsPath,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled turns the collectors on.
	Enabled bool `yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `yaml:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Demo: DefaultDemo,
		Scheduler: SchedulerConfig{
			MaxSteps: scheduler.DefaultMaxSteps,
		},
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			MetricsPath: DefaultMetricsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from the first of FileNames found in dir. A
// directory without a configuration file yields the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E104").Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E104").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML or JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration as YAML to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E104").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E104").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Demo == "" {
		c.Demo = DefaultDemo
	}
	if c.Scheduler.MaxSteps == 0 {
		c.Scheduler.MaxSteps = scheduler.DefaultMaxSteps
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Scheduler.MaxSteps <= 0 {
		return errors.New("E104").
			WithDetail("scheduler.maxSteps must be positive, got " + strconv.Itoa(c.Scheduler.MaxSteps))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E104").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E104").
			WithDetail("log.level must be one of debug, info, warn, error").
			WithSuggestion("Use log.level: info")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E104").
			WithDetail("log.format must be text or json")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	return levels[strings.ToLower(c.Log.Level)]
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
