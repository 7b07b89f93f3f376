package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Search  SearchConfig  `yaml:"search"`
	Tables  TablesConfig  `yaml:"tables"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// InputConfig holds ciphertext input settings.
type InputConfig struct {
	MaxTextLen int  `yaml:"max_text_len"`
	Normalize  bool `yaml:"normalize"` // upper-case and drop non-letters instead of rejecting
}

// SearchConfig holds the period detection and hill-climbing constants.
type SearchConfig struct {
	MaxPeriod         int     `yaml:"max_period"`
	IoCThreshold      float64 `yaml:"ioc_threshold"`
	IoCMultiplier     float64 `yaml:"ioc_multiplier"`
	StagnationLimit   int     `yaml:"stagnation_limit"`
	BudgetCoefficient int64   `yaml:"budget_coefficient"`

	// Period skips detection when > 0.
	Period int `yaml:"period"`

	// InitFromLastSlice seeds every initial key column from the last
	// period slice instead of the column's own slice.
	InitFromLastSlice bool `yaml:"init_from_last_slice"`

	Workers    int           `yaml:"workers"`
	Seed       int64         `yaml:"seed"` // 0 seeds from the clock
	MaxRuntime time.Duration `yaml:"max_runtime"`
}

// TablesConfig names reference table files; empty means built in.
type TablesConfig struct {
	Monograms  string `yaml:"monograms"`
	Tetragrams string `yaml:"tetragrams"`
}

// OutputConfig holds result reporting settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json or yaml
	TopN   int    `yaml:"topn"`
	Key    bool   `yaml:"key"` // include key alphabets in text output
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			MaxTextLen: 10000,
		},
		Search: SearchConfig{
			MaxPeriod:         100,
			IoCThreshold:      1.65,
			IoCMultiplier:     1.2,
			StagnationLimit:   1000,
			BudgetCoefficient: 5000000,
			Workers:           1,
		},
		Output: OutputConfig{
			Format: "text",
			TopN:   1,
			Key:    true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the search can't run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Input.MaxTextLen < 4 {
		problems = append(problems, fmt.Sprintf("input.max_text_len must be at least 4, got %d", c.Input.MaxTextLen))
	}
	if c.Search.MaxPeriod < 1 {
		problems = append(problems, fmt.Sprintf("search.max_period must be positive, got %d", c.Search.MaxPeriod))
	}
	if c.Search.IoCThreshold <= 0 {
		problems = append(problems, fmt.Sprintf("search.ioc_threshold must be positive, got %g", c.Search.IoCThreshold))
	}
	if c.Search.IoCMultiplier <= 0 {
		problems = append(problems, fmt.Sprintf("search.ioc_multiplier must be positive, got %g", c.Search.IoCMultiplier))
	}
	if c.Search.StagnationLimit < 1 {
		problems = append(problems, fmt.Sprintf("search.stagnation_limit must be positive, got %d", c.Search.StagnationLimit))
	}
	if c.Search.BudgetCoefficient < 0 {
		problems = append(problems, fmt.Sprintf("search.budget_coefficient must not be negative, got %d", c.Search.BudgetCoefficient))
	}
	if c.Search.Period < 0 {
		problems = append(problems, fmt.Sprintf("search.period must not be negative, got %d", c.Search.Period))
	}
	if c.Search.Workers < 1 || c.Search.Workers > 4*runtime.NumCPU() {
		problems = append(problems, fmt.Sprintf("search.workers must be between 1 and %d, got %d", 4*runtime.NumCPU(), c.Search.Workers))
	}
	if c.Search.MaxRuntime < 0 {
		problems = append(problems, fmt.Sprintf("search.max_runtime must not be negative, got %v", c.Search.MaxRuntime))
	}
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("output.format must be text, json or yaml, got %q", c.Output.Format))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Load loads configuration from a file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "slippery.yaml"
