package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fakeyudi/skillbench/internal/run"
)

// Config holds all configurable skillbench settings.
type Config struct {
	DefaultModel   string   `mapstructure:"default_model" yaml:"default_model"`
	StreamSpeed    string   `mapstructure:"stream_speed" yaml:"stream_speed"` // "fast" | "normal" | "slow"
	MinStepDelayMS int      `mapstructure:"min_step_delay_ms" yaml:"min_step_delay_ms"`
	MaxStepDelayMS int      `mapstructure:"max_step_delay_ms" yaml:"max_step_delay_ms"`
	SeedPath       string   `mapstructure:"seed_path" yaml:"seed_path"` // empty uses the built-in workspace
	CurrentVersion string   `mapstructure:"current_version" yaml:"current_version"`
	Models         []string `mapstructure:"models" yaml:"models"`
}

// EnvPrefix prefixes every environment override, e.g. SKILLBENCH_STREAM_SPEED.
const EnvPrefix = "SKILLBENCH"

var keys = []string{
	"default_model", "stream_speed", "min_step_delay_ms", "max_step_delay_ms",
	"seed_path", "current_version", "models",
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DefaultModel: "Claude 3.5 Sonnet",
		StreamSpeed:  string(run.SpeedNormal),
	}
}

// GlobalPath is ~/.config/skillbench/config.yaml.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "skillbench", "config.yaml"), nil
}

// ProjectFile is read from the current working directory.
const ProjectFile = ".skillbench.yaml"

// LoadGlobal reads ~/.config/skillbench/config.yaml.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .skillbench.yaml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// LoadFile reads an explicit config file. Unlike the global and project
// files, a missing explicit file is an error.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return loadFile(path, false)
}

// loadFile reads and parses a YAML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// LoadEnv reads SKILLBENCH_* overrides. Unset variables leave fields empty;
// MODELS is comma separated.
func LoadEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: "$" + EnvPrefix + "_*", Err: err}
	}
	return &cfg, nil
}

// Merge layers configs over the defaults; later layers take precedence.
// Missing keys fall back to earlier layers, then defaults.
func Merge(layers ...*Config) Config {
	result := Defaults()
	for _, l := range layers {
		if l == nil {
			continue
		}
		if l.DefaultModel != "" {
			result.DefaultModel = l.DefaultModel
		}
		if l.StreamSpeed != "" {
			result.StreamSpeed = l.StreamSpeed
		}
		if l.MinStepDelayMS != 0 {
			result.MinStepDelayMS = l.MinStepDelayMS
		}
		if l.MaxStepDelayMS != 0 {
			result.MaxStepDelayMS = l.MaxStepDelayMS
		}
		if l.SeedPath != "" {
			result.SeedPath = l.SeedPath
		}
		if l.CurrentVersion != "" {
			result.CurrentVersion = l.CurrentVersion
		}
		if len(l.Models) > 0 {
			result.Models = l.Models
		}
	}
	return result
}

// Validate reports settings no run could use.
func (c Config) Validate() error {
	if _, err := run.ParseSpeed(c.StreamSpeed); err != nil {
		return err
	}
	if c.MinStepDelayMS < 0 || c.MaxStepDelayMS < 0 {
		return fmt.Errorf("step delays must not be negative")
	}
	if c.MaxStepDelayMS != 0 && c.MinStepDelayMS > c.MaxStepDelayMS {
		return fmt.Errorf("min_step_delay_ms (%d) exceeds max_step_delay_ms (%d)", c.MinStepDelayMS, c.MaxStepDelayMS)
	}
	return nil
}

// StepDelays returns the per-step delay range: the explicit bounds when
// set, otherwise the stream speed preset.
func (c Config) StepDelays() (lo, hi time.Duration) {
	speed, err := run.ParseSpeed(c.StreamSpeed)
	if err != nil {
		speed = run.SpeedNormal
	}
	lo, hi = speed.DelayRange()
	if c.MinStepDelayMS > 0 {
		lo = time.Duration(c.MinStepDelayMS) * time.Millisecond
	}
	if c.MaxStepDelayMS > 0 {
		hi = time.Duration(c.MaxStepDelayMS) * time.Millisecond
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
