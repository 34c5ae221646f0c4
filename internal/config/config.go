// Package config provides Viper-based configuration loading for the dice tray.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend identifiers.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Tween curve identifiers.
const (
	CurveLinear = "linear"
	CurveSpring = "spring"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is the zap sink for log lines. The console owns stdout, so this defaults to "stderr".
	Output string `mapstructure:"output"`
}

// StorageConfig selects where persisted preferences live.
type StorageConfig struct {
	// Backend is one of "sqlite", "postgres", "memory".
	Backend string `mapstructure:"backend"`
	// Path is the SQLite database file used by the sqlite backend.
	Path string `mapstructure:"path"`
	// ExpressionKey is the preference key holding the current expression.
	ExpressionKey string `mapstructure:"expression_key"`
	// DefaultExpression is the fallback when nothing is stored yet.
	DefaultExpression string `mapstructure:"default_expression"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres backend.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SimulationConfig holds Monte Carlo settings.
type SimulationConfig struct {
	// SampleCount is the number of trials per histogram.
	SampleCount int `mapstructure:"sample_count"`
	// Seed seeds the simulation source; 0 draws a seed from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// TweenConfig holds display animation settings.
type TweenConfig struct {
	// Duration is the length of one linear transition.
	Duration time.Duration `mapstructure:"duration"`
	// FrameInterval is the delay between animation frames.
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	// Curve is "linear" or "spring".
	Curve string `mapstructure:"curve"`
	// SpringFrequency is the harmonica angular frequency for the spring curve.
	SpringFrequency float64 `mapstructure:"spring_frequency"`
	// SpringDamping is the harmonica damping ratio for the spring curve.
	SpringDamping float64 `mapstructure:"spring_damping"`
}

// SoundConfig holds roll-sound settings.
type SoundConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path is the sound file played on every roll.
	Path string `mapstructure:"path"`
	// Command is the player executable and its leading arguments; the sound path is appended.
	Command []string `mapstructure:"command"`
}

// PresetsConfig locates the named-expression file.
type PresetsConfig struct {
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Tween      TweenConfig      `mapstructure:"tween"`
	Sound      SoundConfig      `mapstructure:"sound"`
	Presets    PresetsConfig    `mapstructure:"presets"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTween(c.Tween); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Sound.Enabled && len(c.Sound.Command) == 0 {
		errs = append(errs, "sound.command must not be empty when sound is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	validBackends := map[string]bool{BackendSQLite: true, BackendPostgres: true, BackendMemory: true}
	if !validBackends[s.Backend] {
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [sqlite, postgres, memory], got %q", s.Backend))
	}
	if s.Backend == BackendSQLite && s.Path == "" {
		errs = append(errs, "storage.path must not be empty for the sqlite backend")
	}
	if s.ExpressionKey == "" {
		errs = append(errs, "storage.expression_key must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	if s.SampleCount < 1 {
		return fmt.Errorf("simulation.sample_count must be >= 1, got %d", s.SampleCount)
	}
	return nil
}

func validateTween(t TweenConfig) error {
	var errs []string
	if t.Duration <= 0 {
		errs = append(errs, "tween.duration must be positive")
	}
	if t.FrameInterval <= 0 {
		errs = append(errs, "tween.frame_interval must be positive")
	}
	switch t.Curve {
	case CurveLinear:
	case CurveSpring:
		if t.SpringFrequency <= 0 {
			errs = append(errs, "tween.spring_frequency must be positive")
		}
		if t.SpringDamping <= 0 {
			errs = append(errs, "tween.spring_damping must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("tween.curve must be one of [linear, spring], got %q", t.Curve))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path, or a path that does not
// exist, yields the defaults with environment overrides applied.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DICETRAY_ prefix
	v.SetEnvPrefix("DICETRAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("checking config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance populated with every default.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", "dicetray.db")
	v.SetDefault("storage.expression_key", "dicetray.expression")
	v.SetDefault("storage.default_expression", "1d20")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dicetray")
	v.SetDefault("database.password", "dicetray")
	v.SetDefault("database.name", "dicetray")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("simulation.sample_count", 50000)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("tween.duration", "500ms")
	v.SetDefault("tween.frame_interval", "16ms")
	v.SetDefault("tween.curve", CurveLinear)
	v.SetDefault("tween.spring_frequency", 6.0)
	v.SetDefault("tween.spring_damping", 0.5)

	v.SetDefault("sound.enabled", true)
	v.SetDefault("sound.path", "public/roll.wav")
	v.SetDefault("sound.command", []string{"aplay", "-q"})

	v.SetDefault("presets.path", "presets.yaml")
}
