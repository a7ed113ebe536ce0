// Package config loads runtime settings from .centrality.yaml, CENTRALITY_*
// environment variables and CLI flags through viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/papapumpkin/centrality/internal/batch"
	"github.com/papapumpkin/centrality/internal/centrality"
	"github.com/papapumpkin/centrality/internal/logging"
	"github.com/papapumpkin/centrality/internal/matrix"
	"github.com/papapumpkin/centrality/internal/table"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// SourceConfig is one input directory.
type SourceConfig struct {
	NetworkType string `mapstructure:"network_type"`
	Dir         string `mapstructure:"dir"`
	Pattern     string `mapstructure:"pattern"`
}

// EigenConfig tunes the directed eigenvector solver.
type EigenConfig struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Config holds all runtime configuration for a batch run.
type Config struct {
	Attenuations  []float64      `mapstructure:"attenuations"`
	Weighted      bool           `mapstructure:"weighted"`
	Sources       []SourceConfig `mapstructure:"sources"`
	OutputDir     string         `mapstructure:"output_dir"`
	Format        string         `mapstructure:"format"`
	SQLitePath    string         `mapstructure:"sqlite_path"`
	Backend       string         `mapstructure:"backend"`
	Workers       int            `mapstructure:"workers"`
	Eigen         EigenConfig    `mapstructure:"eigen"`
	ReportPath    string         `mapstructure:"report_path"`
	TelemetryPath string         `mapstructure:"telemetry_path"`
	Log           LogConfig      `mapstructure:"log"`
	Verbose       bool           `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	viper.SetDefault("attenuations", []float64(centrality.DefaultAttenuations()))
	viper.SetDefault("weighted", false)
	viper.SetDefault("sources", []map[string]any{
		{"network_type": "coauth", "dir": "./206_coauthor_networks", "pattern": batch.DefaultPattern},
		{"network_type": "informal", "dir": "./209_informal_networks", "pattern": batch.DefaultPattern},
	})
	viper.SetDefault("output_dir", "./220_centralities")
	viper.SetDefault("format", string(table.FormatCSV))
	viper.SetDefault("sqlite_path", "")
	viper.SetDefault("backend", string(matrix.BackendDense))
	viper.SetDefault("workers", 0)
	viper.SetDefault("eigen.max_iterations", centrality.DefaultEigenOptions().MaxIterations)
	viper.SetDefault("eigen.tolerance", centrality.DefaultEigenOptions().Tolerance)
	viper.SetDefault("report_path", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.max_size_mb", 50)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = filepath.Join(cfg.OutputDir, "report.toml")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.OutputDir, "centralities.db")
	}
	if cfg.Verbose && cfg.Log.File == "" {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting that can be checked without touching the
// filesystem.
func (c Config) Validate() error {
	if err := c.ComputeOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: no sources", ErrInvalid)
	}
	for i, s := range c.Sources {
		if s.NetworkType == "" || s.Dir == "" {
			return fmt.Errorf("%w: source %d needs network_type and dir", ErrInvalid, i)
		}
	}
	switch table.Format(c.Format) {
	case table.FormatCSV, table.FormatSQLite:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalid, table.ErrUnknownFormat, c.Format)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is empty", ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0", ErrInvalid)
	}
	if c.Eigen.MaxIterations <= 0 || c.Eigen.Tolerance <= 0 {
		return fmt.Errorf("%w: eigen.max_iterations and eigen.tolerance must be positive", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// ComputeOptions converts the configuration into the immutable options
// value handed to every worker.
func (c Config) ComputeOptions() centrality.Options {
	return centrality.Options{
		Attenuations: centrality.Attenuations(c.Attenuations),
		Weighted:     c.Weighted,
		Backend:      matrix.Backend(c.Backend),
		Eigen: centrality.EigenOptions{
			MaxIterations: c.Eigen.MaxIterations,
			Tolerance:     c.Eigen.Tolerance,
		},
	}
}

// BatchOptions returns the driver options.
func (c Config) BatchOptions() batch.Options {
	return batch.Options{Compute: c.ComputeOptions(), Workers: c.Workers}
}

// BatchSources returns the input sources.
func (c Config) BatchSources() []batch.Source {
	out := make([]batch.Source, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = batch.Source{NetworkType: s.NetworkType, Dir: s.Dir, Pattern: s.Pattern}
	}
	return out
}

// SinkOptions returns the result writer options.
func (c Config) SinkOptions() table.SinkOptions {
	return table.SinkOptions{
		Format:     table.Format(c.Format),
		OutputDir:  c.OutputDir,
		SQLitePath: c.SQLitePath,
	}
}

// LogOptions returns the logger options.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
