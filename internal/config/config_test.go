package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/papapumpkin/centrality/internal/centrality"
	"github.com/papapumpkin/centrality/internal/matrix"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Weighted", cfg.Weighted, false},
		{"OutputDir", cfg.OutputDir, "./220_centralities"},
		{"Format", cfg.Format, "csv"},
		{"Backend", cfg.Backend, "dense"},
		{"Workers", cfg.Workers, 0},
		{"EigenMaxIterations", cfg.Eigen.MaxIterations, 1000},
		{"EigenTolerance", cfg.Eigen.Tolerance, 1e-6},
		{"ReportPath", cfg.ReportPath, filepath.Join("./220_centralities", "report.toml")},
		{"SQLitePath", cfg.SQLitePath, filepath.Join("./220_centralities", "centralities.db")},
		{"LogLevel", cfg.Log.Level, "warn"},
		{"Verbose", cfg.Verbose, false},
		{"Sources", len(cfg.Sources), 2},
		{"Attenuations", len(cfg.Attenuations), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.Sources[0].NetworkType != "coauth" || cfg.Sources[1].NetworkType != "informal" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.Attenuations[0] != 0.05 || cfg.Attenuations[9] != 0.95 {
		t.Errorf("Attenuations = %v", cfg.Attenuations)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "weighted",
			envKey: "CENTRALITY_WEIGHTED",
			envVal: "true",
			field:  func(c Config) any { return c.Weighted },
			want:   true,
		},
		{
			name:   "workers",
			envKey: "CENTRALITY_WORKERS",
			envVal: "3",
			field:  func(c Config) any { return c.Workers },
			want:   3,
		},
		{
			name:   "backend",
			envKey: "CENTRALITY_BACKEND",
			envVal: "sparse",
			field:  func(c Config) any { return c.Backend },
			want:   "sparse",
		},
		{
			name:   "output_dir moves derived paths",
			envKey: "CENTRALITY_OUTPUT_DIR",
			envVal: "/tmp/out",
			field:  func(c Config) any { return c.ReportPath },
			want:   filepath.Join("/tmp/out", "report.toml"),
		},
		{
			name:   "nested log level",
			envKey: "CENTRALITY_LOG_LEVEL",
			envVal: "error",
			field:  func(c Config) any { return c.Log.Level },
			want:   "error",
		},
		{
			name:   "verbose lowers console level",
			envKey: "CENTRALITY_VERBOSE",
			envVal: "true",
			field:  func(c Config) any { return c.Log.Level },
			want:   "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so CENTRALITY_* env vars map to config keys.
			viper.SetEnvPrefix("CENTRALITY")
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), ".centrality.yaml")
	content := `
attenuations: [0.1, 0.5, 1.0]
weighted: true
format: sqlite
sources:
  - network_type: coauth
    dir: /data/coauthors
  - network_type: informal
    dir: /data/informal
    pattern: "19*.gexf"
eigen:
  max_iterations: 200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	opts := cfg.ComputeOptions()
	if got := opts.Columns(); len(got) != 7 || got[2] != "neighborhood_100" || got[6] != centrality.ColumnEigenvectorWeighted {
		t.Errorf("Columns() = %v", got)
	}
	if opts.Eigen.MaxIterations != 200 || opts.Eigen.Tolerance != 1e-6 {
		t.Errorf("Eigen = %+v", opts.Eigen)
	}
	sources := cfg.BatchSources()
	if len(sources) != 2 || sources[1].Pattern != "19*.gexf" || sources[0].Dir != "/data/coauthors" {
		t.Errorf("BatchSources() = %+v", sources)
	}
	if cfg.SinkOptions().Format != "sqlite" {
		t.Errorf("SinkOptions().Format = %q", cfg.SinkOptions().Format)
	}
}

func TestValidate(t *testing.T) {
	resetViper()
	base, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"attenuation out of range", func(c *Config) { c.Attenuations = []float64{0, 0.5} }, centrality.ErrInvalidAttenuation},
		{"no attenuations", func(c *Config) { c.Attenuations = nil }, centrality.ErrNoAttenuations},
		{"unknown backend", func(c *Config) { c.Backend = "gpu" }, matrix.ErrUnknownBackend},
		{"unknown format", func(c *Config) { c.Format = "xlsx" }, ErrInvalid},
		{"no sources", func(c *Config) { c.Sources = nil }, ErrInvalid},
		{"source without dir", func(c *Config) { c.Sources = []SourceConfig{{NetworkType: "coauth"}} }, ErrInvalid},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalid},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Sources = append([]SourceConfig(nil), base.Sources...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, should wrap ErrInvalid", err)
			}
		})
	}
}
