package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeConfig(t, `
data_path: /data/metadata.csv.gz
addr: ":9000"
top_n: 30
mode: cloud
extra_stopwords: [preprint, review]
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataPath != "/data/metadata.csv.gz" || cfg.Addr != ":9000" {
		t.Errorf("paths = %q %q", cfg.DataPath, cfg.Addr)
	}
	if cfg.TopN != 30 || cfg.Mode != "cloud" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.ExtraStopwords) != 2 {
		t.Errorf("ExtraStopwords = %v", cfg.ExtraStopwords)
	}
	// Unset keys keep their defaults.
	if cfg.RateBurst != Default().RateBurst || cfg.LogFormat != "auto" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MissingGlobalUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopN != 20 || cfg.Mode != "bar" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "top_n: [not, a, number]\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed yaml")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PAPERDASH_TOP_N", "7")
	t.Setenv("PAPERDASH_MODE", "cloud")
	path := writeConfig(t, "top_n: 30\nmode: bar\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopN != 7 || cfg.Mode != "cloud" {
		t.Errorf("TopN=%d Mode=%q, want env values", cfg.TopN, cfg.Mode)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PAPERDASH_DATA_PATH":       "/tmp/m.csv.gz",
		"PAPERDASH_RATE_LIMIT":      "2.5",
		"PAPERDASH_RATE_BURST":      "4",
		"PAPERDASH_WATCH":           "false",
		"PAPERDASH_EXTRA_STOPWORDS": "alpha, beta,,gamma ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.DataPath != "/tmp/m.csv.gz" || cfg.RateLimit != 2.5 || cfg.RateBurst != 4 || cfg.Watch {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.ExtraStopwords, "|") != "alpha|beta|gamma" {
		t.Errorf("ExtraStopwords = %v", cfg.ExtraStopwords)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "PAPERDASH_TOP_N" {
			return "twenty", true
		}
		return "", false
	}
	err := Default().ApplyEnv(lookup)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("ApplyEnv() error = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"top_n too small", func(c *Config) { c.TopN = 4 }, "top_n"},
		{"top_n too large", func(c *Config) { c.TopN = 51 }, "top_n"},
		{"bad mode", func(c *Config) { c.Mode = "pie" }, "mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"no data path", func(c *Config) { c.DataPath = "" }, "data_path"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "rate_limit"},
		{"empty stopword", func(c *Config) { c.ExtraStopwords = []string{"ok", ""} }, "extra_stopwords[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.field {
				t.Errorf("Fields = %+v, want %s", verr.Fields, tt.field)
			}
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := Default()
	cfg.TopN = 0
	cfg.Mode = ""

	var verr *ValidationError
	if !errors.As(cfg.Validate(), &verr) {
		t.Fatal("expected a ValidationError")
	}
	if len(verr.Fields) != 2 || verr.Fields[0].Field != "mode" || verr.Fields[1].Field != "top_n" {
		t.Errorf("Fields = %+v", verr.Fields)
	}
}

func TestSnapshotPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")

	cfg := Default()
	if got := cfg.ResolvedSnapshotPath(); got != "/custom/cache/paperdash/snapshots.db" {
		t.Errorf("ResolvedSnapshotPath() = %q", got)
	}
	if !cfg.SnapshotsEnabled() {
		t.Error("snapshots should be enabled by default")
	}

	cfg.SnapshotPath = SnapshotsOff
	if cfg.SnapshotsEnabled() {
		t.Error("snapshot_path: off should disable snapshots")
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.TopN = 12

	data, err := cfg.YAML()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.TopN != 12 {
		t.Errorf("TopN = %d, want 12", loaded.TopN)
	}
}
