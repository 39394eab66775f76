// Package config loads dashboard settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all dashboard settings. Field names in errors follow the
// yaml keys.
type Config struct {
	DataPath       string   `yaml:"data_path" json:"data_path" validate:"required"`
	Addr           string   `yaml:"addr" json:"addr" validate:"required"`
	SnapshotPath   string   `yaml:"snapshot_path,omitempty" json:"snapshot_path,omitempty"` // "off" disables snapshots
	TopN           int      `yaml:"top_n" json:"top_n" validate:"gte=5,lte=50"`
	Mode           string   `yaml:"mode" json:"mode" validate:"oneof=bar cloud"`
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty" json:"extra_stopwords,omitempty" validate:"dive,required"`
	LogLevel       string   `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string   `yaml:"log_format" json:"log_format" validate:"oneof=auto json text"`
	RateLimit      float64  `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"` // requests per second per client, 0 disables
	RateBurst      int      `yaml:"rate_burst" json:"rate_burst" validate:"gte=1"`
	Watch          bool     `yaml:"watch" json:"watch"`
}

// EnvPrefix prefixes every environment override, e.g. PAPERDASH_DATA_PATH.
const EnvPrefix = "PAPERDASH_"

// SnapshotsOff as snapshot_path disables the snapshot store.
const SnapshotsOff = "off"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		DataPath:  "metadata_small.csv.gz",
		Addr:      "127.0.0.1:8501",
		TopN:      20,
		Mode:      "bar",
		LogLevel:  "info",
		LogFormat: "auto",
		RateLimit: 10,
		RateBurst: 20,
		Watch:     true,
	}
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path means GlobalConfigPath; a missing
// file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = GlobalConfigPath()
	}
	if path != "" {
		err := cfg.readFile(ExpandPath(path))
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from PAPERDASH_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	str("DATA_PATH", &c.DataPath)
	str("ADDR", &c.Addr)
	str("SNAPSHOT_PATH", &c.SnapshotPath)
	str("MODE", &c.Mode)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup(EnvPrefix + "TOP_N"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sTOP_N: %v", ErrInvalid, EnvPrefix, err)
		}
		c.TopN = n
	}
	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %sRATE_LIMIT: %v", ErrInvalid, EnvPrefix, err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup(EnvPrefix + "RATE_BURST"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sRATE_BURST: %v", ErrInvalid, EnvPrefix, err)
		}
		c.RateBurst = n
	}
	if v, ok := lookup(EnvPrefix + "WATCH"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sWATCH: %v", ErrInvalid, EnvPrefix, err)
		}
		c.Watch = b
	}
	if v, ok := lookup(EnvPrefix + "EXTRA_STOPWORDS"); ok {
		c.ExtraStopwords = splitList(v)
	}
	return nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) expandPaths() {
	c.DataPath = ExpandPath(c.DataPath)
	if c.SnapshotPath != SnapshotsOff {
		c.SnapshotPath = ExpandPath(c.SnapshotPath)
	}
}

// SnapshotsEnabled reports whether a snapshot store should be opened.
func (c *Config) SnapshotsEnabled() bool {
	return c.SnapshotPath != SnapshotsOff
}

// ResolvedSnapshotPath returns snapshot_path or the XDG cache default.
func (c *Config) ResolvedSnapshotPath() string {
	if c.SnapshotPath == "" {
		return DefaultSnapshotPath()
	}
	return c.SnapshotPath
}

// YAML returns the config encoded as it would appear in the config file.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
