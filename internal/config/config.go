package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"codescope/internal/errors"
)

type Config struct {
	Roots         []string            `toml:"roots"`
	Languages     map[string]Language `toml:"languages"`
	Exclude       Exclude             `toml:"exclude"`
	Thresholds    Thresholds          `toml:"thresholds"`
	Rules         Rules               `toml:"rules"`
	Output        Output              `toml:"output"`
	History       History             `toml:"history"`
	Observability Observability       `toml:"observability"`
	Watch         Watch               `toml:"watch"`
	IncludeTests  bool                `toml:"include_tests"`
	Workers       int                 `toml:"workers"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Thresholds drive the metrics engine and the smell rules. The defaults
// below are the documented values the tests assume.
type Thresholds struct {
	LongMethodLines  int `toml:"long_method_lines"`
	LongParamCount   int `toml:"long_param_count"`
	LargeClassMethod int `toml:"large_class_methods"`
	LargeFileLines   int `toml:"large_file_lines"`
	HighComplexity   int `toml:"high_complexity"`
	DeepNesting      int `toml:"deep_nesting"`
	HotspotMinScore  int `toml:"hotspot_min_score"`
	HotspotTopN      int `toml:"hotspot_top_n"`
	DuplicateMinLine int `toml:"duplicate_min_lines"`
}

type Rules struct {
	Disabled []string `toml:"disabled"`
}

type Output struct {
	JSON    string `toml:"json"`
	DOT     string `toml:"dot"`
	Summary bool   `toml:"summary"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	Address      string `toml:"address"`       // promhttp + health listen address, empty = disabled
	OTLPEndpoint string `toml:"otlp_endpoint"` // trace exporter target, empty = disabled
}

type Watch struct {
	Debounce      time.Duration `toml:"debounce"`
	RescansPerSec float64       `toml:"rescans_per_sec"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "read config")
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "decode config")
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with every default applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func ApplyDefaults(cfg *Config) {
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{
			".git", ".hg", ".svn",
			"node_modules", "vendor", "__pycache__",
			"dist", "build", "target", ".venv", "venv",
		}
	}

	t := &cfg.Thresholds
	if t.LongMethodLines == 0 {
		t.LongMethodLines = 50
	}
	if t.LongParamCount == 0 {
		t.LongParamCount = 6
	}
	if t.LargeClassMethod == 0 {
		t.LargeClassMethod = 20
	}
	if t.LargeFileLines == 0 {
		t.LargeFileLines = 500
	}
	if t.HighComplexity == 0 {
		t.HighComplexity = 10
	}
	if t.DeepNesting == 0 {
		t.DeepNesting = 4
	}
	if t.HotspotMinScore == 0 {
		t.HotspotMinScore = 5
	}
	if t.HotspotTopN == 0 {
		t.HotspotTopN = 10
	}
	if t.DuplicateMinLine == 0 {
		t.DuplicateMinLine = 5
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescansPerSec == 0 {
		cfg.Watch.RescansPerSec = 2
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		cfg.History.Path = ".codescope/history.db"
	}
}

// RuleEnabled reports whether a detector rule survives the disabled list.
func (c *Config) RuleEnabled(name string) bool {
	for _, d := range c.Rules.Disabled {
		if d == name {
			return false
		}
	}
	return true
}
