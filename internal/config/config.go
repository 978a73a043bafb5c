package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir          string `yaml:"dir"`
		FileStem     string `yaml:"file_stem"`
		FileExt      string `yaml:"file_ext"`
		MinFileBytes int64  `yaml:"min_file_bytes"`
	} `yaml:"data"`
	Parser struct {
		HeaderSkip   int    `yaml:"header_skip"`
		IndexLine    int    `yaml:"index_line"`
		TrailerSkip  int    `yaml:"trailer_skip"`
		IndexColumns []int  `yaml:"index_columns"`
		StockColumns []int  `yaml:"stock_columns"`
		DateColumn   int    `yaml:"date_column"`
		TargetDate   string `yaml:"target_date"`
	} `yaml:"parser"`
	Filters  []string `yaml:"filters"`
	Schedule struct {
		SweepCron string `yaml:"sweep_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		LedgerFile string `yaml:"ledger_file"`
	} `yaml:"state"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; overrides and defaults still
// apply, so the tool is usable with flags alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("IBEXFEED_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("IBEXFEED_FILE_STEM"); v != "" {
		cfg.Data.FileStem = v
	}
	if v := os.Getenv("IBEXFEED_FILE_EXT"); v != "" {
		cfg.Data.FileExt = v
	}
	if v := os.Getenv("IBEXFEED_MIN_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Data.MinFileBytes = n
		}
	}
	if v := os.Getenv("IBEXFEED_TARGET_DATE"); v != "" {
		cfg.Parser.TargetDate = v
	}
	if v := os.Getenv("IBEXFEED_FILTERS"); v != "" {
		cfg.Filters = splitList(v)
	}
	if v := os.Getenv("IBEXFEED_SWEEP_CRON"); v != "" {
		cfg.Schedule.SweepCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("IBEXFEED_LEDGER_FILE"); v != "" {
		cfg.State.LedgerFile = v
	}

	// Defaults
	if cfg.Data.FileStem == "" {
		cfg.Data.FileStem = "data_ibex"
	}
	if cfg.Data.FileExt == "" {
		cfg.Data.FileExt = "csv"
	}
	if cfg.Data.MinFileBytes == 0 {
		// Exports below this size cannot hold a full table.
		cfg.Data.MinFileBytes = 560
	}
	if cfg.Parser.HeaderSkip == 0 && cfg.Parser.IndexLine == 0 && cfg.Parser.TrailerSkip == 0 {
		cfg.Parser.HeaderSkip = 11
		cfg.Parser.IndexLine = 6
		cfg.Parser.TrailerSkip = 5
	}
	if len(cfg.Parser.IndexColumns) == 0 {
		cfg.Parser.IndexColumns = []int{0, 5, 6, 1}
	}
	if len(cfg.Parser.StockColumns) == 0 {
		cfg.Parser.StockColumns = []int{0, 7, 8, 1, 5, 6}
	}
	if cfg.Parser.DateColumn == 0 {
		cfg.Parser.DateColumn = 5
	}

	return cfg, nil
}

// Validate checks that all required fields are set and plausible.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Parser.HeaderSkip < 0 || c.Parser.TrailerSkip < 0 || c.Parser.IndexLine < 0 {
		return fmt.Errorf("parser line offsets must not be negative")
	}
	for _, col := range append(append([]int{}, c.Parser.IndexColumns...), c.Parser.StockColumns...) {
		if col < 0 {
			return fmt.Errorf("parser column indices must not be negative")
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
