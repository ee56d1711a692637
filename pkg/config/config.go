// Package config loads the optional YAML configuration file. Everything
// here has a flag equivalent; the file only provides defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// LogsDir is scanned for log files when no filenames are given.
	LogsDir string `yaml:"logs_dir"`
	// Listen is the serve command's bind address.
	Listen string `yaml:"listen"`

	TopN        int    `yaml:"top_n"`
	Granularity string `yaml:"granularity"`
	SampleSize  int    `yaml:"sample_size"`
	MaxRecords  int    `yaml:"max_records"`
}

func Default() Config {
	return Config{
		LogsDir:     "logs",
		Listen:      "127.0.0.1:8000",
		TopN:        20,
		Granularity: "hourly",
	}
}

// Load reads, parses, and validates configuration from the provided path.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func validate(c *Config) error {
	if c.TopN < 0 {
		return fmt.Errorf("top_n must not be negative")
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative")
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("max_records must not be negative")
	}
	switch c.Granularity {
	case "", "hourly", "daily":
	default:
		return fmt.Errorf("unsupported granularity %q", c.Granularity)
	}
	return nil
}

// FindLogFiles lists files under dir that look like access logs, sorted
// by name. A missing directory is not an error; it just has no logs.
func FindLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isLogFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isLogFile(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range []string{"log", "access"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
