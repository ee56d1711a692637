package cmd

import (
	"fmt"

	"github.com/kaede/loglens/pkg/config"
)

func loadConfigFile(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// resolveFiles prefers explicit arguments, falling back to scanning the
// configured logs directory.
func resolveFiles(args []string, cfg config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := config.FindLogFiles(cfg.LogsDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no log files found in %s", cfg.LogsDir)
	}
	return files, nil
}
