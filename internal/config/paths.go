package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	paths := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "w1logger", "config.yaml"))
	}
	return append(paths, "/etc/w1logger/config.yaml")
}
