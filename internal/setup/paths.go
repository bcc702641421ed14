package setup

import (
	"os"
	"path/filepath"
)

func ResolvePaths(mode InstallMode) Paths {
	if mode == ModeUser {
		home, _ := os.UserHomeDir()
		return Paths{
			BinDir:     filepath.Join(home, ".local", "bin"),
			BinPath:    filepath.Join(home, ".local", "bin", "w1logger"),
			ConfigDir:  filepath.Join(home, ".config", "w1logger"),
			ConfigPath: filepath.Join(home, ".config", "w1logger", "config.yaml"),
			DataDir:    filepath.Join(home, ".local", "share", "w1logger"),
		}
	}
	return Paths{
		BinDir:     "/usr/local/bin",
		BinPath:    "/usr/local/bin/w1logger",
		ConfigDir:  "/etc/w1logger",
		ConfigPath: "/etc/w1logger/config.yaml",
		DataDir:    "/var/lib/w1logger",
	}
}
