package setup

import (
	"fmt"

	"github.com/Guliveer/w1logger/internal/autostart"
)

// InstallMode selects a system-wide or per-user installation.
type InstallMode int

const (
	ModeSystem InstallMode = iota
	ModeUser
)

func (m InstallMode) String() string {
	switch m {
	case ModeSystem:
		return "system"
	case ModeUser:
		return "user"
	default:
		return "unknown"
	}
}

func (m InstallMode) autostartMode() autostart.Mode {
	if m == ModeUser {
		return autostart.UserMode
	}
	return autostart.SystemMode
}

// ParseMode parses the -mode flag value.
func ParseMode(s string) (InstallMode, error) {
	switch s {
	case "system":
		return ModeSystem, nil
	case "user":
		return ModeUser, nil
	default:
		return 0, fmt.Errorf("invalid install mode %q (expected \"system\" or \"user\")", s)
	}
}

// Paths lists where the binary, config and data live for an install mode.
type Paths struct {
	BinDir     string
	BinPath    string
	ConfigDir  string
	ConfigPath string
	DataDir    string
}
