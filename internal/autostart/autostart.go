// Package autostart installs the external scheduler that invokes the logger
// periodically. The logger itself runs once and exits.
package autostart

import "time"

// Mode determines whether the timer is installed system-wide or per-user.
type Mode int

const (
	SystemMode Mode = iota // System-wide timer (requires root)
	UserMode               // Per-user timer
)

// DefaultInterval is the time between two runs when none is configured.
const DefaultInterval = time.Minute

// Options describe how the scheduled command is invoked.
type Options struct {
	Mode       Mode
	ConfigPath string        // passed as -config; empty uses the logger's search paths
	WorkDir    string        // working directory for relative store paths
	Interval   time.Duration // time between runs; zero means DefaultInterval
}

// Manager provides platform-specific scheduler installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	ServiceName() string
}
