//go:build linux

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const serviceName = "w1logger"

// serviceTemplate runs the logger once per activation.
const serviceTemplate = `[Unit]
Description=One-wire temperature logger
After=local-fs.target

[Service]
Type=oneshot
ExecStart={execStart}
WorkingDirectory={workDir}
StandardOutput=journal
StandardError=journal
SyslogIdentifier=w1logger
`

// timerTemplate activates the service every {interval}.
const timerTemplate = `[Unit]
Description=Run the one-wire temperature logger every {interval}

[Timer]
OnBootSec={interval}
OnUnitActiveSec={interval}
AccuracySec=1s
Unit=w1logger.service

[Install]
WantedBy=timers.target
`

// linuxManager implements Manager for Linux using a systemd service + timer pair.
type linuxManager struct {
	opts    Options
	unitDir string
}

// New returns a Manager that uses systemd timers.
func New(opts Options) Manager {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	m := &linuxManager{opts: opts, unitDir: "/etc/systemd/system"}
	if opts.Mode == UserMode {
		home, _ := os.UserHomeDir()
		m.unitDir = filepath.Join(home, ".config", "systemd", "user")
	}
	return m
}

// ServiceName returns the systemd unit base name.
func (l *linuxManager) ServiceName() string { return serviceName }

func (l *linuxManager) servicePath() string {
	return filepath.Join(l.unitDir, serviceName+".service")
}

func (l *linuxManager) timerPath() string {
	return filepath.Join(l.unitDir, serviceName+".timer")
}

// IsInstalled reports whether the timer unit file exists.
func (l *linuxManager) IsInstalled() (bool, error) {
	_, err := os.Stat(l.timerPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking timer file: %w", err)
	}
	return true, nil
}

// Install writes both unit files, reloads systemd and enables the timer.
func (l *linuxManager) Install(execPath string) error {
	service, timer := renderUnits(execPath, l.opts)

	if l.opts.WorkDir != "" {
		if err := os.MkdirAll(l.opts.WorkDir, 0755); err != nil {
			return fmt.Errorf("creating working directory: %w", err)
		}
	}
	if err := os.MkdirAll(l.unitDir, 0755); err != nil {
		return fmt.Errorf("creating unit directory: %w", err)
	}
	if err := os.WriteFile(l.servicePath(), []byte(service), 0644); err != nil {
		return fmt.Errorf("writing service file: %w", err)
	}
	if err := os.WriteFile(l.timerPath(), []byte(timer), 0644); err != nil {
		return fmt.Errorf("writing timer file: %w", err)
	}

	commands := [][]string{
		{"daemon-reload"},
		{"enable", "--now", serviceName + ".timer"},
	}
	for _, args := range commands {
		if err := l.systemctl(args...); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall stops and disables the timer and removes both unit files.
func (l *linuxManager) Uninstall() error {
	// Best-effort; the timer may already be inactive.
	_ = l.systemctl("disable", "--now", serviceName+".timer")

	for _, p := range []string{l.timerPath(), l.servicePath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing unit file: %w", err)
		}
	}

	_ = l.systemctl("daemon-reload")
	return nil
}

func (l *linuxManager) systemctl(args ...string) error {
	if l.opts.Mode == UserMode {
		args = append([]string{"--user"}, args...)
	}
	if err := exec.Command("systemctl", args...).Run(); err != nil {
		return fmt.Errorf("running systemctl %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// renderUnits fills the service and timer templates.
func renderUnits(execPath string, opts Options) (service, timer string) {
	execStart := quoteArg(execPath)
	if opts.ConfigPath != "" {
		execStart += " -config " + quoteArg(opts.ConfigPath)
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(execPath)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	service = strings.ReplaceAll(serviceTemplate, "{execStart}", execStart)
	service = strings.ReplaceAll(service, "{workDir}", workDir)
	timer = strings.ReplaceAll(timerTemplate, "{interval}", systemdSpan(interval))
	return service, timer
}

// quoteArg double-quotes one ExecStart argument so systemd passes it verbatim.
func quoteArg(s string) string {
	return `"` + argEscaper.Replace(s) + `"`
}

var argEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "%", "%%")

// systemdSpan formats d as a systemd time span, e.g. "1min 30s".
func systemdSpan(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		d = time.Second
	}
	var parts []string
	if h := d / time.Hour; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		parts = append(parts, fmt.Sprintf("%dmin", m))
		d -= m * time.Minute
	}
	if s := d / time.Second; s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
