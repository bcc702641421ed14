//go:build !linux

package autostart

import (
	"errors"
	"runtime"
)

const serviceName = "w1logger"

var errUnsupported = errors.New("scheduled runs need systemd, unsupported on " + runtime.GOOS)

type unsupportedManager struct{}

// New returns a Manager whose operations fail: one-wire sysfs only exists on Linux.
func New(Options) Manager { return unsupportedManager{} }

func (unsupportedManager) ServiceName() string { return serviceName }

func (unsupportedManager) IsInstalled() (bool, error) { return false, nil }

func (unsupportedManager) Install(string) error { return errUnsupported }

func (unsupportedManager) Uninstall() error { return errUnsupported }
