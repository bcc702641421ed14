// Host info collector: identifies the machine the sensors are attached to.
// Uses gopsutil host for hostname, distribution and kernel version.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo holds the static facts logged at startup and exported as metric labels.
type HostInfo struct {
	Hostname        string        `json:"hostname"`
	Platform        string        `json:"platform"`         // e.g. "raspbian"
	PlatformVersion string        `json:"platform_version"` // e.g. "11"
	KernelVersion   string        `json:"kernel_version"`
	Uptime          time.Duration `json:"uptime"`
}

// CollectHostInfo queries the host facts via gopsutil.
func CollectHostInfo(ctx context.Context) (HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostInfo{}, err
	}
	return HostInfo{
		Hostname:        info.Hostname,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Uptime:          time.Duration(info.Uptime) * time.Second,
	}, nil
}
