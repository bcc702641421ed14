// One-wire sensor reader: parses the w1_slave status file exposed by the
// kernel w1_therm driver.
//
//	2a 00 4b 46 ff ff 0e 10 84 : crc=84 YES
//	2a 00 4b 46 ff ff 0e 10 84 t=20875
//
// The driver has already verified the CRC; the first line only carries its
// verdict, so the check is a substring match on "YES".
package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Guliveer/w1logger/internal/models"
)

// DefaultDevicesDir is where the kernel exposes one-wire slaves.
const DefaultDevicesDir = "/sys/bus/w1/devices"

const (
	slaveFile     = "w1_slave"
	checksumOK    = "YES"
	valueMarker   = " t="
	maxLineLength = 1024
)

// W1Reader reads sensors from the one-wire sysfs tree.
type W1Reader struct {
	devicesDir string
}

// NewW1Reader creates a reader rooted at devicesDir.
// An empty devicesDir selects DefaultDevicesDir.
func NewW1Reader(devicesDir string) *W1Reader {
	if devicesDir == "" {
		devicesDir = DefaultDevicesDir
	}
	return &W1Reader{devicesDir: devicesDir}
}

// DevicePath returns the status file path for a device identifier.
func (r *W1Reader) DevicePath(device string) string {
	return filepath.Join(r.devicesDir, device, slaveFile)
}

// Read opens the sensor's status file and parses one reading from it.
// No retry happens here.
func (r *W1Reader) Read(ctx context.Context, sensor models.Sensor) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := r.DevicePath(sensor.Device)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("sensor %d: %w: %w", sensor.ID, ErrDeviceAbsent, err)
	}
	defer f.Close()

	value, err := ParseSlave(f)
	if err != nil {
		return 0, fmt.Errorf("sensor %d: %s: %w", sensor.ID, path, err)
	}
	return value, nil
}

// ParseSlave extracts the temperature in millidegrees Celsius from w1_slave
// content. Only the first two lines are consumed.
func ParseSlave(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, maxLineLength), maxLineLength)

	line, err := nextLine(sc)
	if err != nil {
		return 0, err
	}
	if !strings.Contains(line, checksumOK) {
		return 0, fmt.Errorf("%w: %q", ErrBadChecksum, line)
	}

	line, err = nextLine(sc)
	if err != nil {
		return 0, err
	}
	idx := strings.Index(line, valueMarker)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoValue, line)
	}
	return parseLeadingInt(line[idx+len(valueMarker):])
}

func nextLine(sc *bufio.Scanner) (string, error) {
	if sc.Scan() {
		return sc.Text(), nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrShortRead, err)
	}
	return "", ErrShortRead
}

// parseLeadingInt parses an optionally signed decimal prefix of s, skipping
// leading blanks and ignoring anything after the digits.
func parseLeadingInt(s string) (int, error) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%w: no digits after %q", ErrNoValue, strings.TrimSpace(valueMarker))
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoValue, err)
	}
	return v, nil
}
