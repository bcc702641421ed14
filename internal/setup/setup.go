package setup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Guliveer/w1logger/internal/autostart"
	"github.com/Guliveer/w1logger/internal/config"
)

// Options holds the CLI flags passed to -install.
type Options struct {
	Mode     string        // "system", "user", or "" (interactive)
	Interval time.Duration // time between scheduled runs
}

// Run installs the binary, writes cfg as the config file unless one already
// exists, and registers the systemd timer. If Mode is empty the user is asked.
func Run(version string, cfg *config.Config, opts Options) error {
	fmt.Printf("\nw1logger setup %s\n", version)
	fmt.Println(strings.Repeat("─", 30))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// 1. Determine install mode
	mode, err := resolveMode(opts.Mode, reader)
	if err != nil {
		return err
	}

	// 2. Check elevation for system mode
	if err := CheckElevation(mode); err != nil {
		return err
	}

	// 3. Resolve paths
	paths := ResolvePaths(mode)

	fmt.Println("\nInstalling...")

	// 4. Create directories
	for _, dir := range []string{paths.BinDir, paths.ConfigDir, paths.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
		fmt.Printf("  ✓ Created %s\n", dir)
	}

	// 5. Copy binary
	if err := copyBinary(paths.BinPath); err != nil {
		return fmt.Errorf("copying binary: %w", err)
	}
	fmt.Printf("  ✓ Copied binary → %s\n", paths.BinPath)

	// 6. Write config, keeping an existing one
	if _, err := os.Stat(paths.ConfigPath); err == nil {
		fmt.Printf("  ✓ Kept existing config %s\n", paths.ConfigPath)
	} else {
		if err := config.WriteConfig(installConfig(cfg, paths.DataDir), paths.ConfigPath); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Printf("  ✓ Written config → %s\n", paths.ConfigPath)
	}

	// 7. Register timer
	mgr := autostart.New(autostart.Options{
		Mode:       mode.autostartMode(),
		ConfigPath: paths.ConfigPath,
		WorkDir:    paths.DataDir,
		Interval:   opts.Interval,
	})
	installed, err := mgr.IsInstalled()
	if err != nil {
		return err
	}
	if installed {
		fmt.Printf("  ✓ Replacing existing timer (%s)\n", mgr.ServiceName())
	}
	if err := mgr.Install(paths.BinPath); err != nil {
		return fmt.Errorf("registering timer: %w", err)
	}
	fmt.Printf("  ✓ Registered timer (%s)\n", mgr.ServiceName())

	fmt.Println("\nDone! Sensors will be logged on every timer tick.")
	return nil
}

// Uninstall removes the systemd timer for the given mode. Config, data and
// binary are left in place.
func Uninstall(modeFlag string) error {
	mode, err := ParseMode(modeFlag)
	if err != nil {
		return err
	}
	if err := CheckElevation(mode); err != nil {
		return err
	}
	return autostart.New(autostart.Options{Mode: mode.autostartMode()}).Uninstall()
}

// installConfig returns a copy of cfg whose relative store paths point into
// dataDir, so scheduled runs do not depend on the working directory.
func installConfig(cfg *config.Config, dataDir string) *config.Config {
	out := *cfg
	out.Store.Paths = make([]string, len(cfg.Store.Paths))
	for i, p := range cfg.Store.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dataDir, p)
		}
		out.Store.Paths[i] = p
	}
	out.Logging.File = "" // journald captures stdout under systemd
	return &out
}

// copyBinary copies the current executable to the target path.
func copyBinary(dst string) error {
	src, err := os.Executable()
	if err != nil {
		return err
	}
	src, err = filepath.Abs(filepath.Clean(src))
	if err != nil {
		return err
	}
	dst, err = filepath.Abs(filepath.Clean(dst))
	if err != nil {
		return err
	}
	if src == dst {
		fmt.Printf("  (binary already in place)\n")
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// resolveMode determines the install mode from flag or interactive prompt.
func resolveMode(flagValue string, reader *bufio.Reader) (InstallMode, error) {
	if flagValue != "" {
		return ParseMode(flagValue)
	}
	fmt.Println("Installation mode:")
	fmt.Println("  [1] System (systemd system timer), requires root")
	fmt.Println("  [2] User (systemd user timer), current user only")
	fmt.Print("> ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "1":
		return ModeSystem, nil
	case "2":
		return ModeUser, nil
	default:
		return 0, fmt.Errorf("invalid choice %q", strings.TrimSpace(choice))
	}
}
