// Package main is the entry point for the one-wire temperature logger.
// It reads every configured sensor once, stores the samples in each SQLite
// target and exits. Periodic runs are driven by a systemd timer (see -install).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/w1logger/internal/autostart"
	"github.com/Guliveer/w1logger/internal/collector"
	"github.com/Guliveer/w1logger/internal/config"
	"github.com/Guliveer/w1logger/internal/metrics"
	"github.com/Guliveer/w1logger/internal/runner"
	"github.com/Guliveer/w1logger/internal/setup"
	"github.com/Guliveer/w1logger/internal/store"
)

// hostInfoTimeout bounds the gopsutil query at startup.
const hostInfoTimeout = 2 * time.Second

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file (default: search standard locations)")
	storePaths  = flag.String("store", "", "Comma-separated store paths, overriding the config")
	devicesDir  = flag.String("devices-dir", "", "One-wire devices directory, overriding the config")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Show version and exit")

	install     = flag.Bool("install", false, "Install binary, config and systemd timer, then exit")
	uninstall   = flag.Bool("uninstall", false, "Remove the systemd timer, then exit")
	installMode = flag.String("mode", "", "Install mode for -install/-uninstall: system or user")
	interval    = flag.Duration("interval", autostart.DefaultInterval, "Time between scheduled runs (-install)")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("w1logger %s\n", version)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *uninstall {
		mode := *installMode
		if mode == "" {
			mode = "system"
		}
		if err := setup.Uninstall(mode); err != nil {
			fmt.Fprintf(os.Stderr, "Uninstall failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *install {
		if err := setup.Run(version, cfg, setup.Options{Mode: *installMode, Interval: *interval}); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting w1logger",
		zap.String("version", version),
		zap.Int("sensors", len(cfg.Sensors)),
		zap.Strings("stores", cfg.Store.Paths))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals; the only way to stop a sensor that never reads cleanly
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Warn("Received signal, aborting run",
			zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
	logger.Info("Run complete")
}

func loadConfig() (*config.Config, error) {
	cli := config.CLIOverrides{
		DevicesDir: *devicesDir,
		StorePaths: config.SplitList(*storePaths),
		LogLevel:   *logLevel,
	}
	if *configPath != "" {
		return config.LoadLayered(cli, embeddedConfig, *configPath)
	}
	return config.LoadLayered(cli, embeddedConfig)
}

// run wires all components and performs a single acquisition + persistence pass.
// The metrics textfile is written even when the run fails.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	m := metrics.New()

	hostCtx, hostCancel := context.WithTimeout(ctx, hostInfoTimeout)
	info, err := collector.CollectHostInfo(hostCtx)
	hostCancel()
	if err != nil {
		logger.Debug("Host info not available", zap.Error(err))
	} else {
		logger.Info("Host",
			zap.String("hostname", info.Hostname),
			zap.String("platform", info.Platform+" "+info.PlatformVersion),
			zap.String("kernel", info.KernelVersion),
			zap.Duration("uptime", info.Uptime))
		m.SetHostInfo(info)
	}

	registry, err := collector.NewRegistry(cfg.Sensors)
	if err != nil {
		return err
	}

	acquirer := collector.NewAcquirer(collector.NewW1Reader(cfg.W1.DevicesDir), m, logger)
	opener := runner.StoreOpener(store.Options{
		BusyTimeout:  cfg.Store.BusyTimeout.Duration,
		CreateSchema: cfg.Store.CreateSchema,
		Observer:     m,
	}, logger)

	r := runner.New(registry, acquirer, cfg.Store.Paths, opener, logger)
	r.OnRun(m)

	if cfg.Run.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Run.Timeout.Duration)
		defer cancel()
	}

	_, runErr := r.Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("Failed to write metrics textfile",
				zap.String("path", cfg.Metrics.Textfile),
				zap.Error(err))
		}
	}

	return runErr
}

// initLogger creates a zap logger based on the configuration.
// It outputs to the console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
