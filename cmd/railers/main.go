package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/railers/internal/config"
	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/hotkeys"
	"github.com/1broseidon/railers/internal/keyhook"
	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/logging"
	"github.com/1broseidon/railers/internal/overlay"
	"github.com/1broseidon/railers/internal/platform"
	"github.com/1broseidon/railers/internal/remap"
	"github.com/1broseidon/railers/internal/state"
	"github.com/1broseidon/railers/internal/tracker"
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runOverlay(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runOverlay(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:], os.Stdout, os.Stderr))
	case "keys":
		os.Exit(runKeys(os.Args[2:], os.Stdout, os.Stderr))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: railers [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the overlay (default)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  keys                List key names accepted in the config")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'railers <command> --help' for command-specific options.")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}

func runOverlay(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: <user config dir>/railers/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: railers run [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the overlay, the tracking loop and the key listeners.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logCfg := cfg.GetLoggingConfig()
	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level:     cfg.LogLevel,
		File:      logCfg.File,
		MaxSizeMB: logCfg.MaxSizeMB,
		MaxFiles:  logCfg.MaxFiles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("overlay exited with error", "error", err)
		return 1
	}
	return 0
}

// run wires every component and blocks in the overlay until ctx is done or
// the overlay window is closed.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	combo, err := cfg.ToggleCombo()
	if err != nil {
		return err
	}
	triggers, err := cfg.TriggerKeys()
	if err != nil {
		return err
	}
	substitute, err := cfg.SubstituteKey()
	if err != nil {
		return err
	}

	windows, err := platform.New()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer windows.Close()

	shared := state.NewShared(triggers, cfg.Remap.EnabledAtStart)
	locator := focus.NewLocator(windows, focus.Target{Class: cfg.Target.Class, Title: cfg.Target.Title}, logger)
	oracle := focus.NewOracle(locator, windows, &shared.Overlay, logger)

	loop := tracker.New(tracker.Config{
		TickRate: cfg.Tracking.TickRateHz,
		Insets:   tracker.Insets(cfg.Overlay.Insets),
		Logger:   logger.With("component", "tracker"),
	}, windows, oracle, shared)

	var remapper *remap.Remapper
	hook, inject, err := keyhook.New(windows, keyhook.Options{PollInterval: cfg.PollInterval()})
	if err != nil {
		logger.Warn("key remapping unavailable", "error", err)
	} else {
		remapper, err = remap.New(remap.Config{
			Substitute: substitute,
			PressDelay: cfg.PressDelay(),
			QueueSize:  cfg.Remap.QueueSize,
			Logger:     logger.With("component", "remap"),
		}, shared, oracle, inject)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	spawn := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	spawn(loop.Run)

	toggler := hotkeys.NewToggler(oracle, &shared.UserHidden, logger.With("component", "hotkey"))
	if src, err := hotkeys.NewSource(windows); err != nil {
		logger.Warn("toggle hotkey unavailable", "error", err)
	} else if startHotkey(src, combo, toggler.Notify, logger) {
		spawn(src.Run)
		spawn(toggler.Run)
	}

	if remapper != nil && startHook(hook, remapper.Notify, logger) {
		logger.Info("key remapping ready", "triggers", shared.Triggers(), "substitute", substitute.String())
		spawn(hook.Run)
		spawn(remapper.Run)
	}

	err = overlay.Run(ctx, overlay.Config{
		Title:  cfg.Overlay.Title,
		Width:  cfg.Overlay.Width,
		Height: cfg.Overlay.Height,
		Logger: logger.With("component", "overlay"),
	}, windows, shared)

	cancel()
	wg.Wait()
	logger.Info("railers stopped")
	return err
}

// startHotkey registers combo on src. On failure src is closed and the
// caller must not run it.
func startHotkey(src hotkeys.Source, combo keys.Combo, fn func(hotkeys.Event), logger *slog.Logger) bool {
	if err := src.Register(combo, fn); err != nil {
		logger.Warn("failed to register toggle hotkey", "hotkey", combo.String(), "error", err)
		src.Close()
		return false
	}
	logger.Info("toggle hotkey registered", "hotkey", combo.String())
	return true
}

// startHook installs the key hook. On failure hook is closed and the caller
// must not run it.
func startHook(hook keyhook.Source, fn func(keyhook.Event), logger *slog.Logger) bool {
	if err := hook.Start(fn); err != nil {
		logger.Warn("failed to install keyboard hook", "error", err)
		hook.Close()
		return false
	}
	return true
}
