// cellignored runs the cell remapper against a simulated braille display.
//
// It watches the configuration file and, when enabled, serves a D-Bus
// refresh entry point. Every refresh re-renders the display and logs the
// physical buffer.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cellignore/internal/config"
	"cellignore/internal/engine"
	"cellignore/internal/hostsim"
	"cellignore/internal/logging"
	"cellignore/internal/notify"
	"cellignore/internal/profile"
	"cellignore/internal/remap"
	"cellignore/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config file")
	deviceKey  = flag.String("device", "alva:40", "simulated display as driver:cells")
	rows       = flag.Int("rows", 1, "rows on the simulated display")
	text       = flag.String("text", "the quick brown fox jumps over the lazy dog", "text to show")
)

func main() {
	flag.Parse()

	driver, numCells, err := profile.ParseKey(*deviceKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logCfg, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	err = run(loader, cfg, logger, remap.Device{Name: driver, Cells: numCells, Rows: *rows})
	os.Exit(shutdown(logger, err))
}

// shutdown logs err, closes the log file and returns the exit code.
func shutdown(logger *logging.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("daemon failed", "error", err)
		code = 1
	}
	if cerr := logger.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error closing log: %v\n", cerr)
	}
	return code
}

func run(loader *config.Loader, cfg *config.Config, logger *logging.Logger, dev remap.Device) error {
	s, err := store.Open(cfg, loader.Path())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	provider, err := store.NewProvider(s)
	if err != nil {
		return err
	}

	sched := notify.NewScheduler()

	loader.OnChange(func(next *config.Config) {
		if next.Storage.Type == cfg.Storage.Type && (next.Storage.Type == "file" || next.Storage.Type == "") {
			provider.Replace(next.ProfileSet())
		} else if err := provider.Reload(); err != nil {
			logger.Warn("reload profiles", "error", err)
			return
		}
		logger.Debug("config changed", "path", loader.Path())
		sched.Request()
	})
	if err := loader.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer loader.Close()

	if cfg.Notify.DBus {
		svc, err := notify.StartDBus(cfg.Notify.BusName, sched, logger.WithComponent("dbus").Logger)
		if err != nil {
			logger.Warn("D-Bus refresh unavailable", "error", err)
		} else {
			defer svc.Close()
		}
	}

	display := hostsim.New()
	display.Connect(dev)
	eng := engine.New(display, provider, engine.WithLogger(logger.WithComponent("engine").Logger))
	eng.Enable()
	defer eng.Disable()
	display.SetText(*text)

	show := func() {
		logger.Info("display updated",
			"device", dev.Key(),
			"dimensions", display.Dimensions().String(),
			"ignored", eng.Snapshot().String(),
			"cells", hostsim.Render(display.LastWritten()),
		)
	}
	show()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				if err := provider.Reload(); err != nil {
					logger.Warn("reload profiles", "error", err)
					continue
				}
				sched.Request()
				continue
			}
			logger.Info("shutting down", "signal", sig.String())
			return nil

		case <-sched.C():
			eng.RefreshIgnoredCells()
			show()

		case err := <-loader.Errors():
			logger.Warn("config watch", "error", err)
		}
	}
}
