// cellignorectl edits ignored-cell profiles and previews their effect on a
// simulated braille display.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

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
	verbose    = flag.Bool("v", false, "log engine activity to stderr")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	switch cmd {
	case "profiles":
		cmdProfiles()
	case "show":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: cellignorectl show <driver:cells>")
			os.Exit(1)
		}
		cmdShow(args[0])
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: cellignorectl set <driver:cells> <cell list>")
			os.Exit(1)
		}
		cmdSet(args[0], strings.Join(args[1:], " "))
	case "remove":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: cellignorectl remove <driver:cells>")
			os.Exit(1)
		}
		cmdRemove(args[0])
	case "import":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: cellignorectl import <file.json>")
			os.Exit(1)
		}
		cmdImport(args[0])
	case "export":
		output := ""
		if len(args) >= 1 {
			output = args[0]
		}
		cmdExport(output)
	case "simulate":
		cmdSimulate(args)
	case "validate":
		cmdValidate()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `cellignorectl - Manage ignored braille cells

Usage: cellignorectl [options] <command> [args]

Commands:
  profiles                   List saved profiles
  show <driver:cells>        Show the ignored cells of one display
  set <driver:cells> <list>  Ignore cells, e.g. set alva:40 "3, 6, 8"
  remove <driver:cells>      Stop ignoring cells on a display
  import <file.json>         Merge profiles from a JSON document
  export [file.json]         Write all profiles as a JSON document
  simulate [flags]           Render text on a simulated display
  validate                   Check the configuration file
  help                       Show this help message

Simulate flags:
  -device <driver:cells>     Display to simulate (default: alva:40)
  -rows <n>                  Rows on the display (default: 1)
  -text <text>               Text to render
  -press <n,n,...>           Physical routing keys to press

Options:
  -config <path>  Path to config file (default: ~/.config/cellignore/config.toml)
  -v              Log engine activity`)
}

func resolvedConfigPath() string {
	if *configPath != "" {
		return *configPath
	}
	return config.ConfigPath()
}

func loadConfig() *config.Config {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openProvider(cfg *config.Config) (*store.Provider, store.Store) {
	s, err := store.Open(cfg, resolvedConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	p, err := store.NewProvider(s)
	if err != nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Error loading profiles: %v\n", err)
		os.Exit(1)
	}
	return p, s
}

// announce asks a running daemon to pick up a saved change.
func announce(cfg *config.Config) {
	if !cfg.Notify.DBus {
		return
	}
	if err := notify.SendRefresh(cfg.Notify.BusName); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: daemon not notified: %v\n", err)
	}
}

func cmdProfiles() {
	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	set := p.Profiles()
	if len(set) == 0 {
		fmt.Println("No profiles saved.")
		return
	}
	fmt.Printf("%-24s %s\n", "DISPLAY", "IGNORED CELLS")
	for _, key := range set.Keys() {
		fmt.Printf("%-24s %s\n", key, set[key].Ignored)
	}
}

func cmdShow(key string) {
	if _, _, err := profile.ParseKey(key); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	set := p.Profiles()
	prof, ok := set.Get(key)
	if !ok || prof.Empty() {
		fmt.Printf("%s: no ignored cells\n", key)
	} else {
		fmt.Printf("%s: %s\n", key, prof.Ignored)
	}

	if others := set.Historical(key); len(others) > 0 {
		fmt.Println()
		fmt.Println("Other displays:")
		for _, o := range others {
			fmt.Printf("  %s: %s\n", o.Key(), o.Ignored)
		}
	}
}

func cmdSet(key, text string) {
	_, numCells, err := profile.ParseKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cells, err := profile.ParseInput(text, numCells)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	prof, err := profile.New(key, cells)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	err = p.Update(func(set profile.Set) error {
		set.Put(prof)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving profile: %v\n", err)
		os.Exit(1)
	}
	if prof.Empty() {
		fmt.Printf("%s: no ignored cells\n", prof.Key())
	} else {
		fmt.Printf("%s: %s\n", prof.Key(), prof.Ignored)
	}
	announce(cfg)
}

func cmdRemove(key string) {
	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	removed := false
	err := p.Update(func(set profile.Set) error {
		removed = set.Remove(key)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving profiles: %v\n", err)
		os.Exit(1)
	}
	if !removed {
		fmt.Printf("%s: no profile\n", key)
		return
	}
	fmt.Printf("%s: removed\n", key)
	announce(cfg)
}

func cmdImport(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	incoming, err := profile.ReadDocument(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	err = p.Update(func(set profile.Set) error {
		for _, prof := range incoming {
			set.Put(prof)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving profiles: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d profile(s) from %s\n", len(incoming), path)
	announce(cfg)
}

func cmdExport(output string) {
	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := profile.WriteDocument(w, p.Profiles()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing profiles: %v\n", err)
		os.Exit(1)
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
}

func cmdValidate() {
	path := resolvedConfigPath()
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: invalid\n%v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("%s: OK (%d profile(s))\n", path, len(cfg.Profiles))
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	deviceKey := fs.String("device", "alva:40", "display as driver:cells")
	rows := fs.Int("rows", 1, "rows on the display")
	text := fs.String("text", "", "text to render")
	press := fs.String("press", "", "comma-separated physical routing keys")
	fs.Parse(args)

	driver, numCells, err := profile.ParseKey(*deviceKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	keys, err := parseKeys(*press)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	p, s := openProvider(cfg)
	defer s.Close()

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LevelWarn
	if *verbose {
		logCfg.Level = logging.LevelDebug
	}
	logger := logging.NewWriter(os.Stderr, logCfg)

	dev := remap.Device{Name: driver, Cells: numCells, Rows: *rows}
	display := hostsim.New()
	display.Connect(dev)
	eng := engine.New(display, p, engine.WithLogger(logger.WithComponent("engine").Logger))
	eng.Enable()
	display.SetText(*text)

	fmt.Printf("Display:   %s (%s)\n", dev.Key(), display.Dimensions())
	fmt.Printf("Ignored:   %s\n", eng.Snapshot())
	fmt.Printf("Logical:   %s\n", hostsim.Render(visible(display)))
	fmt.Printf("Physical:  %s\n", hostsim.Render(display.LastWritten()))

	for _, k := range keys {
		before := len(display.Routed)
		display.Press(k)
		if len(display.Routed) > before {
			fmt.Printf("Press %-3d -> cell %d\n", k, display.Routed[len(display.Routed)-1])
		} else {
			fmt.Printf("Press %-3d -> ignored\n", k)
		}
	}
}

// visible returns the logical window the screen reader asked to show.
func visible(d *hostsim.Display) []remap.Cell {
	content := d.Content()
	start := min(d.Window(), len(content))
	end := min(start+d.Dimensions().Cells(), len(content))
	return content[start:end]
}

func parseKeys(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var keys []int
	for _, field := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid routing key %q", field)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
