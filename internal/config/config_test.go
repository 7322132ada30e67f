package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cellignore/internal/profile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Version != Version {
		t.Errorf("expected version %d, got %d", Version, cfg.Version)
	}
	if cfg.Storage.Type != "file" {
		t.Errorf("expected file storage, got %s", cfg.Storage.Type)
	}
	if len(cfg.Profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(cfg.Profiles))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CELLIGNORE_DIR", "/tmp/cellignore-test")
	if got := ConfigPath(); got != filepath.Join("/tmp/cellignore-test", "config.toml") {
		t.Errorf("unexpected config path %s", got)
	}
	if !strings.HasPrefix(DefaultConfig().Storage.Path, "/tmp/cellignore-test") {
		t.Errorf("storage path should live in the config dir: %s", DefaultConfig().Storage.Path)
	}
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level, got %s", cfg.Logging.Level)
	}
}

func TestLoadFormats(t *testing.T) {
	files := map[string]string{
		"config.toml": `
version = 1

[profiles]
"focus:40" = [7, 3]
"alva:12" = "2, 5"

[storage]
type = "memory"
`,
		"config.json": `{
  "version": 1,
  "profiles": {"focus:40": [7, 3], "alva:12": "2, 5"},
  "storage": {"type": "memory"}
}`,
		"config.yaml": `
version: 1
profiles:
  focus:40: [7, 3]
  alva:12: "2, 5"
storage:
  type: memory
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Storage.Type != "memory" {
				t.Errorf("expected memory storage, got %s", cfg.Storage.Type)
			}
			// Unset fields keep their defaults.
			if cfg.Logging.Format != "text" {
				t.Errorf("expected default format, got %s", cfg.Logging.Format)
			}
			set := cfg.ProfileSet()
			if got := set["focus:40"].Ignored.String(); got != "3, 7" {
				t.Errorf("focus:40: got %s", got)
			}
			if got := set["alva:12"].Ignored.String(); got != "2, 5" {
				t.Errorf("alva:12: got %s", got)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("profiles = [1, 2"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "config"+ext)
			cfg := DefaultConfig()
			cfg.SetProfiles(profile.Set{
				"focus:40": {Driver: "focus", NumCells: 40, Ignored: profile.CellList{3, 7}},
				"alva:12":  {Driver: "alva", NumCells: 12},
			})
			cfg.Notify.DebounceMs = 250

			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file left behind")
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(loaded.Profiles) != 1 {
				t.Fatalf("expected 1 profile, got %v", loaded.Profiles)
			}
			if loaded.Profiles["focus:40"].String() != "3, 7" {
				t.Errorf("unexpected cells %v", loaded.Profiles["focus:40"])
			}
			if loaded.Notify.DebounceMs != 250 {
				t.Errorf("expected debounce 250, got %d", loaded.Notify.DebounceMs)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CELLIGNORE_LOG_LEVEL", "debug")
	t.Setenv("CELLIGNORE_STORAGE_TYPE", "sqlite")
	t.Setenv("CELLIGNORE_STORAGE_PATH", "/tmp/p.db")
	t.Setenv("CELLIGNORE_DBUS", "true")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Logging.Level != "debug" {
		t.Errorf("level: got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.Path != "/tmp/p.db" {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if !cfg.Notify.DBus {
		t.Error("expected D-Bus enabled")
	}
}

func TestLoadFileSkipsEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CELLIGNORE_LOG_LEVEL", "error")

	stored, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if stored.Logging.Level != "info" {
		t.Errorf("LoadFile applied overrides: level %s", stored.Logging.Level)
	}

	effective, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if effective.Logging.Level != "error" {
		t.Errorf("Load should apply overrides: level %s", effective.Logging.Level)
	}
}

func TestValidateLoggingCaseInsensitive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "JSON"
	cfg.Logging.Output = "Stdout"
	cfg.Logging.Level = "DEBUG"
	if err := cfg.Validate(); err != nil {
		t.Errorf("mixed-case logging settings should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 9
	cfg.Profiles["broken"] = profile.CellList{1}
	cfg.Profiles[":40"] = profile.CellList{1}
	cfg.Profiles["focus:0"] = profile.CellList{1}
	cfg.Profiles["focus:40"] = profile.CellList{99}
	cfg.Storage.Type = "postgres"
	cfg.Logging.Level = "loud"
	cfg.Notify.DebounceMs = -1

	err := cfg.Validate()
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{
		"version", `profiles["broken"]`, `profiles[":40"]`, `profiles["focus:0"]`,
		"storage.type", "logging.level", "notify.debounce_ms",
	} {
		if !fields[want] {
			t.Errorf("missing error for %s in %v", want, err)
		}
	}
	// Stale cell numbers are not a configuration error.
	if fields[`profiles["focus:40"]`] {
		t.Error("out-of-range cells should not fail validation")
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles["focus:40"] = profile.CellList{3}
	clone := cfg.Clone()
	clone.Profiles["focus:40"][0] = 9
	if cfg.Profiles["focus:40"][0] != 3 {
		t.Error("clone shares profile storage")
	}
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := DefaultConfig()
	cfg.Notify.DebounceMs = 10
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	if _, err := loader.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	changed := make(chan *Config, 4)
	notified := make(chan struct{}, 4)
	loader.OnChange(func(c *Config) { changed <- c })
	loader.OnChange(func(*Config) { notified <- struct{}{} })
	if err := loader.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer loader.Close()

	cfg.Profiles["focus:40"] = profile.CellList{5}
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.Profiles["focus:40"].String() != "5" {
			t.Errorf("unexpected profiles %v", c.Profiles)
		}
		if loader.Config() != c {
			t.Error("loader should hold the reloaded config")
		}
		select {
		case <-notified:
		case <-time.After(time.Second):
			t.Error("second callback not invoked")
		}
	case err := <-loader.Errors():
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
