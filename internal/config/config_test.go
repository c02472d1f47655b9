package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/fieldboard.db")
	if cfg.Database.Path != "/tmp/fieldboard.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Delete.DefaultMode != DeleteModeArchive {
		t.Fatalf("unexpected delete mode %q", cfg.Delete.DefaultMode)
	}
	if len(cfg.Boards) != 2 || cfg.Boards[0].ID != "jobs" || cfg.Boards[1].ID != "leads" {
		t.Fatalf("unexpected default boards %#v", cfg.Boards)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	delay, err := cfg.Drag.HoldDelayDuration()
	if err != nil || delay != 250*time.Millisecond {
		t.Fatalf("unexpected hold delay %v, err = %v", delay, err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/fieldboard.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path || len(cfg.Boards) != len(defaults.Boards) {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
path = "/custom/fieldboard.db"

[delete]
default_mode = "hard"

[drag]
distance = 2
hold_delay = "400ms"

[ui]
show_descriptions = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/fieldboard.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Delete.DefaultMode != DeleteModeHard {
		t.Fatalf("unexpected delete mode %q", cfg.Delete.DefaultMode)
	}
	if cfg.Drag.Distance != 2 || cfg.Drag.HoldTolerance != 1 {
		t.Fatalf("unexpected drag config %#v", cfg.Drag)
	}
	if !cfg.UI.ShowDescriptions || !cfg.UI.ShowUnassigned {
		t.Fatalf("unexpected ui config %#v", cfg.UI)
	}
	if len(cfg.Boards) != 2 {
		t.Fatalf("expected default boards kept, got %#v", cfg.Boards)
	}
}

func TestLoadDeclaredBoardsReplaceDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[boards]]
id = "installs"
kind = "jobs"
name = "Installs"

[[boards.columns]]
id = "booked"
title = "Booked"
header_style = "39"

[[boards.columns]]
id = "done"
title = "Done"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Boards) != 1 || cfg.Boards[0].ID != "installs" {
		t.Fatalf("unexpected boards %#v", cfg.Boards)
	}
	cols := cfg.Boards[0].Columns
	if len(cols) != 2 || cols[0].ID != "booked" || cols[0].HeaderStyle != "39" || cols[1].ID != "done" {
		t.Fatalf("unexpected columns %#v", cols)
	}
}

func TestLoadKeysSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[keys]
add_item = "a"
move_item_left = "H"
copy_id = "space"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path, Default("/tmp/fieldboard.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := KeysConfig{AddItem: "a", MoveItemLeft: "H", CopyID: "space"}
	if cfg.Keys != want {
		t.Fatalf("unexpected keys %#v", cfg.Keys)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "db path", mutate: func(c *Config) { c.Database.Path = " " }, want: "database path"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: "logging.level"},
		{name: "delete mode", mutate: func(c *Config) { c.Delete.DefaultMode = "nuke" }, want: "delete.default_mode"},
		{name: "drag distance", mutate: func(c *Config) { c.Drag.Distance = 0 }, want: "drag.distance"},
		{name: "hold delay", mutate: func(c *Config) { c.Drag.HoldDelay = "soon" }, want: "drag.hold_delay"},
		{name: "negative hold delay", mutate: func(c *Config) { c.Drag.HoldDelay = "-1s" }, want: "drag.hold_delay"},
		{name: "bind", mutate: func(c *Config) { c.Server.Bind = "" }, want: "server.bind"},
		{name: "no boards", mutate: func(c *Config) { c.Boards = nil }, want: "at least one board"},
		{name: "board kind", mutate: func(c *Config) { c.Boards[0].Kind = "tickets" }, want: "boards[0].kind"},
		{name: "duplicate board", mutate: func(c *Config) { c.Boards[1].ID = "JOBS" }, want: "boards[1].id is duplicated"},
		{name: "no columns", mutate: func(c *Config) { c.Boards[0].Columns = nil }, want: "at least one column"},
		{
			name: "duplicate column",
			mutate: func(c *Config) {
				c.Boards[0].Columns = []ColumnConfig{{ID: "a", Title: "A"}, {ID: "A", Title: "Again"}}
			},
			want: "columns[1].id is duplicated",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default("/tmp/fieldboard.db")
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[database\npath ="), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/fieldboard.db")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected config dir to exist: %v", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\nshow_descriptions = false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reloaded := make(chan Config, 4)
	w, err := NewWatcher(path, Default("/tmp/fieldboard.db"), func(cfg Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		_ = w.Stop()
	})

	if err := os.WriteFile(path, []byte("[ui]\nshow_descriptions = true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case cfg := <-reloaded:
		if !cfg.UI.ShowDescriptions {
			t.Fatalf("expected reloaded config to show descriptions, got %#v", cfg.UI)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestNewWatcherRequiresCallback(t *testing.T) {
	if _, err := NewWatcher("config.toml", Default("/tmp/fieldboard.db"), nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
