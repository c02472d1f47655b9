package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the per-user config and data directories.
const DefaultAppName = "fieldboard"

// Paths lists where fieldboard keeps its files.
type Paths struct {
	ConfigPath  string
	DataDir     string
	DBPath      string
	SnapshotDir string
}

// Options tunes path resolution.
type Options struct {
	AppName string
	DevMode bool
}

// baseOverrides maps a GOOS to the env vars that replace the config and data base dirs.
var baseOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// DefaultPaths resolves paths for the current user.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions resolves paths for the current user and platform.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := appNameFor(opts)

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir, err := userDataDir(runtime.GOOS, configDir)
	if err != nil {
		return Paths{}, err
	}

	env := map[string]string{}
	for _, pair := range baseOverrides {
		for _, key := range pair {
			env[key] = os.Getenv(key)
		}
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

func appNameFor(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

func userDataDir(goos, configDir string) (string, error) {
	switch goos {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("user home dir: %w", err)
		}
		return filepath.Join(home, ".local", "share"), nil
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			return v, nil
		}
	}
	return configDir, nil
}

// PathsFor resolves paths from explicit inputs so callers can test every platform.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if keys, ok := baseOverrides[goos]; ok {
		if v := strings.TrimSpace(env[keys[0]]); v != "" {
			configBase = v
		}
		if v := strings.TrimSpace(env[keys[1]]); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:  filepath.Join(configBase, appName, "config.toml"),
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, appName+".db"),
		SnapshotDir: filepath.Join(dataDir, "snapshots"),
	}, nil
}

// Ensure creates the config and data directories.
func (p Paths) Ensure() error {
	for _, dir := range []string{filepath.Dir(p.ConfigPath), p.DataDir, p.SnapshotDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
