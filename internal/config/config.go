package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/fieldboard/internal/domain"
)

type DeleteMode string

const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Delete   DeleteConfig   `toml:"delete"`
	Drag     DragConfig     `toml:"drag"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
	Keys     KeysConfig     `toml:"keys"`
	Boards   []BoardConfig  `toml:"boards"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

// DragConfig holds pointer activation thresholds in terminal cells.
type DragConfig struct {
	Distance      int    `toml:"distance"`
	HoldDelay     string `toml:"hold_delay"`
	HoldTolerance int    `toml:"hold_tolerance"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type UIConfig struct {
	ShowUnassigned   bool   `toml:"show_unassigned"`
	ShowDescriptions bool   `toml:"show_descriptions"`
	DefaultBoard     string `toml:"default_board"`
}

// KeysConfig overrides board key bindings. Blank values keep the defaults.
type KeysConfig struct {
	AddItem        string `toml:"add_item"`
	MoveItemLeft   string `toml:"move_item_left"`
	MoveItemRight  string `toml:"move_item_right"`
	CopyID         string `toml:"copy_id"`
	ToggleArchived string `toml:"toggle_archived"`
}

// BoardConfig declares one board and its closed set of columns.
type BoardConfig struct {
	ID      string         `toml:"id"`
	Kind    string         `toml:"kind"`
	Name    string         `toml:"name"`
	Columns []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID          string `toml:"id"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	HeaderStyle string `toml:"header_style"`
}

var validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}

func defaultBoards() []BoardConfig {
	return []BoardConfig{
		{
			ID:   "jobs",
			Kind: "jobs",
			Name: "Jobs",
			Columns: []ColumnConfig{
				{ID: "scheduled", Title: "Scheduled", Description: "Booked and waiting for a crew", HeaderStyle: "39"},
				{ID: "in_progress", Title: "In Progress", Description: "Crew on site", HeaderStyle: "214"},
				{ID: "awaiting_parts", Title: "Awaiting Parts", Description: "Blocked on materials", HeaderStyle: "203"},
				{ID: "completed", Title: "Completed", Description: "Work done, ready to invoice", HeaderStyle: "42"},
				{ID: "invoiced", Title: "Invoiced", Description: "Invoice sent", HeaderStyle: "141"},
			},
		},
		{
			ID:   "leads",
			Kind: "leads",
			Name: "Leads",
			Columns: []ColumnConfig{
				{ID: "new", Title: "New", Description: "Fresh inquiries", HeaderStyle: "39"},
				{ID: "contacted", Title: "Contacted", Description: "First call made", HeaderStyle: "214"},
				{ID: "estimate_sent", Title: "Estimate Sent", Description: "Waiting on the customer", HeaderStyle: "141"},
				{ID: "won", Title: "Won", Description: "Converted to a job", HeaderStyle: "42"},
				{ID: "lost", Title: "Lost", Description: "Closed without work", HeaderStyle: "245"},
			},
		},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".fieldboard/log",
			},
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeArchive,
		},
		Drag: DragConfig{
			Distance:      1,
			HoldDelay:     "250ms",
			HoldTolerance: 1,
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			ShowUnassigned:   true,
			ShowDescriptions: false,
			DefaultBoard:     "jobs",
		},
		Boards: defaultBoards(),
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	// [[boards]] in the file replaces the default set instead of merging into it.
	var declared struct {
		Boards []BoardConfig `toml:"boards"`
	}
	if err := toml.Unmarshal(content, &declared); err != nil {
		return Config{}, fmt.Errorf("decode toml boards: %w", err)
	}
	if len(declared.Boards) > 0 {
		cfg.Boards = declared.Boards
	} else {
		cfg.Boards = defaults.Boards
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(strings.TrimSpace(c.Logging.Level))) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	switch c.Delete.DefaultMode {
	case DeleteModeArchive, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	if c.Drag.Distance < 1 {
		return fmt.Errorf("drag.distance must be >= 1")
	}
	if c.Drag.HoldTolerance < 0 {
		return fmt.Errorf("drag.hold_tolerance must be >= 0")
	}
	if _, err := c.Drag.HoldDelayDuration(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}

	return validateBoards(c.Boards)
}

func validateBoards(boards []BoardConfig) error {
	if len(boards) == 0 {
		return errors.New("boards must include at least one board")
	}
	seenBoard := map[string]struct{}{}
	for idx, b := range boards {
		id := strings.ToLower(strings.TrimSpace(b.ID))
		if id == "" {
			return fmt.Errorf("boards[%d].id is required", idx)
		}
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("boards[%d].name is required", idx)
		}
		if _, err := domain.ParseBoardKind(b.Kind); err != nil {
			return fmt.Errorf("boards[%d].kind %q: %w", idx, b.Kind, err)
		}
		if _, ok := seenBoard[id]; ok {
			return fmt.Errorf("boards[%d].id is duplicated: %s", idx, id)
		}
		seenBoard[id] = struct{}{}

		if len(b.Columns) == 0 {
			return fmt.Errorf("boards[%d].columns must include at least one column", idx)
		}
		seenColumn := map[string]struct{}{}
		for cidx, col := range b.Columns {
			colID := strings.ToLower(strings.TrimSpace(col.ID))
			if colID == "" {
				return fmt.Errorf("boards[%d].columns[%d].id is required", idx, cidx)
			}
			if strings.TrimSpace(col.Title) == "" {
				return fmt.Errorf("boards[%d].columns[%d].title is required", idx, cidx)
			}
			if _, ok := seenColumn[colID]; ok {
				return fmt.Errorf("boards[%d].columns[%d].id is duplicated: %s", idx, cidx, colID)
			}
			seenColumn[colID] = struct{}{}
		}
	}
	return nil
}

// HoldDelayDuration parses drag.hold_delay.
func (d DragConfig) HoldDelayDuration() (time.Duration, error) {
	raw := strings.TrimSpace(d.HoldDelay)
	if raw == "" {
		return 0, nil
	}
	delay, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid drag.hold_delay %q: %w", d.HoldDelay, err)
	}
	if delay < 0 {
		return 0, fmt.Errorf("drag.hold_delay must be >= 0")
	}
	return delay, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
