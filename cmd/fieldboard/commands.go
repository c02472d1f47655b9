package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hylla/fieldboard/internal/adapters/server"
	"github.com/hylla/fieldboard/internal/adapters/server/common"
	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/domain"
)

// PathsCmd prints where config, data and the database live.
func PathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := resolveRootOptions(cmd)
			if err != nil {
				return err
			}
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			configPath := paths.ConfigPath
			if opts.configPath != "" {
				configPath = opts.configPath
			}
			dbPath := paths.DBPath
			if opts.dbOverridden {
				dbPath = opts.dbPath
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", dbPath)
			_, _ = fmt.Fprintf(out, "snapshots: %s\n", paths.SnapshotDir)
			return nil
		},
	}
}

// ServeCmd exposes the boards over HTTP and MCP.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP endpoint",
		Long: `Serve boards over HTTP until interrupted.

Examples:
  fieldboard serve
  fieldboard serve --bind 0.0.0.0:5437
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, "serve")
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := server.Config{
				HTTPBind:      s.cfg.Server.Bind,
				APIEndpoint:   s.cfg.Server.APIEndpoint,
				MCPEndpoint:   s.cfg.Server.MCPEndpoint,
				ServerName:    s.opts.appName,
				ServerVersion: version,
			}
			if cmd.Flags().Changed("bind") {
				cfg.HTTPBind, _ = cmd.Flags().GetString("bind")
			}
			s.logger.Info("serving", "bind", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
			err = server.Run(cmd.Context(), cfg, server.Dependencies{
				Boards: common.NewAppServiceAdapter(s.svc),
			})
			if err != nil {
				s.logger.Error("server stopped", "err", err)
				return err
			}
			s.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().String("bind", "", "listen address (overrides server.bind)")
	return cmd
}

// BoardCmd prints one board's columns as a table.
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board [board-id]",
		Short: "Print a board's columns and cards",
		Long: `Print a board as a table, one column per board column.

Examples:
  fieldboard board jobs
  fieldboard board leads --archived
  fieldboard board jobs --json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "board")
			if err != nil {
				return err
			}
			defer s.Close()

			boardID := s.cfg.UI.DefaultBoard
			if len(args) == 1 {
				boardID = args[0]
			}
			archived, _ := cmd.Flags().GetBool("archived")
			lanes, err := s.svc.BoardLanes(cmd.Context(), boardID, archived)
			if err != nil {
				return fmt.Errorf("load board %q: %w", boardID, err)
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), boardLanesJSON(lanes))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderBoardTable(lanes))
			return err
		},
	}
	cmd.Flags().Bool("archived", false, "include archived cards")
	cmd.Flags().Bool("json", false, "output in JSON format")
	return cmd
}

type laneJSON struct {
	Column string   `json:"column"`
	Title  string   `json:"title"`
	Items  []string `json:"items"`
}

type boardJSON struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Lanes      []laneJSON `json:"lanes"`
	Unassigned []string   `json:"unassigned"`
}

func boardLanesJSON(lanes app.BoardLanes) boardJSON {
	out := boardJSON{
		ID:         lanes.Board.ID,
		Name:       lanes.Board.Name,
		Lanes:      make([]laneJSON, 0, len(lanes.Lanes.Lanes)),
		Unassigned: itemIDs(lanes.Lanes.Unassigned),
	}
	for _, lane := range lanes.Lanes.Lanes {
		out.Lanes = append(out.Lanes, laneJSON{
			Column: lane.Column.ID,
			Title:  lane.Column.Title,
			Items:  itemIDs(lane.Items),
		})
	}
	return out
}

func itemIDs(items []domain.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

// renderBoardTable lays lanes out side by side, one card title per cell.
func renderBoardTable(lanes app.BoardLanes) string {
	cols := make([][]domain.Item, 0, len(lanes.Lanes.Lanes)+1)
	headers := make([]string, 0, len(lanes.Lanes.Lanes)+1)
	for _, lane := range lanes.Lanes.Lanes {
		headers = append(headers, fmt.Sprintf("%s (%d)", lane.Column.Title, len(lane.Items)))
		cols = append(cols, lane.Items)
	}
	if n := len(lanes.Lanes.Unassigned); n > 0 {
		headers = append(headers, fmt.Sprintf("Unassigned (%d)", n))
		cols = append(cols, lanes.Lanes.Unassigned)
	}

	depth := 0
	for _, items := range cols {
		depth = max(depth, len(items))
	}
	rows := make([][]string, depth)
	for r := range rows {
		rows[r] = make([]string, len(cols))
		for c, items := range cols {
			if r < len(items) {
				rows[r][c] = items[r].Title
			}
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s [%s]", lanes.Board.Name, lanes.Board.Kind))
	return title + "\n" + t.Render()
}

// MoveCmd moves a card to another column of its board.
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <item-id> <status>",
		Short: "Move a card to another column",
		Long: `Move a card to the end of another column on the same board.

Examples:
  fieldboard move 0d5c... in_progress
  fieldboard move 0d5c... won --json
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "move")
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.svc.MoveItem(cmd.Context(), args[0], args[1])
			if err != nil {
				s.logger.Error("move failed", "item_id", args[0], "status", args[1], "err", err)
				return fmt.Errorf("move item: %w", err)
			}
			s.logger.Info("item moved", "item_id", res.Item.ID, "from", res.From, "to", res.Item.Status, "moved", res.Moved)
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"id":     res.Item.ID,
					"from":   res.From,
					"to":     res.Item.Status,
					"moved":  res.Moved,
					"status": res.Item.Status,
				})
			}
			out := cmd.OutOrStdout()
			if !res.Moved {
				_, err = fmt.Fprintf(out, "%s already in %s\n", res.Item.Title, res.Item.Status)
				return err
			}
			_, err = fmt.Fprintf(out, "moved %s: %s -> %s\n", res.Item.Title, res.From, res.Item.Status)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "output in JSON format")
	return cmd
}

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// snapshotFormat picks the codec from an explicit flag or the file extension.
func snapshotFormat(flag, path string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q", flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatJSON, nil
}

func encodeSnapshot(snap app.Snapshot, format string) ([]byte, error) {
	if format == formatYAML {
		out, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot yaml: %w", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return append(out, '\n'), nil
}

func decodeSnapshot(content []byte, format string) (app.Snapshot, error) {
	var snap app.Snapshot
	if format == formatYAML {
		if err := yaml.Unmarshal(content, &snap); err != nil {
			return app.Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
		}
		return snap, nil
	}
	if err := json.Unmarshal(content, &snap); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return snap, nil
}

// ExportCmd writes every board and card to a snapshot.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export boards and cards to a snapshot",
		Long: `Export a snapshot as JSON or YAML.

Examples:
  fieldboard export > backup.json
  fieldboard export --out backup.yaml
  fieldboard export --format yaml --include-archived=false
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")
			includeArchived, _ := cmd.Flags().GetBool("include-archived")
			format, err := snapshotFormat(formatFlag, outPath)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, "export")
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := s.svc.ExportSnapshot(cmd.Context(), includeArchived)
			if err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded, err := encodeSnapshot(snap, format)
			if err != nil {
				return err
			}
			s.logger.Info("snapshot exported", "boards", len(snap.Boards), "items", len(snap.Items), "format", format, "out", outPath)
			return writeOutput(cmd.OutOrStdout(), outPath, encoded)
		},
	}
	cmd.Flags().String("out", "-", "output file path ('-' for stdout)")
	cmd.Flags().String("format", "", "json or yaml (defaults from --out extension, else json)")
	cmd.Flags().Bool("include-archived", true, "include archived cards")
	return cmd
}

// ImportCmd upserts a snapshot into the store.
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import boards and cards from a snapshot",
		Long: `Import a JSON or YAML snapshot. Existing boards and cards with the same ids are replaced.

Examples:
  fieldboard import --in backup.json
  fieldboard import --in backup.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inPath, _ := cmd.Flags().GetString("in")
			formatFlag, _ := cmd.Flags().GetString("format")
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			format, err := snapshotFormat(formatFlag, inPath)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			snap, err := decodeSnapshot(content, format)
			if err != nil {
				return err
			}

			s, err := openSession(cmd, "import")
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.ImportSnapshot(cmd.Context(), snap); err != nil {
				s.logger.Error("snapshot import failed", "in", inPath, "err", err)
				return fmt.Errorf("import snapshot: %w", err)
			}
			s.logger.Info("snapshot imported", "boards", len(snap.Boards), "items", len(snap.Items))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d boards, %d cards\n", len(snap.Boards), len(snap.Items))
			return err
		},
	}
	cmd.Flags().String("in", "", "input snapshot file")
	cmd.Flags().String("format", "", "json or yaml (defaults from --in extension, else json)")
	return cmd
}

// SeedCmd fills empty boards with sample cards.
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add sample jobs and leads to empty boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, "seed")
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.svc.SeedDemo(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
			s.logger.Info("demo data seeded", "items", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cards\n", n)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutput(stdout io.Writer, path string, content []byte) error {
	if path == "" || path == "-" {
		if _, err := stdout.Write(content); err != nil {
			return fmt.Errorf("write to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
