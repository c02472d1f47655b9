package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hylla/fieldboard/internal/adapters/storage/sqlite"
	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/config"
	"github.com/hylla/fieldboard/internal/platform"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version))
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the command tree without fang's terminal chrome.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldboard",
		Short: "Kanban boards for field service jobs and leads",
		Long: `fieldboard keeps jobs and sales leads on column boards.

Running it without a subcommand opens the interactive board. Drag cards between
columns with the mouse or move them with [ and ].`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runBoardUI,
	}
	root.PersistentFlags().String("config", "", "path to config TOML (env FIELDBOARD_CONFIG)")
	root.PersistentFlags().String("db", "", "path to sqlite database (env FIELDBOARD_DB_PATH)")
	root.PersistentFlags().String("app", "", "application name for config/data paths (env FIELDBOARD_APP_NAME)")
	root.PersistentFlags().Bool("dev", false, "use dev mode paths (env FIELDBOARD_DEV_MODE)")
	root.PersistentFlags().String("env-file", ".env", "optional dotenv file read before resolving env vars")

	root.AddCommand(
		PathsCmd(),
		ServeCmd(),
		BoardCmd(),
		MoveCmd(),
		ExportCmd(),
		ImportCmd(),
		SeedCmd(),
	)
	return root
}

// rootOptions are the persistent flags after env fallbacks.
type rootOptions struct {
	configPath   string
	dbPath       string
	dbOverridden bool
	appName      string
	devMode      bool
}

func resolveRootOptions(cmd *cobra.Command) (rootOptions, error) {
	flags := cmd.Flags()
	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return rootOptions{}, err
	}

	opts := rootOptions{appName: "fieldboard", devMode: version == "dev"}
	if v := strings.TrimSpace(os.Getenv("FIELDBOARD_APP_NAME")); v != "" {
		opts.appName = v
	}
	if v, ok := parseBoolEnv("FIELDBOARD_DEV_MODE"); ok {
		opts.devMode = v
	}
	opts.configPath = strings.TrimSpace(os.Getenv("FIELDBOARD_CONFIG"))
	opts.dbPath = strings.TrimSpace(os.Getenv("FIELDBOARD_DB_PATH"))

	if flags.Changed("app") {
		opts.appName, _ = flags.GetString("app")
	}
	if flags.Changed("dev") {
		opts.devMode, _ = flags.GetBool("dev")
	}
	if flags.Changed("config") {
		opts.configPath, _ = flags.GetString("config")
	}
	if flags.Changed("db") {
		opts.dbPath, _ = flags.GetString("db")
	}
	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.dbPath = strings.TrimSpace(opts.dbPath)
	opts.dbOverridden = opts.dbPath != ""
	return opts, nil
}

// loadEnvFile reads a dotenv file without overriding variables already set.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// session is the opened runtime shared by every command that touches the store.
type session struct {
	opts       rootOptions
	paths      platform.Paths
	configPath string
	defaults   config.Config
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

func resolvePaths(opts rootOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// openSession loads config, configures logging, opens the store and syncs configured boards.
func openSession(cmd *cobra.Command, command string) (*session, error) {
	opts, err := resolveRootOptions(cmd)
	if err != nil {
		return nil, err
	}
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	s := &session{opts: opts, paths: paths, configPath: opts.configPath}
	if s.configPath == "" {
		s.configPath = paths.ConfigPath
	}
	dbPath := opts.dbPath
	if !opts.dbOverridden {
		dbPath = paths.DBPath
	}

	s.defaults = config.Default(dbPath)
	s.cfg, err = config.Load(s.configPath, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", s.configPath, err)
	}
	if opts.dbOverridden {
		s.cfg.Database.Path = dbPath
	}

	s.logger, err = newRuntimeLogger(cmd.ErrOrStderr(), opts.appName, opts.devMode, s.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Logs stay in the dev file while the board owns the terminal.
		s.logger.SetConsoleEnabled(false)
	}
	s.logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	s.logger.Debug("runtime paths resolved", "config_path", s.configPath, "data_dir", paths.DataDir, "db_path", s.cfg.Database.Path)
	if devPath := s.logger.DevLogPath(); devPath != "" {
		s.logger.Info("dev file logging enabled", "path", devPath)
	}

	if !opts.dbOverridden {
		if err := paths.Ensure(); err != nil {
			s.logger.Warn("create runtime dirs failed", "err", err)
		}
	}
	s.logger.Info("opening sqlite repository", "db_path", s.cfg.Database.Path)
	s.repo, err = sqlite.Open(s.cfg.Database.Path)
	if err != nil {
		s.logger.Error("sqlite open failed", "db_path", s.cfg.Database.Path, "err", err)
		_ = s.logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	s.svc = app.NewService(s.repo, uuid.NewString, nil, app.ServiceConfig{
		DefaultDeleteMode: app.DeleteMode(s.cfg.Delete.DefaultMode),
		Boards:            boardTemplates(s.cfg),
	})
	boards, err := s.svc.SyncBoards(cmd.Context())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("sync boards: %w", err)
	}
	s.logger.Info("boards synced", "count", len(boards))
	return s, nil
}

func (s *session) Close() {
	if s == nil {
		return
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
		}
	}
	if err := s.logger.Close(); err != nil && s.logger.ConsoleEnabled() {
		s.logger.Warn("close runtime log sink failed", "err", err)
	}
}

// boardTemplates maps configured boards onto the service's board templates.
func boardTemplates(cfg config.Config) []app.BoardTemplate {
	out := make([]app.BoardTemplate, 0, len(cfg.Boards))
	for _, b := range cfg.Boards {
		tpl := app.BoardTemplate{
			ID:      b.ID,
			Kind:    b.Kind,
			Name:    b.Name,
			Columns: make([]app.ColumnTemplate, 0, len(b.Columns)),
		}
		for _, c := range b.Columns {
			tpl.Columns = append(tpl.Columns, app.ColumnTemplate{
				ID:          c.ID,
				Title:       c.Title,
				Description: c.Description,
				HeaderStyle: c.HeaderStyle,
			})
		}
		out = append(out, tpl)
	}
	return out
}
