package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/board"
	"github.com/hylla/fieldboard/internal/config"
	"github.com/hylla/fieldboard/internal/tui"
)

// runBoardUI opens the interactive board and reloads board templates when the config file changes.
func runBoardUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd, "tui")
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := boardOptions(s.cfg)
	if err != nil {
		return err
	}
	opts = append(opts, tui.WithLogger(s.logger))

	p := programFactory(tui.NewModel(s.svc, opts...))

	ctx := cmd.Context()
	watcher, err := config.NewWatcher(s.configPath, s.defaults, func(next config.Config, loadErr error) {
		if loadErr != nil {
			s.logger.Warn("config reload failed", "config_path", s.configPath, "err", loadErr)
			p.Send(tui.BoardsChangedMsg{Err: loadErr})
			return
		}
		s.svc.SetBoardTemplates(boardTemplates(next))
		boards, syncErr := s.svc.SyncBoards(ctx)
		if syncErr != nil {
			s.logger.Warn("board sync after reload failed", "err", syncErr)
		} else {
			s.logger.Info("config reloaded", "boards", len(boards))
		}
		p.Send(tui.BoardsChangedMsg{Err: syncErr})
	})
	if err != nil {
		s.logger.Warn("config watcher unavailable", "err", err)
	} else if err := watcher.Start(ctx); err != nil {
		s.logger.Warn("config watcher unavailable", "config_path", s.configPath, "err", err)
	}
	defer func() {
		if watcher == nil {
			return
		}
		if err := watcher.Stop(); err != nil {
			s.logger.Warn("stop config watcher failed", "err", err)
		}
	}()

	s.logger.Info("starting tui program loop")
	if _, err := p.Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

// boardOptions maps config onto model options.
func boardOptions(cfg config.Config) ([]tui.Option, error) {
	holdDelay, err := cfg.Drag.HoldDelayDuration()
	if err != nil {
		return nil, err
	}
	return []tui.Option{
		tui.WithDragActivation(board.Activation{
			Distance:      cfg.Drag.Distance,
			HoldDelay:     holdDelay,
			HoldTolerance: cfg.Drag.HoldTolerance,
		}),
		tui.WithDisplayConfig(tui.DisplayConfig{
			ShowUnassigned:   cfg.UI.ShowUnassigned,
			ShowDescriptions: cfg.UI.ShowDescriptions,
		}),
		tui.WithDefaultDeleteMode(app.DeleteMode(cfg.Delete.DefaultMode)),
		tui.WithInitialBoard(cfg.UI.DefaultBoard),
		tui.WithKeyConfig(tui.KeyConfig{
			AddItem:        cfg.Keys.AddItem,
			MoveItemLeft:   cfg.Keys.MoveItemLeft,
			MoveItemRight:  cfg.Keys.MoveItemRight,
			CopyID:         cfg.Keys.CopyID,
			ToggleArchived: cfg.Keys.ToggleArchived,
		}),
	}, nil
}
