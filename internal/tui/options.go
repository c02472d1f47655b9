package tui

import (
	"strings"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/board"
	"github.com/hylla/fieldboard/internal/domain"
)

// DisplayConfig toggles optional board chrome.
type DisplayConfig struct {
	ShowUnassigned   bool
	ShowDescriptions bool
}

// Logger receives diagnostics the board cannot show inline.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

type Option func(*Model)

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{ShowUnassigned: true}
}

func WithDisplayConfig(cfg DisplayConfig) Option {
	return func(m *Model) {
		m.display = cfg
	}
}

func WithDefaultDeleteMode(mode app.DeleteMode) Option {
	return func(m *Model) {
		switch mode {
		case app.DeleteModeArchive, app.DeleteModeHard:
			m.defaultDeleteMode = mode
		}
	}
}

// WithCardRenderer replaces the card renderer for one board kind.
func WithCardRenderer(kind domain.BoardKind, r CardRenderer) Option {
	return func(m *Model) {
		if r == nil {
			return
		}
		m.renderers[kind] = r
	}
}

// WithDragActivation sets the pointer thresholds that start a drag.
func WithDragActivation(a board.Activation) Option {
	return func(m *Model) {
		m.activation = a
	}
}

func WithLogger(l Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithInitialBoard selects a board by id on first load.
func WithInitialBoard(boardID string) Option {
	return func(m *Model) {
		m.pendingBoardID = strings.TrimSpace(boardID)
	}
}

// WithClipboard overrides how item ids are copied.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// WithKeyConfig applies key binding overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}
