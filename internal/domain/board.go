package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/hylla/fieldboard/internal/board"
)

// BoardKind selects how a board's items are presented.
type BoardKind string

// BoardKind values.
const (
	BoardKindJobs  BoardKind = "jobs"
	BoardKindLeads BoardKind = "leads"
)

var validBoardKinds = []BoardKind{BoardKindJobs, BoardKindLeads}

// ParseBoardKind normalizes and validates a kind string.
func ParseBoardKind(raw string) (BoardKind, error) {
	kind := BoardKind(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(validBoardKinds, kind) {
		return "", ErrInvalidKind
	}
	return kind, nil
}

// Board is a named Kanban board with a closed, ordered set of columns.
type Board struct {
	ID        string
	Kind      BoardKind
	Name      string
	Columns   []Column
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBoard constructs a board and validates its columns.
func NewBoard(id string, kind BoardKind, name string, columns []Column, now time.Time) (Board, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if name == "" {
		return Board{}, ErrInvalidName
	}
	if !slices.Contains(validBoardKinds, kind) {
		return Board{}, ErrInvalidKind
	}
	b := Board{
		ID:        id,
		Kind:      kind,
		Name:      name,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := b.SetColumns(columns, now); err != nil {
		return Board{}, err
	}
	b.UpdatedAt = now.UTC()
	return b, nil
}

// SetColumns replaces the column set. Positions follow slice order.
func (b *Board) SetColumns(columns []Column, now time.Time) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	out := make([]Column, 0, len(columns))
	seen := map[string]struct{}{}
	for i, col := range columns {
		normalized, err := NewColumn(col.ID, b.ID, col.Title, col.Description, col.HeaderStyle, i)
		if err != nil {
			return err
		}
		if _, ok := seen[normalized.ID]; ok {
			return ErrDuplicateColumn
		}
		seen[normalized.ID] = struct{}{}
		out = append(out, normalized)
	}
	b.Columns = out
	b.UpdatedAt = now.UTC()
	return nil
}

// Layout returns the board's column layout.
func (b Board) Layout() (board.Layout, error) {
	cols := make([]board.Column, 0, len(b.Columns))
	for _, col := range b.Columns {
		cols = append(cols, col.BoardColumn())
	}
	layout, err := board.NewLayout(cols...)
	if errors.Is(err, board.ErrDuplicateColumn) {
		return board.Layout{}, ErrDuplicateColumn
	}
	if err != nil {
		return board.Layout{}, ErrNoColumns
	}
	return layout, nil
}

// HasStatus reports whether status names one of the board's columns.
func (b Board) HasStatus(status string) bool {
	status = strings.TrimSpace(status)
	for _, col := range b.Columns {
		if col.ID == status {
			return true
		}
	}
	return false
}

// DefaultStatus returns the leftmost column id.
func (b Board) DefaultStatus() string {
	if len(b.Columns) == 0 {
		return ""
	}
	return b.Columns[0].ID
}

// Column returns the column with the given id.
func (b Board) Column(id string) (Column, bool) {
	for _, col := range b.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}
