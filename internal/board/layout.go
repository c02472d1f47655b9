// Package board holds the generic Kanban core: column layouts, status partitioning and the
// drag-and-drop coordinator. It knows nothing about what an item is beyond its id and status.
package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLayout and related errors describe layout construction failures.
var (
	ErrInvalidLayout   = errors.New("invalid column layout")
	ErrDuplicateColumn = errors.New("duplicate column id")
)

// Column describes one status lane.
type Column struct {
	ID          string
	Title       string
	Description string
	HeaderStyle string
}

// Layout is an ordered, immutable set of columns. Column ids form the closed set of valid statuses.
type Layout struct {
	columns []Column
	index   map[string]int
}

// NewLayout validates column ids once and returns the layout.
func NewLayout(columns ...Column) (Layout, error) {
	if len(columns) == 0 {
		return Layout{}, fmt.Errorf("%w: no columns", ErrInvalidLayout)
	}
	out := make([]Column, 0, len(columns))
	index := make(map[string]int, len(columns))
	for _, col := range columns {
		col.ID = strings.TrimSpace(col.ID)
		if col.ID == "" {
			return Layout{}, fmt.Errorf("%w: empty column id", ErrInvalidLayout)
		}
		if _, ok := index[col.ID]; ok {
			return Layout{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.ID)
		}
		if strings.TrimSpace(col.Title) == "" {
			col.Title = col.ID
		}
		index[col.ID] = len(out)
		out = append(out, col)
	}
	return Layout{columns: out, index: index}, nil
}

// MustLayout is NewLayout for static layouts; it panics on invalid input.
func MustLayout(columns ...Column) Layout {
	layout, err := NewLayout(columns...)
	if err != nil {
		panic(err)
	}
	return layout
}

// Columns returns a copy of the ordered columns.
func (l Layout) Columns() []Column {
	return append([]Column(nil), l.columns...)
}

// Len returns the number of columns.
func (l Layout) Len() int {
	return len(l.columns)
}

// Index returns the display index for a column id.
func (l Layout) Index(id string) (int, bool) {
	idx, ok := l.index[id]
	return idx, ok
}

// Has reports whether id is a valid status for this layout.
func (l Layout) Has(id string) bool {
	_, ok := l.index[id]
	return ok
}

// IDs returns column ids in display order.
func (l Layout) IDs() []string {
	out := make([]string, 0, len(l.columns))
	for _, col := range l.columns {
		out = append(out, col.ID)
	}
	return out
}

// First returns the leftmost column.
func (l Layout) First() (Column, bool) {
	if len(l.columns) == 0 {
		return Column{}, false
	}
	return l.columns[0], true
}
