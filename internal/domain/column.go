package domain

import (
	"strings"

	"github.com/hylla/fieldboard/internal/board"
)

// Column represents one status lane of a board.
type Column struct {
	ID          string
	BoardID     string
	Title       string
	Description string
	HeaderStyle string
	Position    int
}

// NewColumn constructs a new value for this package.
func NewColumn(id, boardID, title, description, headerStyle string, position int) (Column, error) {
	id = strings.TrimSpace(id)
	boardID = strings.TrimSpace(boardID)
	title = strings.TrimSpace(title)
	if id == "" || boardID == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		return Column{}, ErrInvalidTitle
	}
	if position < 0 {
		return Column{}, ErrInvalidPosition
	}
	return Column{
		ID:          id,
		BoardID:     boardID,
		Title:       title,
		Description: strings.TrimSpace(description),
		HeaderStyle: strings.TrimSpace(headerStyle),
		Position:    position,
	}, nil
}

// BoardColumn converts the column to its layout form.
func (c Column) BoardColumn() board.Column {
	return board.Column{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		HeaderStyle: c.HeaderStyle,
	}
}
