// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrUnavailable reports a transport wired without a backing service.
var ErrUnavailable = errors.New("service unavailable")

// defaultActivityLimit caps activity reads when callers omit a limit.
const defaultActivityLimit = 50

// ColumnView is one column definition as seen by API callers.
type ColumnView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	HeaderStyle string `json:"header_style,omitempty"`
}

// BoardView summarizes one board and its columns.
type BoardView struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	Name      string       `json:"name"`
	Columns   []ColumnView `json:"columns"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ItemView is one job or lead card.
type ItemView struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Address     string     `json:"address,omitempty"`
	Source      string     `json:"source,omitempty"`
	ValueCents  int64      `json:"value_cents"`
	Value       string     `json:"value"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// LaneView is one column with its items in display order.
type LaneView struct {
	Column ColumnView `json:"column"`
	Items  []ItemView `json:"items"`
}

// BoardLanesView is a partitioned board. Items whose status matches no column land in Unassigned.
type BoardLanesView struct {
	Board      BoardView  `json:"board"`
	Lanes      []LaneView `json:"lanes"`
	Unassigned []ItemView `json:"unassigned"`
}

// CreateItemRequest captures input for one new item.
type CreateItemRequest struct {
	BoardID     string     `json:"board_id"`
	Status      string     `json:"status,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Address     string     `json:"address,omitempty"`
	Source      string     `json:"source,omitempty"`
	ValueCents  int64      `json:"value_cents,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
}

// MoveItemRequest moves one item to the end of another column.
type MoveItemRequest struct {
	ItemID string `json:"item_id"`
	Status string `json:"status"`
}

// MoveItemResult reports the outcome of a move. Moved is false when the item already had the status.
type MoveItemResult struct {
	Item  ItemView `json:"item"`
	From  string   `json:"from"`
	Moved bool     `json:"moved"`
}

// ActivityRequest selects recent change events for one board.
type ActivityRequest struct {
	BoardID string
	Limit   int
}

// ActivityEvent is one change-ledger row.
type ActivityEvent struct {
	ID         int64             `json:"id"`
	BoardID    string            `json:"board_id"`
	ItemID     string            `json:"item_id"`
	Operation  string            `json:"operation"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// BoardService is the board surface shared by HTTP and MCP transports.
type BoardService interface {
	ListBoards(context.Context) ([]BoardView, error)
	BoardLanes(ctx context.Context, boardID string, includeArchived bool) (BoardLanesView, error)
	CreateItem(context.Context, CreateItemRequest) (ItemView, error)
	MoveItem(context.Context, MoveItemRequest) (MoveItemResult, error)
	ListActivity(context.Context, ActivityRequest) ([]ActivityEvent, error)
}
