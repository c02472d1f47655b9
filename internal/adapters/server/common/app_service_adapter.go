package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service board APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListBoards lists configured boards in display order.
func (a *AppServiceAdapter) ListBoards(ctx context.Context) ([]BoardView, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	boards, err := a.service.ListBoards(ctx)
	if err != nil {
		return nil, mapAppError("list boards", err)
	}
	out := make([]BoardView, 0, len(boards))
	for _, b := range boards {
		out = append(out, mapBoard(b))
	}
	return out, nil
}

// BoardLanes partitions one board into its columns.
func (a *AppServiceAdapter) BoardLanes(ctx context.Context, boardID string, includeArchived bool) (BoardLanesView, error) {
	if err := a.ready(); err != nil {
		return BoardLanesView{}, err
	}
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return BoardLanesView{}, fmt.Errorf("board_id is required: %w", ErrInvalidRequest)
	}
	lanes, err := a.service.BoardLanes(ctx, boardID, includeArchived)
	if err != nil {
		return BoardLanesView{}, mapAppError("board lanes", err)
	}
	out := BoardLanesView{
		Board:      mapBoard(lanes.Board),
		Lanes:      make([]LaneView, 0, len(lanes.Lanes.Lanes)),
		Unassigned: mapItems(lanes.Lanes.Unassigned),
	}
	for _, lane := range lanes.Lanes.Lanes {
		out.Lanes = append(out.Lanes, LaneView{
			Column: ColumnView{
				ID:          lane.Column.ID,
				Title:       lane.Column.Title,
				Description: lane.Column.Description,
				HeaderStyle: lane.Column.HeaderStyle,
			},
			Items: mapItems(lane.Items),
		})
	}
	return out, nil
}

// CreateItem creates one item on a board.
func (a *AppServiceAdapter) CreateItem(ctx context.Context, in CreateItemRequest) (ItemView, error) {
	if err := a.ready(); err != nil {
		return ItemView{}, err
	}
	if strings.TrimSpace(in.BoardID) == "" {
		return ItemView{}, fmt.Errorf("board_id is required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Title) == "" {
		return ItemView{}, fmt.Errorf("title is required: %w", ErrInvalidRequest)
	}
	item, err := a.service.CreateItem(ctx, app.CreateItemInput{
		BoardID:     in.BoardID,
		Status:      in.Status,
		Title:       in.Title,
		Description: in.Description,
		Contact:     in.Contact,
		Address:     in.Address,
		Source:      in.Source,
		ValueCents:  in.ValueCents,
		ScheduledAt: in.ScheduledAt,
		Labels:      in.Labels,
	})
	if err != nil {
		return ItemView{}, mapAppError("create item", err)
	}
	return mapItem(item), nil
}

// MoveItem moves one item to the end of the target column.
func (a *AppServiceAdapter) MoveItem(ctx context.Context, in MoveItemRequest) (MoveItemResult, error) {
	if err := a.ready(); err != nil {
		return MoveItemResult{}, err
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return MoveItemResult{}, fmt.Errorf("item_id is required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Status) == "" {
		return MoveItemResult{}, fmt.Errorf("status is required: %w", ErrInvalidRequest)
	}
	res, err := a.service.MoveItem(ctx, in.ItemID, in.Status)
	if err != nil {
		return MoveItemResult{}, mapAppError("move item", err)
	}
	return MoveItemResult{
		Item:  mapItem(res.Item),
		From:  res.From,
		Moved: res.Moved,
	}, nil
}

// ListActivity lists recent change events for one board, newest first.
func (a *AppServiceAdapter) ListActivity(ctx context.Context, in ActivityRequest) ([]ActivityEvent, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	boardID := strings.TrimSpace(in.BoardID)
	if boardID == "" {
		return nil, fmt.Errorf("board_id is required: %w", ErrInvalidRequest)
	}
	if in.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultActivityLimit
	}
	if _, err := a.service.GetBoard(ctx, boardID); err != nil {
		return nil, mapAppError("list activity", err)
	}
	events, err := a.service.ListChangeEvents(ctx, boardID, limit)
	if err != nil {
		return nil, mapAppError("list activity", err)
	}
	out := make([]ActivityEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, ActivityEvent{
			ID:         ev.ID,
			BoardID:    ev.BoardID,
			ItemID:     ev.ItemID,
			Operation:  string(ev.Operation),
			Metadata:   ev.Metadata,
			OccurredAt: ev.OccurredAt,
		})
	}
	return out, nil
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	return nil
}

func mapBoard(b domain.Board) BoardView {
	cols := make([]ColumnView, 0, len(b.Columns))
	for _, c := range b.Columns {
		cols = append(cols, ColumnView{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			HeaderStyle: c.HeaderStyle,
		})
	}
	return BoardView{
		ID:        b.ID,
		Kind:      string(b.Kind),
		Name:      b.Name,
		Columns:   cols,
		UpdatedAt: b.UpdatedAt,
	}
}

func mapItems(items []domain.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, mapItem(item))
	}
	return out
}

func mapItem(item domain.Item) ItemView {
	return ItemView{
		ID:          item.ID,
		BoardID:     item.BoardID,
		Status:      item.Status,
		Position:    item.Position,
		Title:       item.Title,
		Description: item.Description,
		Contact:     item.Contact,
		Address:     item.Address,
		Source:      item.Source,
		ValueCents:  item.ValueCents,
		Value:       domain.FormatCents(item.ValueCents),
		ScheduledAt: item.ScheduledAt,
		Labels:      append([]string(nil), item.Labels...),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		ArchivedAt:  item.ArchivedAt,
	}
}

// mapAppError maps app and domain errors onto transport error categories.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrDuplicateColumn),
		errors.Is(err, domain.ErrNoColumns),
		errors.Is(err, app.ErrInvalidDeleteMode):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
