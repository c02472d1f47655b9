package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hylla/fieldboard/internal/board"
	"github.com/hylla/fieldboard/internal/domain"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeArchive and related constants define package defaults.
const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode DeleteMode
	Boards            []BoardTemplate
}

// BoardTemplate describes a board that SyncBoards keeps in the store.
type BoardTemplate struct {
	ID      string
	Kind    string
	Name    string
	Columns []ColumnTemplate
}

// ColumnTemplate describes one configured column.
type ColumnTemplate struct {
	ID          string
	Title       string
	Description string
	HeaderStyle string
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates boards and items over a Repository.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode

	mu             sync.RWMutex
	boardTemplates []BoardTemplate
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeArchive
	}
	templates := cfg.Boards
	if len(templates) == 0 {
		templates = DefaultBoardTemplates()
	}
	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
		boardTemplates:    templates,
	}
}

// DefaultBoardTemplates returns the stock jobs and leads pipelines.
func DefaultBoardTemplates() []BoardTemplate {
	return []BoardTemplate{
		{
			ID:   "jobs",
			Kind: string(domain.BoardKindJobs),
			Name: "Jobs",
			Columns: []ColumnTemplate{
				{ID: "scheduled", Title: "Scheduled", Description: "Booked and waiting for a crew", HeaderStyle: "39"},
				{ID: "in_progress", Title: "In Progress", Description: "Crew on site", HeaderStyle: "214"},
				{ID: "awaiting_parts", Title: "Awaiting Parts", Description: "Blocked on materials", HeaderStyle: "203"},
				{ID: "completed", Title: "Completed", Description: "Work done, ready to invoice", HeaderStyle: "42"},
				{ID: "invoiced", Title: "Invoiced", Description: "Invoice sent", HeaderStyle: "141"},
			},
		},
		{
			ID:   "leads",
			Kind: string(domain.BoardKindLeads),
			Name: "Leads",
			Columns: []ColumnTemplate{
				{ID: "new", Title: "New", Description: "Fresh inquiries", HeaderStyle: "39"},
				{ID: "contacted", Title: "Contacted", Description: "First call made", HeaderStyle: "214"},
				{ID: "estimate_sent", Title: "Estimate Sent", Description: "Waiting on the customer", HeaderStyle: "141"},
				{ID: "won", Title: "Won", Description: "Converted to a job", HeaderStyle: "42"},
				{ID: "lost", Title: "Lost", Description: "Closed without work", HeaderStyle: "245"},
			},
		},
	}
}

// BoardTemplates returns the configured templates.
func (s *Service) BoardTemplates() []BoardTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.boardTemplates)
}

// SetBoardTemplates replaces the templates used by SyncBoards.
func (s *Service) SetBoardTemplates(templates []BoardTemplate) {
	if len(templates) == 0 {
		templates = DefaultBoardTemplates()
	}
	s.mu.Lock()
	s.boardTemplates = slices.Clone(templates)
	s.mu.Unlock()
}

// SyncBoards creates missing boards and updates column definitions from the templates.
// Items are never rewritten, so items in removed columns surface as unassigned.
func (s *Service) SyncBoards(ctx context.Context) ([]domain.Board, error) {
	now := s.clock()
	templates := s.BoardTemplates()
	out := make([]domain.Board, 0, len(templates))
	for idx, tpl := range templates {
		next, err := boardFromTemplate(tpl, now)
		if err != nil {
			return nil, fmt.Errorf("%w: boards[%d]: %w", ErrInvalidTemplate, idx, err)
		}
		existing, err := s.repo.GetBoard(ctx, next.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := s.repo.CreateBoard(ctx, next); err != nil {
				return nil, fmt.Errorf("create board %q: %w", next.ID, err)
			}
			out = append(out, next)
			continue
		case err != nil:
			return nil, err
		}
		if existing.Name == next.Name && existing.Kind == next.Kind && sameColumns(existing.Columns, next.Columns) {
			out = append(out, existing)
			continue
		}
		existing.Name = next.Name
		existing.Kind = next.Kind
		if err := existing.SetColumns(next.Columns, now); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateBoard(ctx, existing); err != nil {
			return nil, fmt.Errorf("update board %q: %w", existing.ID, err)
		}
		out = append(out, existing)
	}
	return out, nil
}

// ListBoards lists boards in template order; boards no longer configured follow by id.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	order := map[string]int{}
	for idx, tpl := range s.BoardTemplates() {
		order[normalizeColumnID(tpl.ID)] = idx
	}
	slices.SortStableFunc(boards, func(a, b domain.Board) int {
		ai, aok := order[a.ID]
		bi, bok := order[b.ID]
		switch {
		case aok && bok:
			return ai - bi
		case aok:
			return -1
		case bok:
			return 1
		default:
			return strings.Compare(a.ID, b.ID)
		}
	})
	return boards, nil
}

// GetBoard returns one board.
func (s *Service) GetBoard(ctx context.Context, boardID string) (domain.Board, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return domain.Board{}, domain.ErrInvalidID
	}
	return s.repo.GetBoard(ctx, boardID)
}

// ListItems lists a board's items in display order: column order, then position.
// Items whose status is not a column sort last.
func (s *Service) ListItems(ctx context.Context, boardID string, includeArchived bool) ([]domain.Item, error) {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, b.ID, includeArchived)
	if err != nil {
		return nil, err
	}
	sortItems(b, items)
	return items, nil
}

// BoardLanes pairs a board with its items partitioned into lanes.
type BoardLanes struct {
	Board domain.Board
	Lanes board.Partitioned[domain.Item]
}

// BoardLanes loads a board and partitions its items.
func (s *Service) BoardLanes(ctx context.Context, boardID string, includeArchived bool) (BoardLanes, error) {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return BoardLanes{}, err
	}
	layout, err := b.Layout()
	if err != nil {
		return BoardLanes{}, err
	}
	items, err := s.repo.ListItems(ctx, b.ID, includeArchived)
	if err != nil {
		return BoardLanes{}, err
	}
	sortItems(b, items)
	return BoardLanes{Board: b, Lanes: board.Partition(layout, items)}, nil
}

// CreateItemInput holds input values for create item operations.
type CreateItemInput struct {
	BoardID     string
	Status      string
	Title       string
	Description string
	Contact     string
	Address     string
	Source      string
	ValueCents  int64
	ScheduledAt *time.Time
	Labels      []string
}

// CreateItem creates an item at the end of its lane. An empty status selects the first column.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	b, err := s.GetBoard(ctx, in.BoardID)
	if err != nil {
		return domain.Item{}, err
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = b.DefaultStatus()
	}
	if !b.HasStatus(status) {
		return domain.Item{}, fmt.Errorf("%w: %q is not a column of board %q", domain.ErrInvalidStatus, status, b.ID)
	}
	position, err := s.nextPosition(ctx, b.ID, status, "")
	if err != nil {
		return domain.Item{}, err
	}
	item, err := domain.NewItem(domain.ItemInput{
		ID:          s.idGen(),
		BoardID:     b.ID,
		Status:      status,
		Position:    position,
		Title:       in.Title,
		Description: in.Description,
		Contact:     in.Contact,
		Address:     in.Address,
		Source:      in.Source,
		ValueCents:  in.ValueCents,
		ScheduledAt: in.ScheduledAt,
		Labels:      in.Labels,
	}, s.clock())
	if err != nil {
		return domain.Item{}, err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// MoveResult reports the outcome of MoveItem.
type MoveResult struct {
	Item  domain.Item
	From  string
	Moved bool
}

// MoveItem moves an item to the end of another column. Moving to the current column is a no-op.
func (s *Service) MoveItem(ctx context.Context, itemID, status string) (MoveResult, error) {
	item, err := s.repo.GetItem(ctx, strings.TrimSpace(itemID))
	if err != nil {
		return MoveResult{}, err
	}
	status = strings.TrimSpace(status)
	result := MoveResult{Item: item, From: item.Status}
	if status == item.Status {
		return result, nil
	}
	b, err := s.repo.GetBoard(ctx, item.BoardID)
	if err != nil {
		return MoveResult{}, err
	}
	if !b.HasStatus(status) {
		return MoveResult{}, fmt.Errorf("%w: %q is not a column of board %q", domain.ErrInvalidStatus, status, b.ID)
	}
	position, err := s.nextPosition(ctx, b.ID, status, item.ID)
	if err != nil {
		return MoveResult{}, err
	}
	if err := item.Move(status, position, s.clock()); err != nil {
		return MoveResult{}, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return MoveResult{}, err
	}
	result.Item = item
	result.Moved = true
	return result, nil
}

// UpdateItemInput holds input values for update item operations.
type UpdateItemInput struct {
	ItemID  string
	Details domain.ItemDetails
}

// UpdateItem replaces an item's editable fields.
func (s *Service) UpdateItem(ctx context.Context, in UpdateItemInput) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, strings.TrimSpace(in.ItemID))
	if err != nil {
		return domain.Item{}, err
	}
	if err := item.UpdateDetails(in.Details, s.clock()); err != nil {
		return domain.Item{}, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// DeleteItem archives or removes an item.
func (s *Service) DeleteItem(ctx context.Context, itemID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}
	switch mode {
	case DeleteModeArchive:
		item, err := s.repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		item.Archive(s.clock())
		return s.repo.UpdateItem(ctx, item)
	case DeleteModeHard:
		return s.repo.DeleteItem(ctx, itemID)
	default:
		return ErrInvalidDeleteMode
	}
}

// RestoreItem clears an item's archive marker.
func (s *Service) RestoreItem(ctx context.Context, itemID string) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	item.Restore(s.clock())
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// ListChangeEvents lists recent change events for a board.
func (s *Service) ListChangeEvents(ctx context.Context, boardID string, limit int) ([]domain.ChangeEvent, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListChangeEvents(ctx, boardID, limit)
}

// nextPosition returns one past the highest position in a lane, ignoring skipID.
func (s *Service) nextPosition(ctx context.Context, boardID, status, skipID string) (int, error) {
	items, err := s.repo.ListItems(ctx, boardID, true)
	if err != nil {
		return 0, err
	}
	position := 0
	for _, item := range items {
		if item.ID == skipID || item.Status != status {
			continue
		}
		if item.Position >= position {
			position = item.Position + 1
		}
	}
	return position, nil
}

func boardFromTemplate(tpl BoardTemplate, now time.Time) (domain.Board, error) {
	kind, err := domain.ParseBoardKind(tpl.Kind)
	if err != nil {
		return domain.Board{}, err
	}
	id := normalizeColumnID(tpl.ID)
	if id == "" {
		id = normalizeColumnID(tpl.Name)
	}
	columns := make([]domain.Column, 0, len(tpl.Columns))
	for _, col := range tpl.Columns {
		colID := normalizeColumnID(col.ID)
		if colID == "" {
			colID = normalizeColumnID(col.Title)
		}
		columns = append(columns, domain.Column{
			ID:          colID,
			Title:       col.Title,
			Description: col.Description,
			HeaderStyle: col.HeaderStyle,
		})
	}
	return domain.NewBoard(id, kind, tpl.Name, columns, now)
}

func sameColumns(a, b []domain.Column) bool {
	return slices.EqualFunc(a, b, func(x, y domain.Column) bool {
		return x.ID == y.ID && x.Title == y.Title && x.Description == y.Description && x.HeaderStyle == y.HeaderStyle && x.Position == y.Position
	})
}

func sortItems(b domain.Board, items []domain.Item) {
	rank := func(status string) int {
		for idx, col := range b.Columns {
			if col.ID == status {
				return idx
			}
		}
		return len(b.Columns)
	}
	slices.SortStableFunc(items, func(x, y domain.Item) int {
		if rx, ry := rank(x.Status), rank(y.Status); rx != ry {
			return rx - ry
		}
		if x.Position != y.Position {
			return x.Position - y.Position
		}
		return strings.Compare(x.ID, y.ID)
	})
}

// normalizeColumnID lowercases a label into a snake_case identifier.
func normalizeColumnID(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSep := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
