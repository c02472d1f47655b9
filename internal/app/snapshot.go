package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/fieldboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "fieldboard.snapshot.v1"

// Snapshot is a portable copy of every board and item.
type Snapshot struct {
	Version    string          `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Boards     []SnapshotBoard `json:"boards" yaml:"boards"`
	Items      []SnapshotItem  `json:"items" yaml:"items"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	ID        string           `json:"id" yaml:"id"`
	Kind      domain.BoardKind `json:"kind" yaml:"kind"`
	Name      string           `json:"name" yaml:"name"`
	Columns   []SnapshotColumn `json:"columns" yaml:"columns"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" yaml:"updated_at"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	HeaderStyle string `json:"header_style,omitempty" yaml:"header_style,omitempty"`
}

// SnapshotItem represents snapshot item data used by this package.
type SnapshotItem struct {
	ID          string     `json:"id" yaml:"id"`
	BoardID     string     `json:"board_id" yaml:"board_id"`
	Status      string     `json:"status" yaml:"status"`
	Position    int        `json:"position" yaml:"position"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Contact     string     `json:"contact,omitempty" yaml:"contact,omitempty"`
	Address     string     `json:"address,omitempty" yaml:"address,omitempty"`
	Source      string     `json:"source,omitempty" yaml:"source,omitempty"`
	ValueCents  int64      `json:"value_cents" yaml:"value_cents"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" yaml:"scheduled_at,omitempty"`
	Labels      []string   `json:"labels" yaml:"labels"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty" yaml:"archived_at,omitempty"`
}

// ExportSnapshot collects every board and its items.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(boards)),
		Items:      make([]SnapshotItem, 0),
	}
	for _, b := range boards {
		snap.Boards = append(snap.Boards, snapshotBoardFromDomain(b))
		items, listErr := s.repo.ListItems(ctx, b.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, item := range items {
			snap.Items = append(snap.Items, snapshotItemFromDomain(item))
		}
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts boards, then items.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, sb := range snap.Boards {
		b := sb.toDomain()
		if _, err := s.repo.GetBoard(ctx, b.ID); err == nil {
			if err := s.repo.UpdateBoard(ctx, b); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateBoard(ctx, b); err != nil {
			return err
		}
	}
	for _, si := range snap.Items {
		item := si.toDomain()
		if _, err := s.repo.GetItem(ctx, item.ID); err == nil {
			if err := s.repo.UpdateItem(ctx, item); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks ids, references and timestamps. Item statuses are not checked against
// board columns; unknown statuses import as unassigned items.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	boardIDs := map[string]struct{}{}
	for i, b := range s.Boards {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("boards[%d].id is required", i)
		}
		if _, exists := boardIDs[b.ID]; exists {
			return fmt.Errorf("duplicate board id: %q", b.ID)
		}
		if b.CreatedAt.IsZero() || b.UpdatedAt.IsZero() {
			return fmt.Errorf("boards[%d] timestamps are required", i)
		}
		if _, err := domain.NewBoard(b.ID, b.Kind, b.Name, b.toDomain().Columns, b.CreatedAt); err != nil {
			return fmt.Errorf("boards[%d]: %w", i, err)
		}
		boardIDs[b.ID] = struct{}{}
	}
	itemIDs := map[string]struct{}{}
	for i, item := range s.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("items[%d].id is required", i)
		}
		if _, exists := itemIDs[item.ID]; exists {
			return fmt.Errorf("duplicate item id: %q", item.ID)
		}
		if _, ok := boardIDs[item.BoardID]; !ok {
			return fmt.Errorf("items[%d] references unknown board_id %q", i, item.BoardID)
		}
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("items[%d].title is required", i)
		}
		if strings.TrimSpace(item.Status) == "" {
			return fmt.Errorf("items[%d].status is required", i)
		}
		if item.Position < 0 {
			return fmt.Errorf("items[%d].position must be >= 0", i)
		}
		if item.ValueCents < 0 {
			return fmt.Errorf("items[%d].value_cents must be >= 0", i)
		}
		if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
			return fmt.Errorf("items[%d] timestamps are required", i)
		}
		itemIDs[item.ID] = struct{}{}
	}
	return nil
}

func (s *Snapshot) sort() {
	sort.Slice(s.Boards, func(i, j int) bool {
		return s.Boards[i].ID < s.Boards[j].ID
	})
	sort.Slice(s.Items, func(i, j int) bool {
		a := s.Items[i]
		b := s.Items[j]
		if a.BoardID == b.BoardID {
			if a.Status == b.Status {
				if a.Position == b.Position {
					return a.ID < b.ID
				}
				return a.Position < b.Position
			}
			return a.Status < b.Status
		}
		return a.BoardID < b.BoardID
	})
}

func snapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	columns := make([]SnapshotColumn, 0, len(b.Columns))
	for _, col := range b.Columns {
		columns = append(columns, SnapshotColumn{
			ID:          col.ID,
			Title:       col.Title,
			Description: col.Description,
			HeaderStyle: col.HeaderStyle,
		})
	}
	return SnapshotBoard{
		ID:        b.ID,
		Kind:      b.Kind,
		Name:      b.Name,
		Columns:   columns,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

func snapshotItemFromDomain(item domain.Item) SnapshotItem {
	return SnapshotItem{
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
		ScheduledAt: copyTimePtr(item.ScheduledAt),
		Labels:      append([]string(nil), item.Labels...),
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(item.ArchivedAt),
	}
}

func (b SnapshotBoard) toDomain() domain.Board {
	columns := make([]domain.Column, 0, len(b.Columns))
	for idx, col := range b.Columns {
		columns = append(columns, domain.Column{
			ID:          strings.TrimSpace(col.ID),
			BoardID:     strings.TrimSpace(b.ID),
			Title:       strings.TrimSpace(col.Title),
			Description: strings.TrimSpace(col.Description),
			HeaderStyle: strings.TrimSpace(col.HeaderStyle),
			Position:    idx,
		})
	}
	return domain.Board{
		ID:        strings.TrimSpace(b.ID),
		Kind:      b.Kind,
		Name:      strings.TrimSpace(b.Name),
		Columns:   columns,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

func (i SnapshotItem) toDomain() domain.Item {
	return domain.Item{
		ID:          strings.TrimSpace(i.ID),
		BoardID:     strings.TrimSpace(i.BoardID),
		Status:      strings.TrimSpace(i.Status),
		Position:    i.Position,
		Title:       strings.TrimSpace(i.Title),
		Description: strings.TrimSpace(i.Description),
		Contact:     strings.TrimSpace(i.Contact),
		Address:     strings.TrimSpace(i.Address),
		Source:      strings.TrimSpace(i.Source),
		ValueCents:  i.ValueCents,
		ScheduledAt: copyTimePtr(i.ScheduledAt),
		Labels:      append([]string(nil), i.Labels...),
		CreatedAt:   i.CreatedAt.UTC(),
		UpdatedAt:   i.UpdatedAt.UTC(),
		ArchivedAt:  copyTimePtr(i.ArchivedAt),
	}
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	ts := in.UTC()
	return &ts
}
