package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hylla/fieldboard/internal/domain"
)

type fakeRepo struct {
	boards map[string]domain.Board
	items  map[string]domain.Item
	events []domain.ChangeEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		boards: map[string]domain.Board{},
		items:  map[string]domain.Item{},
	}
}

func (f *fakeRepo) CreateBoard(_ context.Context, b domain.Board) error {
	f.boards[b.ID] = b
	return nil
}

func (f *fakeRepo) UpdateBoard(_ context.Context, b domain.Board) error {
	if _, ok := f.boards[b.ID]; !ok {
		return ErrNotFound
	}
	f.boards[b.ID] = b
	return nil
}

func (f *fakeRepo) GetBoard(_ context.Context, id string) (domain.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return domain.Board{}, ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListBoards(_ context.Context) ([]domain.Board, error) {
	out := make([]domain.Board, 0, len(f.boards))
	for _, b := range f.boards {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRepo) CreateItem(_ context.Context, item domain.Item) error {
	f.items[item.ID] = item
	f.events = append(f.events, domain.ChangeEvent{BoardID: item.BoardID, ItemID: item.ID, Operation: domain.ChangeOperationCreate})
	return nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, item domain.Item) error {
	prev, ok := f.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	op := domain.ChangeOperationUpdate
	if prev.Status != item.Status {
		op = domain.ChangeOperationMove
	}
	f.items[item.ID] = item
	f.events = append(f.events, domain.ChangeEvent{BoardID: item.BoardID, ItemID: item.ID, Operation: op})
	return nil
}

func (f *fakeRepo) GetItem(_ context.Context, id string) (domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.Item{}, ErrNotFound
	}
	return item, nil
}

func (f *fakeRepo) ListItems(_ context.Context, boardID string, includeArchived bool) ([]domain.Item, error) {
	out := make([]domain.Item, 0)
	for _, item := range f.items {
		if item.BoardID != boardID {
			continue
		}
		if !includeArchived && item.ArchivedAt != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) ListChangeEvents(_ context.Context, boardID string, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0)
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].BoardID != boardID {
			continue
		}
		out = append(out, f.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() Clock {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func twoColumnTemplates() []BoardTemplate {
	return []BoardTemplate{{
		ID:   "pipeline",
		Kind: "leads",
		Name: "Pipeline",
		Columns: []ColumnTemplate{
			{ID: "A", Title: "Column A"},
			{ID: "B", Title: "Column B"},
		},
	}}
}

func newSyncedService(t *testing.T, templates []BoardTemplate) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewService(repo, sequentialIDs(), fixedClock(), ServiceConfig{Boards: templates})
	if _, err := svc.SyncBoards(context.Background()); err != nil {
		t.Fatalf("SyncBoards() error = %v", err)
	}
	return svc, repo
}

func laneIDs(t *testing.T, svc *Service, boardID, columnID string) []string {
	t.Helper()
	lanes, err := svc.BoardLanes(context.Background(), boardID, false)
	if err != nil {
		t.Fatalf("BoardLanes() error = %v", err)
	}
	lane, ok := lanes.Lanes.Lane(columnID)
	if !ok {
		t.Fatalf("missing lane %q", columnID)
	}
	out := make([]string, 0, len(lane.Items))
	for _, item := range lane.Items {
		out = append(out, item.Title)
	}
	return out
}

func TestSyncBoardsCreatesDefaults(t *testing.T) {
	svc, repo := newSyncedService(t, nil)
	if len(repo.boards) != 2 {
		t.Fatalf("expected 2 default boards, got %d", len(repo.boards))
	}
	boards, err := svc.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if boards[0].ID != "jobs" || boards[1].ID != "leads" {
		t.Fatalf("unexpected board order %q, %q", boards[0].ID, boards[1].ID)
	}
	if boards[0].Kind != domain.BoardKindJobs || boards[0].DefaultStatus() != "scheduled" {
		t.Fatalf("unexpected jobs board %#v", boards[0])
	}
}

func TestSyncBoardsDerivesIDsFromTitles(t *testing.T) {
	svc, _ := newSyncedService(t, []BoardTemplate{{
		Name: "Service Calls",
		Kind: "jobs",
		Columns: []ColumnTemplate{
			{Title: "On Hold"},
			{Title: "Done!"},
		},
	}})
	b, err := svc.GetBoard(context.Background(), "service_calls")
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if b.Columns[0].ID != "on_hold" || b.Columns[1].ID != "done" {
		t.Fatalf("unexpected column ids %#v", b.Columns)
	}
}

func TestSyncBoardsRejectsDuplicateColumns(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, sequentialIDs(), fixedClock(), ServiceConfig{Boards: []BoardTemplate{{
		ID:      "b",
		Kind:    "jobs",
		Name:    "B",
		Columns: []ColumnTemplate{{ID: "x", Title: "X"}, {ID: "X", Title: "Other X"}},
	}}})
	_, err := svc.SyncBoards(context.Background())
	if !errors.Is(err, ErrInvalidTemplate) || !errors.Is(err, domain.ErrDuplicateColumn) {
		t.Fatalf("expected invalid template duplicate column error, got %v", err)
	}
}

func TestSyncBoardsUpdatesColumnsAndLeavesItemsUnassigned(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())
	if _, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Status: "B", Title: "orphan"}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	svc.SetBoardTemplates([]BoardTemplate{{
		ID:      "pipeline",
		Kind:    "leads",
		Name:    "Pipeline",
		Columns: []ColumnTemplate{{ID: "A", Title: "Column A"}},
	}})
	if _, err := svc.SyncBoards(ctx); err != nil {
		t.Fatalf("SyncBoards() error = %v", err)
	}

	lanes, err := svc.BoardLanes(ctx, "pipeline", false)
	if err != nil {
		t.Fatalf("BoardLanes() error = %v", err)
	}
	if len(lanes.Lanes.Lanes) != 1 || len(lanes.Lanes.Unassigned) != 1 {
		t.Fatalf("expected one lane and one unassigned item, got %#v", lanes.Lanes)
	}
	if lanes.Lanes.Unassigned[0].Title != "orphan" {
		t.Fatalf("unexpected unassigned item %#v", lanes.Lanes.Unassigned[0])
	}
}

func TestCreateItemDefaultsAndValidatesStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())

	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Title: "first"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if item.Status != "A" || item.Position != 0 {
		t.Fatalf("unexpected placement %q/%d", item.Status, item.Position)
	}
	second, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Status: "A", Title: "second"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if second.Position != 1 {
		t.Fatalf("expected appended position 1, got %d", second.Position)
	}
	if _, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Status: "Z", Title: "bad"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "missing", Title: "bad"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveItemAppendsToTargetLane(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())
	for _, in := range []CreateItemInput{
		{BoardID: "pipeline", Status: "A", Title: "1"},
		{BoardID: "pipeline", Status: "B", Title: "2"},
		{BoardID: "pipeline", Status: "A", Title: "3"},
	} {
		if _, err := svc.CreateItem(ctx, in); err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}
	}

	result, err := svc.MoveItem(ctx, "id-2", "A")
	if err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if !result.Moved || result.From != "B" || result.Item.Status != "A" {
		t.Fatalf("unexpected move result %#v", result)
	}

	if diff := cmp.Diff([]string{"1", "3", "2"}, laneIDs(t, svc, "pipeline", "A")); diff != "" {
		t.Fatalf("lane A mismatch (-want +got):\n%s", diff)
	}
	if got := laneIDs(t, svc, "pipeline", "B"); len(got) != 0 {
		t.Fatalf("expected empty lane B, got %#v", got)
	}
}

func TestMoveItemSameColumnIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSyncedService(t, twoColumnTemplates())
	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Status: "A", Title: "1"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	before := len(repo.events)

	result, err := svc.MoveItem(ctx, item.ID, "A")
	if err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if result.Moved {
		t.Fatal("expected same-column move to be a no-op")
	}
	if len(repo.events) != before {
		t.Fatalf("expected no writes, got %d new events", len(repo.events)-before)
	}
}

func TestMoveItemRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())
	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Title: "1"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if _, err := svc.MoveItem(ctx, item.ID, "nowhere"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.MoveItem(ctx, "missing", "B"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemDetails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())
	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Title: "old"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	details := item.Details()
	details.Title = "new"
	details.ValueCents = 4200
	updated, err := svc.UpdateItem(ctx, UpdateItemInput{ItemID: item.ID, Details: details})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if updated.Title != "new" || updated.ValueCents != 4200 || updated.Status != item.Status {
		t.Fatalf("unexpected updated item %#v", updated)
	}
	details.Title = " "
	if _, err := svc.UpdateItem(ctx, UpdateItemInput{ItemID: item.ID, Details: details}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestDeleteItemModes(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSyncedService(t, twoColumnTemplates())
	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Title: "1"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	if err := svc.DeleteItem(ctx, item.ID, ""); err != nil {
		t.Fatalf("DeleteItem(archive) error = %v", err)
	}
	if repo.items[item.ID].ArchivedAt == nil {
		t.Fatal("expected default delete mode to archive")
	}
	if got := laneIDs(t, svc, "pipeline", "A"); len(got) != 0 {
		t.Fatalf("expected archived item hidden, got %#v", got)
	}
	restored, err := svc.RestoreItem(ctx, item.ID)
	if err != nil || restored.ArchivedAt != nil {
		t.Fatalf("RestoreItem() = %#v, %v", restored, err)
	}
	if err := svc.DeleteItem(ctx, item.ID, DeleteModeHard); err != nil {
		t.Fatalf("DeleteItem(hard) error = %v", err)
	}
	if _, ok := repo.items[item.ID]; ok {
		t.Fatal("expected item removed")
	}
	if err := svc.DeleteItem(ctx, item.ID, "shred"); !errors.Is(err, ErrInvalidDeleteMode) {
		t.Fatalf("expected ErrInvalidDeleteMode, got %v", err)
	}
}

func TestListChangeEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, twoColumnTemplates())
	item, err := svc.CreateItem(ctx, CreateItemInput{BoardID: "pipeline", Title: "1"})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if _, err := svc.MoveItem(ctx, item.ID, "B"); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	events, err := svc.ListChangeEvents(ctx, "pipeline", 10)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(events) != 2 || events[0].Operation != domain.ChangeOperationMove {
		t.Fatalf("unexpected events %#v", events)
	}
	if _, err := svc.ListChangeEvents(ctx, " ", 10); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestSeedDemoFillsEmptyBoardsOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncedService(t, nil)
	created, err := svc.SeedDemo(ctx)
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	if created != len(demoItems) {
		t.Fatalf("expected %d seeded items, got %d", len(demoItems), created)
	}
	again, err := svc.SeedDemo(ctx)
	if err != nil {
		t.Fatalf("SeedDemo() second call error = %v", err)
	}
	if again != 0 {
		t.Fatalf("expected second seed to be skipped, got %d", again)
	}
}

func TestSeedDemoSkipsUnconfiguredColumns(t *testing.T) {
	svc, _ := newSyncedService(t, []BoardTemplate{{
		ID:      "leads",
		Kind:    "leads",
		Name:    "Leads",
		Columns: []ColumnTemplate{{ID: "new", Title: "New"}},
	}})
	created, err := svc.SeedDemo(context.Background())
	if err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	if created != 2 {
		t.Fatalf("expected the two new leads, got %d", created)
	}
}
