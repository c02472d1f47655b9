package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/domain"
)

func newTestBoard(t *testing.T, now time.Time) domain.Board {
	t.Helper()
	b, err := domain.NewBoard("jobs", domain.BoardKindJobs, "Jobs", []domain.Column{
		{ID: "scheduled", Title: "Scheduled", HeaderStyle: "39"},
		{ID: "done", Title: "Done"},
	}, now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	return b
}

func TestRepository_BoardItemLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "nested", "fieldboard.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	b := newTestBoard(t, now)
	if err := repo.CreateBoard(ctx, b); err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	loaded, err := repo.GetBoard(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if loaded.Kind != domain.BoardKindJobs || len(loaded.Columns) != 2 || loaded.Columns[0].HeaderStyle != "39" {
		t.Fatalf("unexpected loaded board %#v", loaded)
	}

	at := now.Add(48 * time.Hour)
	item, err := domain.NewItem(domain.ItemInput{
		ID:          "i1",
		BoardID:     b.ID,
		Status:      "scheduled",
		Title:       "Replace water heater",
		Contact:     "Dana Ruiz",
		ValueCents:  185000,
		ScheduledAt: &at,
		Labels:      []string{"plumbing", "urgent"},
	}, now)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if err := repo.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}

	items, err := repo.ListItems(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 || len(items[0].Labels) != 2 || items[0].ScheduledAt == nil || !items[0].ScheduledAt.Equal(at) {
		t.Fatalf("unexpected items %#v", items)
	}

	if err := item.Move("done", 0, now.Add(time.Minute)); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem(move) error = %v", err)
	}
	item.Archive(now.Add(2 * time.Minute))
	if err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem(archive) error = %v", err)
	}
	active, err := repo.ListItems(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("ListItems(active) error = %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected archived item hidden, got %#v", active)
	}
	all, err := repo.ListItems(ctx, b.ID, true)
	if err != nil {
		t.Fatalf("ListItems(all) error = %v", err)
	}
	if len(all) != 1 || all[0].Status != "done" || all[0].ArchivedAt == nil {
		t.Fatalf("unexpected archived items %#v", all)
	}

	events, err := repo.ListChangeEvents(ctx, b.ID, 10)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Operation != domain.ChangeOperationArchive ||
		events[1].Operation != domain.ChangeOperationMove ||
		events[2].Operation != domain.ChangeOperationCreate {
		t.Fatalf("unexpected event order %#v", events)
	}
	if events[1].Metadata["from_status"] != "scheduled" || events[1].Metadata["to_status"] != "done" {
		t.Fatalf("unexpected move metadata %#v", events[1].Metadata)
	}

	if err := repo.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := repo.GetItem(ctx, item.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRepository_UpdateBoardReplacesColumns(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	b := newTestBoard(t, now)
	if err := repo.CreateBoard(ctx, b); err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if err := b.SetColumns([]domain.Column{{ID: "done", Title: "Finished"}, {ID: "review", Title: "Review"}}, now.Add(time.Hour)); err != nil {
		t.Fatalf("SetColumns() error = %v", err)
	}
	b.Name = "Job Pipeline"
	if err := repo.UpdateBoard(ctx, b); err != nil {
		t.Fatalf("UpdateBoard() error = %v", err)
	}

	boards, err := repo.ListBoards(ctx)
	if err != nil {
		t.Fatalf("ListBoards() error = %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "Job Pipeline" {
		t.Fatalf("unexpected boards %#v", boards)
	}
	cols := boards[0].Columns
	if len(cols) != 2 || cols[0].ID != "done" || cols[0].Title != "Finished" || cols[1].ID != "review" {
		t.Fatalf("unexpected columns %#v", cols)
	}

	missing := b
	missing.ID = "ghost"
	if err := repo.UpdateBoard(ctx, missing); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetBoard(ctx, "ghost"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpdateMissingItem(t *testing.T) {
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	err = repo.UpdateItem(context.Background(), domain.Item{ID: "missing", BoardID: "b", Status: "s", Title: "t"})
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ServiceMoveAppendsAtEnd(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	n := 0
	svc := app.NewService(repo, func() string {
		n++
		return string(rune('0' + n))
	}, nil, app.ServiceConfig{Boards: []app.BoardTemplate{{
		ID:      "b",
		Kind:    "jobs",
		Name:    "B",
		Columns: []app.ColumnTemplate{{ID: "A", Title: "A"}, {ID: "B", Title: "B"}},
	}}})
	if _, err := svc.SyncBoards(ctx); err != nil {
		t.Fatalf("SyncBoards() error = %v", err)
	}
	for _, status := range []string{"A", "B", "A"} {
		if _, err := svc.CreateItem(ctx, app.CreateItemInput{BoardID: "b", Status: status, Title: "item"}); err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}
	}
	if _, err := svc.MoveItem(ctx, "2", "A"); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	lanes, err := svc.BoardLanes(ctx, "b", false)
	if err != nil {
		t.Fatalf("BoardLanes() error = %v", err)
	}
	a, _ := lanes.Lanes.Lane("A")
	got := []string{}
	for _, item := range a.Items {
		got = append(got, item.ID)
	}
	if len(got) != 3 || got[0] != "1" || got[1] != "3" || got[2] != "2" {
		t.Fatalf("unexpected lane A order %#v", got)
	}
	bLane, _ := lanes.Lanes.Lane("B")
	if len(bLane.Items) != 0 {
		t.Fatalf("expected empty lane B, got %#v", bLane.Items)
	}
}
