package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hylla/fieldboard/internal/domain"
)

func TestExportSnapshotIncludesExpectedData(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	b, err := domain.NewBoard("jobs", domain.BoardKindJobs, "Jobs", []domain.Column{{ID: "open", Title: "Open"}, {ID: "done", Title: "Done"}}, now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	repo.boards[b.ID] = b

	i1, _ := domain.NewItem(domain.ItemInput{ID: "i1", BoardID: b.ID, Status: "open", Title: "Job A", ValueCents: 100}, now)
	i2, _ := domain.NewItem(domain.ItemInput{ID: "i2", BoardID: b.ID, Status: "done", Title: "Job B"}, now)
	i2.Archive(now.Add(time.Minute))
	repo.items[i1.ID] = i1
	repo.items[i2.ID] = i2

	svc := NewService(repo, nil, func() time.Time { return now.Add(3 * time.Minute) }, ServiceConfig{})

	active, err := svc.ExportSnapshot(context.Background(), false)
	if err != nil {
		t.Fatalf("ExportSnapshot(active) error = %v", err)
	}
	if active.Version != SnapshotVersion {
		t.Fatalf("unexpected version %q", active.Version)
	}
	if len(active.Boards) != 1 || len(active.Boards[0].Columns) != 2 {
		t.Fatalf("unexpected boards %#v", active.Boards)
	}
	if len(active.Items) != 1 || active.Items[0].ID != "i1" {
		t.Fatalf("unexpected active items %#v", active.Items)
	}

	all, err := svc.ExportSnapshot(context.Background(), true)
	if err != nil {
		t.Fatalf("ExportSnapshot(all) error = %v", err)
	}
	if len(all.Items) != 2 || all.Items[0].ID != "i2" || all.Items[0].ArchivedAt == nil {
		t.Fatalf("unexpected all items %#v", all.Items)
	}
}

func TestImportSnapshotUpsertsAndKeepsUnknownStatuses(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	svc := NewService(repo, nil, func() time.Time { return now }, ServiceConfig{})

	snap := Snapshot{
		Version: SnapshotVersion,
		Boards: []SnapshotBoard{{
			ID:        "leads",
			Kind:      domain.BoardKindLeads,
			Name:      "Leads",
			Columns:   []SnapshotColumn{{ID: "new", Title: "New"}},
			CreatedAt: now,
			UpdatedAt: now,
		}},
		Items: []SnapshotItem{
			{ID: "l1", BoardID: "leads", Status: "new", Title: "Deck", CreatedAt: now, UpdatedAt: now},
			{ID: "l2", BoardID: "leads", Status: "retired", Title: "Roof", CreatedAt: now, UpdatedAt: now},
		},
	}
	if err := svc.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	snap.Items[0].Title = "Deck stain"
	if err := svc.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() second error = %v", err)
	}
	if repo.items["l1"].Title != "Deck stain" {
		t.Fatalf("expected upsert to update title, got %q", repo.items["l1"].Title)
	}

	lanes, err := svc.BoardLanes(context.Background(), "leads", false)
	if err != nil {
		t.Fatalf("BoardLanes() error = %v", err)
	}
	if len(lanes.Lanes.Unassigned) != 1 || lanes.Lanes.Unassigned[0].ID != "l2" {
		t.Fatalf("expected l2 unassigned, got %#v", lanes.Lanes.Unassigned)
	}
}

func TestSnapshotValidate(t *testing.T) {
	now := time.Now()
	valid := SnapshotBoard{ID: "b", Kind: domain.BoardKindJobs, Name: "B", Columns: []SnapshotColumn{{ID: "x", Title: "X"}}, CreatedAt: now, UpdatedAt: now}
	cases := []struct {
		name string
		snap Snapshot
		want string
	}{
		{name: "version", snap: Snapshot{Version: "other"}, want: "unsupported snapshot version"},
		{name: "board id", snap: Snapshot{Boards: []SnapshotBoard{{Name: "x"}}}, want: "boards[0].id is required"},
		{name: "duplicate board", snap: Snapshot{Boards: []SnapshotBoard{valid, valid}}, want: "duplicate board id"},
		{name: "duplicate columns", snap: Snapshot{Boards: []SnapshotBoard{{ID: "b", Kind: domain.BoardKindJobs, Name: "B", Columns: []SnapshotColumn{{ID: "x", Title: "X"}, {ID: "x", Title: "Y"}}, CreatedAt: now, UpdatedAt: now}}}, want: "duplicate column id"},
		{name: "unknown board", snap: Snapshot{Boards: []SnapshotBoard{valid}, Items: []SnapshotItem{{ID: "i", BoardID: "zz", Status: "x", Title: "t", CreatedAt: now, UpdatedAt: now}}}, want: "unknown board_id"},
		{name: "negative value", snap: Snapshot{Boards: []SnapshotBoard{valid}, Items: []SnapshotItem{{ID: "i", BoardID: "b", Status: "x", Title: "t", ValueCents: -1, CreatedAt: now, UpdatedAt: now}}}, want: "value_cents"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.snap.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
