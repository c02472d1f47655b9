package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/fieldboard/internal/app"
	"github.com/hylla/fieldboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository implements app.Repository over SQLite.
type Repository struct {
	db *sql.DB
}

// Open opens the database at path and applies migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// a memory database is private to its connection
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			board_id TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			header_style TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			PRIMARY KEY(board_id, id),
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		// items.status may name a column that no longer exists on the board.
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			status TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			contact TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			value_cents INTEGER NOT NULL DEFAULT 0,
			scheduled_at TEXT,
			labels_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_position ON board_columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_items_board_status_position ON items(board_id, status, position);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_board_created_at ON change_events(board_id, created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateBoard inserts a board and its columns.
func (r *Repository) CreateBoard(ctx context.Context, b domain.Board) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards(id, kind, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, string(b.Kind), b.Name, ts(b.CreatedAt), ts(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	if err = replaceColumns(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateBoard updates a board and replaces its column set.
func (r *Repository) UpdateBoard(ctx context.Context, b domain.Board) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `
		UPDATE boards SET kind = ?, name = ?, updated_at = ? WHERE id = ?
	`, string(b.Kind), b.Name, ts(b.UpdatedAt), b.ID)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if err = replaceColumns(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// GetBoard returns a board with its columns.
func (r *Repository) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, name, created_at, updated_at FROM boards WHERE id = ?
	`, id)
	b, err := scanBoard(row)
	if err != nil {
		return domain.Board{}, err
	}
	byBoard, err := r.columnsByBoard(ctx, b.ID)
	if err != nil {
		return domain.Board{}, err
	}
	b.Columns = byBoard[b.ID]
	return b, nil
}

// ListBoards lists every board with its columns.
func (r *Repository) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, name, created_at, updated_at FROM boards ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	out := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()
	byBoard, err := r.columnsByBoard(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Columns = byBoard[out[i].ID]
	}
	return out, nil
}

// CreateItem inserts an item and records a create event.
func (r *Repository) CreateItem(ctx context.Context, item domain.Item) (err error) {
	labelsJSON, err := json.Marshal(item.Labels)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO items(
			id, board_id, status, position, title, description, contact, address, source, value_cents,
			scheduled_at, labels_json, created_at, updated_at, archived_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.BoardID,
		item.Status,
		item.Position,
		item.Title,
		item.Description,
		item.Contact,
		item.Address,
		item.Source,
		item.ValueCents,
		nullableTS(item.ScheduledAt),
		string(labelsJSON),
		ts(item.CreatedAt),
		ts(item.UpdatedAt),
		nullableTS(item.ArchivedAt),
	)
	if err != nil {
		return err
	}
	err = insertChangeEvent(ctx, tx, domain.ChangeEvent{
		BoardID:   item.BoardID,
		ItemID:    item.ID,
		Operation: domain.ChangeOperationCreate,
		Metadata: map[string]string{
			"status":   item.Status,
			"position": strconv.Itoa(item.Position),
			"title":    item.Title,
		},
		OccurredAt: item.CreatedAt,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateItem writes an item and records a classified change event.
func (r *Repository) UpdateItem(ctx context.Context, item domain.Item) (err error) {
	labelsJSON, err := json.Marshal(item.Labels)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	prev, err := getItemByID(ctx, tx, item.ID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE items
		SET status = ?, position = ?, title = ?, description = ?, contact = ?, address = ?, source = ?, value_cents = ?,
		    scheduled_at = ?, labels_json = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`,
		item.Status,
		item.Position,
		item.Title,
		item.Description,
		item.Contact,
		item.Address,
		item.Source,
		item.ValueCents,
		nullableTS(item.ScheduledAt),
		string(labelsJSON),
		ts(item.UpdatedAt),
		nullableTS(item.ArchivedAt),
		item.ID,
	)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	op, metadata := classifyItemTransition(prev, item)
	err = insertChangeEvent(ctx, tx, domain.ChangeEvent{
		BoardID:    item.BoardID,
		ItemID:     item.ID,
		Operation:  op,
		Metadata:   metadata,
		OccurredAt: item.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetItem returns one item.
func (r *Repository) GetItem(ctx context.Context, id string) (domain.Item, error) {
	return getItemByID(ctx, r.db, id)
}

// ListItems lists a board's items by status and position.
func (r *Repository) ListItems(ctx context.Context, boardID string, includeArchived bool) ([]domain.Item, error) {
	query := `
		SELECT
			id, board_id, status, position, title, description, contact, address, source, value_cents,
			scheduled_at, labels_json, created_at, updated_at, archived_at
		FROM items
		WHERE board_id = ?
	`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY status ASC, position ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteItem removes an item and records a delete event.
func (r *Repository) DeleteItem(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	item, err := getItemByID(ctx, tx, id)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	err = insertChangeEvent(ctx, tx, domain.ChangeEvent{
		BoardID:   item.BoardID,
		ItemID:    item.ID,
		Operation: domain.ChangeOperationDelete,
		Metadata: map[string]string{
			"status": item.Status,
			"title":  item.Title,
		},
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListChangeEvents lists recent board events, newest first.
func (r *Repository) ListChangeEvents(ctx context.Context, boardID string, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, board_id, item_id, operation, metadata_json, created_at
		FROM change_events
		WHERE board_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event       domain.ChangeEvent
			opRaw       string
			metadataRaw string
			createdRaw  string
		)
		if err := rows.Scan(&event.ID, &event.BoardID, &event.ItemID, &opRaw, &metadataRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = normalizeChangeOperation(opRaw)
		event.OccurredAt = parseTS(createdRaw)
		if strings.TrimSpace(metadataRaw) == "" {
			metadataRaw = "{}"
		}
		if err := json.Unmarshal([]byte(metadataRaw), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode change_events.metadata_json: %w", err)
		}
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (r *Repository) columnsByBoard(ctx context.Context, boardID string) (map[string][]domain.Column, error) {
	query := `SELECT board_id, id, title, description, header_style, position FROM board_columns`
	args := []any{}
	if boardID != "" {
		query += ` WHERE board_id = ?`
		args = append(args, boardID)
	}
	query += ` ORDER BY board_id ASC, position ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]domain.Column{}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.BoardID, &col.ID, &col.Title, &col.Description, &col.HeaderStyle, &col.Position); err != nil {
			return nil, err
		}
		out[col.BoardID] = append(out[col.BoardID], col)
	}
	return out, rows.Err()
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// queryRower represents a single-row read contract used by DB and Tx implementations.
type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func replaceColumns(ctx context.Context, execer execerContext, b domain.Board) error {
	if _, err := execer.ExecContext(ctx, `DELETE FROM board_columns WHERE board_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear board columns: %w", err)
	}
	for idx, col := range b.Columns {
		_, err := execer.ExecContext(ctx, `
			INSERT INTO board_columns(board_id, id, title, description, header_style, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, b.ID, col.ID, col.Title, col.Description, col.HeaderStyle, idx)
		if err != nil {
			return fmt.Errorf("insert board column %q: %w", col.ID, err)
		}
	}
	return nil
}

func getItemByID(ctx context.Context, q queryRower, id string) (domain.Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT
			id, board_id, status, position, title, description, contact, address, source, value_cents,
			scheduled_at, labels_json, created_at, updated_at, archived_at
		FROM items
		WHERE id = ?
	`, id)
	return scanItem(row)
}

// insertChangeEvent inserts a change-event ledger record.
func insertChangeEvent(ctx context.Context, execer execerContext, event domain.ChangeEvent) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode change event metadata: %w", err)
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO change_events(board_id, item_id, operation, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		event.BoardID,
		event.ItemID,
		string(event.Operation),
		string(metadataJSON),
		ts(normalizeEventTS(event.OccurredAt)),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// classifyItemTransition derives the operation category and metadata for an item update.
func classifyItemTransition(prev, next domain.Item) (domain.ChangeOperation, map[string]string) {
	if prev.ArchivedAt == nil && next.ArchivedAt != nil {
		return domain.ChangeOperationArchive, map[string]string{"status": next.Status}
	}
	if prev.ArchivedAt != nil && next.ArchivedAt == nil {
		return domain.ChangeOperationRestore, map[string]string{"status": next.Status}
	}
	if prev.Status != next.Status || prev.Position != next.Position {
		return domain.ChangeOperationMove, map[string]string{
			"from_status":   prev.Status,
			"to_status":     next.Status,
			"from_position": strconv.Itoa(prev.Position),
			"to_position":   strconv.Itoa(next.Position),
		}
	}
	metadata := map[string]string{}
	if fields := changedItemFields(prev, next); len(fields) > 0 {
		metadata["changed_fields"] = strings.Join(fields, ",")
	}
	return domain.ChangeOperationUpdate, metadata
}

func changedItemFields(prev, next domain.Item) []string {
	changed := make([]string, 0)
	if prev.Title != next.Title {
		changed = append(changed, "title")
	}
	if prev.Description != next.Description {
		changed = append(changed, "description")
	}
	if prev.Contact != next.Contact {
		changed = append(changed, "contact")
	}
	if prev.Address != next.Address {
		changed = append(changed, "address")
	}
	if prev.Source != next.Source {
		changed = append(changed, "source")
	}
	if prev.ValueCents != next.ValueCents {
		changed = append(changed, "value_cents")
	}
	if !equalNullableTimes(prev.ScheduledAt, next.ScheduledAt) {
		changed = append(changed, "scheduled_at")
	}
	if strings.Join(prev.Labels, ",") != strings.Join(next.Labels, ",") {
		changed = append(changed, "labels")
	}
	return changed
}

func equalNullableTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// normalizeChangeOperation canonicalizes persisted operation values.
func normalizeChangeOperation(raw string) domain.ChangeOperation {
	switch op := domain.ChangeOperation(strings.TrimSpace(strings.ToLower(raw))); op {
	case domain.ChangeOperationCreate, domain.ChangeOperationUpdate, domain.ChangeOperationMove,
		domain.ChangeOperationArchive, domain.ChangeOperationRestore, domain.ChangeOperationDelete:
		return op
	default:
		return domain.ChangeOperationUpdate
	}
}

func normalizeEventTS(in time.Time) time.Time {
	if in.IsZero() {
		return time.Now().UTC()
	}
	return in.UTC()
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(s scanner) (domain.Board, error) {
	var (
		b          domain.Board
		kindRaw    string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&b.ID, &kindRaw, &b.Name, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, fmt.Errorf("board: %w", app.ErrNotFound)
		}
		return domain.Board{}, err
	}
	b.Kind = domain.BoardKind(kindRaw)
	b.CreatedAt = parseTS(createdRaw)
	b.UpdatedAt = parseTS(updatedRaw)
	return b, nil
}

func scanItem(s scanner) (domain.Item, error) {
	var (
		item         domain.Item
		scheduledRaw sql.NullString
		labelsRaw    string
		createdRaw   string
		updatedRaw   string
		archivedRaw  sql.NullString
	)
	if err := s.Scan(
		&item.ID,
		&item.BoardID,
		&item.Status,
		&item.Position,
		&item.Title,
		&item.Description,
		&item.Contact,
		&item.Address,
		&item.Source,
		&item.ValueCents,
		&scheduledRaw,
		&labelsRaw,
		&createdRaw,
		&updatedRaw,
		&archivedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, fmt.Errorf("item: %w", app.ErrNotFound)
		}
		return domain.Item{}, err
	}
	if strings.TrimSpace(labelsRaw) == "" {
		labelsRaw = "[]"
	}
	if err := json.Unmarshal([]byte(labelsRaw), &item.Labels); err != nil {
		return domain.Item{}, fmt.Errorf("decode items.labels_json: %w", err)
	}
	if item.Labels == nil {
		item.Labels = []string{}
	}
	item.ScheduledAt = parseNullTS(scheduledRaw)
	item.CreatedAt = parseTS(createdRaw)
	item.UpdatedAt = parseTS(updatedRaw)
	item.ArchivedAt = parseNullTS(archivedRaw)
	return item, nil
}

func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}

