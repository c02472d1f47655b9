package domain

import "time"

// ChangeOperation describes a persisted activity operation for an item.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate  ChangeOperation = "create"
	ChangeOperationUpdate  ChangeOperation = "update"
	ChangeOperationMove    ChangeOperation = "move"
	ChangeOperationArchive ChangeOperation = "archive"
	ChangeOperationRestore ChangeOperation = "restore"
	ChangeOperationDelete  ChangeOperation = "delete"
)

// ChangeEvent represents a single activity-log entry for a board item.
type ChangeEvent struct {
	ID         int64
	BoardID    string
	ItemID     string
	Operation  ChangeOperation
	Metadata   map[string]string
	OccurredAt time.Time
}
