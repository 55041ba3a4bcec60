package storage

import "time"

// WorkItem is a unit of work on a user's board. Items imported from a legacy
// archive form a hierarchy through ParentID.
type WorkItem struct {
	ID           string // UUID
	UserID       string // UUID of the owning user
	ParentID     string // UUID of the parent item, empty for roots
	Title        string
	Status       string // "todo", "doing", "done"
	TemplateType string // "worklog", "meeting", "free"
	DueDate      string // "YYYY-MM-DD", empty when the item has no date
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Block is a rich-text content block attached to a work item. Content holds a
// JSON payload; during import every item gets exactly one primary block with
// sort order 0 and type "paragraph".
type Block struct {
	ID        string // UUID
	ItemID    string
	SortOrder int
	Type      string
	Content   string // JSON: {"html": ..., "issue"?: ..., "memo"?: ...}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayNote holds per-day issue/memo text. At most one row exists per
// (user, due date); imports merge into it rather than duplicating.
type DayNote struct {
	ID        string // UUID
	UserID    string
	DueDate   string // "YYYY-MM-DD"
	Issue     string
	Memo      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileAsset records an uploaded or imported binary file linked to a work item.
// StoredName is the name under which the file store keeps the bytes.
type FileAsset struct {
	ID           string // UUID
	UserID       string
	ItemID       string
	OriginalName string
	StoredName   string
	MimeType     string
	SizeBytes    int64
	CreatedAt    time.Time
}
