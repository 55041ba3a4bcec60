package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_item_store.go -package=mocks schedulemanager/internal/storage ItemStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemStore defines the interface for work item storage operations.
type ItemStore interface {
	// Create inserts a new work item, assigning an ID and timestamps.
	Create(ctx context.Context, item *WorkItem) error
	// GetByID gets a work item by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*WorkItem, error)
	// FindByUserAndDueDate lists a user's items for one due date,
	// most recently updated first.
	FindByUserAndDueDate(ctx context.Context, userID, dueDate string) ([]WorkItem, error)
	// FindByUserAndDueDateRange lists a user's items with due dates in
	// [from, to], newest date first then most recently updated first.
	FindByUserAndDueDateRange(ctx context.Context, userID, from, to string) ([]WorkItem, error)
}

// ItemRepo provides methods for work item operations.
// It implements the ItemStore interface.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Create inserts a new work item. Blank status and template type default to
// "todo" and "free", matching how items behave elsewhere in the system.
func (r *ItemRepo) Create(ctx context.Context, item *WorkItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = "todo"
	}
	if item.TemplateType == "" {
		item.TemplateType = "free"
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO work_items (id, user_id, parent_id, title, status, template_type, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, nullable(item.ParentID), item.Title, item.Status,
		item.TemplateType, nullable(item.DueDate), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert work item: %w", err)
	}
	return nil
}

// GetByID gets a work item by ID. Returns ErrNotFound if absent.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*WorkItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, parent_id, title, status, template_type, due_date, created_at, updated_at
		 FROM work_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query work item: %w", err)
	}
	return item, nil
}

// FindByUserAndDueDate lists a user's items for one due date, most recently
// updated first. Anchor resolution during import relies on this ordering.
func (r *ItemRepo) FindByUserAndDueDate(ctx context.Context, userID, dueDate string) ([]WorkItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, parent_id, title, status, template_type, due_date, created_at, updated_at
		 FROM work_items WHERE user_id = ? AND due_date = ?
		 ORDER BY updated_at DESC`, userID, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items by due date: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// FindByUserAndDueDateRange lists a user's items with due dates in [from, to].
func (r *ItemRepo) FindByUserAndDueDateRange(ctx context.Context, userID, from, to string) ([]WorkItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, parent_id, title, status, template_type, due_date, created_at, updated_at
		 FROM work_items WHERE user_id = ? AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date DESC, updated_at DESC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items by date range: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*WorkItem, error) {
	var item WorkItem
	var parentID, dueDate sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&item.ID, &item.UserID, &parentID, &item.Title, &item.Status,
		&item.TemplateType, &dueDate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	item.ParentID = parentID.String
	item.DueDate = dueDate.String
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]WorkItem, error) {
	var items []WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work items: %w", err)
	}
	return items, nil
}

// nullable converts an empty string to NULL so optional columns stay NULL
// instead of storing "".
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timeLayout is fixed-width (nanoseconds never trimmed) so lexicographic
// ORDER BY on the column matches chronological order. Rows written in one
// import run tie at second resolution otherwise.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
