package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_daynote_store.go -package=mocks schedulemanager/internal/storage DayNoteStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayNoteStore defines the interface for day note storage operations.
type DayNoteStore interface {
	// GetByUserAndDueDate gets the day note for one (user, due date).
	// Returns ErrNotFound if absent.
	GetByUserAndDueDate(ctx context.Context, userID, dueDate string) (*DayNote, error)
	// Upsert inserts a new day note or updates the existing one for the same
	// (user, due date) pair.
	Upsert(ctx context.Context, note *DayNote) error
}

// DayNoteRepo provides methods for day note operations.
// It implements the DayNoteStore interface.
type DayNoteRepo struct {
	db *sql.DB
}

// NewDayNoteRepo creates a new DayNoteRepo.
func NewDayNoteRepo(db *sql.DB) *DayNoteRepo {
	return &DayNoteRepo{db: db}
}

// GetByUserAndDueDate gets the day note for one (user, due date).
func (r *DayNoteRepo) GetByUserAndDueDate(ctx context.Context, userID, dueDate string) (*DayNote, error) {
	var note DayNote
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, due_date, issue, memo, created_at, updated_at
		 FROM day_notes WHERE user_id = ? AND due_date = ?`,
		userID, dueDate,
	).Scan(&note.ID, &note.UserID, &note.DueDate, &note.Issue, &note.Memo, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query day note: %w", err)
	}
	note.CreatedAt = parseTime(createdAt)
	note.UpdatedAt = parseTime(updatedAt)
	return &note, nil
}

// Upsert inserts a new day note or updates an existing one. The existing
// row's ID is preserved on update; the unique (user_id, due_date) constraint
// guarantees at most one row per day.
func (r *DayNoteRepo) Upsert(ctx context.Context, note *DayNote) error {
	existing, err := r.GetByUserAndDueDate(ctx, note.UserID, note.DueDate)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to check existing day note: %w", err)
	}

	if existing != nil {
		note.ID = existing.ID
	} else if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := formatTime(time.Now().UTC())

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO day_notes (id, user_id, due_date, issue, memo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 issue = excluded.issue, memo = excluded.memo, updated_at = excluded.updated_at`,
		note.ID, note.UserID, note.DueDate, note.Issue, note.Memo, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert day note: %w", err)
	}
	return nil
}
