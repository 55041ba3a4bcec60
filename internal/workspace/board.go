package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/migration"
	"schedulemanager/internal/storage"
)

// ErrInvalidMonth marks a month parameter that is not YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month")

const monthLayout = "2006-01"

// BoardRow is one item on the month board with its one-line digests.
type BoardRow struct {
	ItemID         string `json:"itemId"`
	ParentID       string `json:"parentId,omitempty"`
	DueDate        string `json:"dueDate"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	TemplateType   string `json:"templateType"`
	TodayWork      string `json:"todayWork"`
	Issue          string `json:"issue"`
	Memo           string `json:"memo"`
	ChecklistTotal int    `json:"checklistTotal"`
	ChecklistDone  int    `json:"checklistDone"`
}

// Service builds board views over stored items.
type Service struct {
	items    storage.ItemStore
	blocks   storage.BlockStore
	dayNotes storage.DayNoteStore
}

func NewService(items storage.ItemStore, blocks storage.BlockStore, dayNotes storage.DayNoteStore) *Service {
	return &Service{items: items, blocks: blocks, dayNotes: dayNotes}
}

// blockPayload is the subset of a block's JSON content the board reads.
type blockPayload struct {
	HTML  string `json:"html"`
	Issue string `json:"issue"`
	Memo  string `json:"memo"`
}

// Board returns one row per item due in the given YYYY-MM month, newest due
// date first. Summaries come from the first block's HTML; issue/memo values
// carried in the payload win over extracted ones, and day notes win over both.
func (s *Service) Board(ctx context.Context, userID, month string) ([]BoardRow, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	from := start.Format(migration.DateLayout)
	to := start.AddDate(0, 1, -1).Format(migration.DateLayout)

	items, err := s.items.FindByUserAndDueDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load board items: %w", err)
	}

	rows := make([]BoardRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, s.boardRow(ctx, userID, item))
	}
	return rows, nil
}

func (s *Service) boardRow(ctx context.Context, userID string, item storage.WorkItem) BoardRow {
	log := contextutil.LoggerFromContext(ctx)

	row := BoardRow{
		ItemID:       item.ID,
		ParentID:     item.ParentID,
		DueDate:      item.DueDate,
		Title:        item.Title,
		Status:       item.Status,
		TemplateType: item.TemplateType,
	}

	block, err := s.blocks.FirstByItem(ctx, item.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Item has no content; the row stays bare.
	case err != nil:
		log.WarnContext(ctx, "failed to load first block for board row", "item_id", item.ID, "error", err)
	default:
		var payload blockPayload
		if err := json.Unmarshal([]byte(block.Content), &payload); err != nil {
			log.WarnContext(ctx, "unreadable block payload on board row", "block_id", block.ID, "error", err)
			break
		}
		summary := migration.Summarize(payload.HTML)
		row.TodayWork = summary.TodayWork
		row.Issue = summary.Issue
		row.Memo = summary.Memo
		row.ChecklistTotal = summary.ChecklistTotal
		row.ChecklistDone = summary.ChecklistDone
		if v := migration.OneLine(payload.Issue); v != "" {
			row.Issue = v
		}
		if v := migration.OneLine(payload.Memo); v != "" {
			row.Memo = v
		}
	}

	if item.DueDate == "" {
		return row
	}
	note, err := s.dayNotes.GetByUserAndDueDate(ctx, userID, item.DueDate)
	if errors.Is(err, storage.ErrNotFound) {
		return row
	}
	if err != nil {
		log.WarnContext(ctx, "failed to load day note for board row", "due_date", item.DueDate, "error", err)
		return row
	}
	if strings.TrimSpace(note.Issue) != "" {
		row.Issue = migration.OneLine(note.Issue)
	}
	if strings.TrimSpace(note.Memo) != "" {
		row.Memo = migration.OneLine(note.Memo)
	}
	return row
}
