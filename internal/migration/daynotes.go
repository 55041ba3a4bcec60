package migration

import (
	"context"
	"fmt"
	"strings"

	"schedulemanager/internal/storage"
)

// dayNoteAggregator merges issue/memo fragments that share a due date.
// Fragments already present as an exact substring are dropped; new fragments
// append on their own line. One aggregator lives per tabular source file.
type dayNoteAggregator struct {
	issueByDate map[string]*strings.Builder
	memoByDate  map[string]*strings.Builder
}

func newDayNoteAggregator() *dayNoteAggregator {
	return &dayNoteAggregator{
		issueByDate: make(map[string]*strings.Builder),
		memoByDate:  make(map[string]*strings.Builder),
	}
}

func (a *dayNoteAggregator) addIssue(dueDate, value string) {
	mergeDayText(a.issueByDate, dueDate, value)
}

func (a *dayNoteAggregator) addMemo(dueDate, value string) {
	mergeDayText(a.memoByDate, dueDate, value)
}

func mergeDayText(target map[string]*strings.Builder, dueDate, value string) {
	if dueDate == "" {
		return
	}
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return
	}
	sb, ok := target[dueDate]
	if !ok {
		sb = &strings.Builder{}
		target[dueDate] = sb
	}
	if sb.Len() > 0 && !strings.Contains(sb.String(), normalized) {
		sb.WriteString("\n")
	}
	if !strings.Contains(sb.String(), normalized) {
		sb.WriteString(normalized)
	}
}

// flush upserts one day note per accumulated due date. Only fields with
// non-blank accumulated text overwrite; a blank accumulator leaves an
// existing field untouched.
func (a *dayNoteAggregator) flush(ctx context.Context, dayNotes storage.DayNoteStore, userID string) error {
	dates := make(map[string]bool)
	for date := range a.issueByDate {
		dates[date] = true
	}
	for date := range a.memoByDate {
		dates[date] = true
	}

	for date := range dates {
		note, err := dayNotes.GetByUserAndDueDate(ctx, userID, date)
		if err == storage.ErrNotFound {
			note = &storage.DayNote{UserID: userID, DueDate: date}
		} else if err != nil {
			return fmt.Errorf("failed to load day note for %s: %w", date, err)
		}

		if sb, ok := a.issueByDate[date]; ok {
			if issue := strings.TrimSpace(sb.String()); issue != "" {
				note.Issue = issue
			}
		}
		if sb, ok := a.memoByDate[date]; ok {
			if memo := strings.TrimSpace(sb.String()); memo != "" {
				note.Memo = memo
			}
		}
		if err := dayNotes.Upsert(ctx, note); err != nil {
			return fmt.Errorf("failed to upsert day note for %s: %w", date, err)
		}
	}
	return nil
}
