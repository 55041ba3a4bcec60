package migration

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/storage"
)

// Column aliases seen across legacy tabular exports. findColumn matches the
// first header equal to or containing an alias, so "날짜(필수)" still binds
// the date column.
var (
	dateAliases  = []string{"날짜", "date", "캘린더"}
	workAliases  = []string{"오늘의 업무", "업무", "title", "task"}
	issueAliases = []string{"이슈", "issue"}
	memoAliases  = []string{"메모", "memo", "note"}
)

// Title fallback columns are matched exactly, not by alias.
const (
	titleHeader    = "오늘의 업무 제목"
	altTitleHeader = "제목"
)

const maxTitleRunes = 120

type tabularColumns struct {
	date     int
	work     int
	issue    int
	memo     int
	title    int
	altTitle int
}

// ingestTabular imports one CSV file: one work item per row, a content block
// when the row has any body text, and day-note accumulation keyed by the row
// date. A malformed row records one failure and the loop continues; row
// numbers in failures are 1-based counting the header line.
func (s *Service) ingestTabular(ctx context.Context, run *importRun, entry ArchiveEntry) int {
	log := contextutil.LoggerFromContext(ctx)

	reader := csv.NewReader(bytes.NewReader(entry.Data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		run.report.addFailure(fmt.Sprintf("CSV 파싱 실패(%s): %v",
			entry.Path, fmt.Errorf("%w: %v", ErrRecordParse, err)))
		return 0
	}

	cols := tabularColumns{
		date:     findColumn(header, dateAliases),
		work:     findColumn(header, workAliases),
		issue:    findColumn(header, issueAliases),
		memo:     findColumn(header, memoAliases),
		title:    findExactColumn(header, titleHeader),
		altTitle: findExactColumn(header, altTitleHeader),
	}

	agg := newDayNoteAggregator()
	count := 0
	index := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		index++
		if err != nil {
			run.report.addFailure(fmt.Sprintf("CSV 레코드 파싱 실패(%s, %d행): %v",
				entry.Path, index+1, fmt.Errorf("%w: %v", ErrRecordParse, err)))
			continue
		}
		if err := s.ingestRow(ctx, run, agg, record, cols, index); err != nil {
			run.report.addFailure(fmt.Sprintf("CSV 레코드 파싱 실패(%s, %d행): %v",
				entry.Path, index+1, err))
			continue
		}
		count++
	}

	if err := agg.flush(ctx, s.dayNotes, run.userID); err != nil {
		run.report.addFailure(fmt.Sprintf("CSV 파싱 실패(%s): %v", entry.Path, err))
	}

	log.DebugContext(ctx, "tabular file ingested", "path", entry.Path, "rows", count)
	return count
}

func (s *Service) ingestRow(
	ctx context.Context,
	run *importRun,
	agg *dayNoteAggregator,
	record []string,
	cols tabularColumns,
	index int,
) error {
	dueDate, hasDate := ParseFlexibleDate(cell(record, cols.date))

	title := dueDate
	if !hasDate {
		title = firstNonBlank(
			cell(record, cols.title),
			cell(record, cols.altTitle),
			fmt.Sprintf("%s %d", placeholderTitle, index),
		)
	}
	title = strings.TrimSpace(splitLines(title)[0])
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}

	item := &storage.WorkItem{
		UserID:       run.userID,
		Title:        normalizeTitle(title),
		Status:       "todo",
		TemplateType: "worklog",
		DueDate:      dueDate,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordParse, err)
	}

	work := cell(record, cols.work)
	issue := cell(record, cols.issue)
	memo := cell(record, cols.memo)

	if html := tabularRowHTML(work, issue, memo); strings.TrimSpace(html) != "" {
		content, err := worklogPayload(html, issue, memo)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRecordParse, err)
		}
		block := &storage.Block{ItemID: item.ID, SortOrder: 0, Type: "paragraph", Content: content}
		if err := s.blocks.Create(ctx, block); err != nil {
			return fmt.Errorf("%w: %v", ErrRecordParse, err)
		}
	}

	agg.addIssue(dueDate, issue)
	agg.addMemo(dueDate, memo)
	return nil
}

// tabularRowHTML renders a row's body as fixed 요청내용/이슈/메모 sections.
// Blank cells contribute no section; an all-blank row yields "".
func tabularRowHTML(work, issue, memo string) string {
	var html strings.Builder
	appendRowSection(&html, "요청내용", work)
	appendRowSection(&html, "이슈", issue)
	appendRowSection(&html, "메모", memo)
	return html.String()
}

func appendRowSection(html *strings.Builder, title, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	html.WriteString("<h3>" + title + "</h3>")
	for _, line := range splitLines(value) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		html.WriteString("<p>" + renderInline(strings.TrimSpace(line)) + "</p>")
	}
}

// findColumn returns the index of the first header matching any alias, by
// case-insensitive equality or substring containment. Aliases are tried in
// order so the preferred name wins over looser matches.
func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if strings.EqualFold(h, alias) || strings.Contains(h, alias) {
				return i
			}
		}
	}
	return -1
}

func findExactColumn(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
