package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/storage"
)

// mergeLevelThreshold is the folder-depth distance from a date segment at
// which a document stops becoming its own item and merges into the nearest
// registered ancestor's block instead. Depth 0 is the date page itself,
// depth 1 a direct sub-page; everything deeper is treated as supplementary
// material of its ancestor.
const mergeLevelThreshold = 2

// ingestDocuments imports the Markdown and HTML entries, shallowest path
// first. Merge candidates append to an ancestor block; everything else
// becomes a new item registered in the path index for later descendants.
func (s *Service) ingestDocuments(ctx context.Context, run *importRun, entries []ArchiveEntry) {
	log := contextutil.LoggerFromContext(ctx)

	for _, doc := range documentEntries(entries) {
		parentID := run.index.ResolveParent(doc.Path)
		merge := parentID != "" && levelFromDate(doc.Path) >= mergeLevelThreshold

		if strings.HasSuffix(strings.ToLower(doc.Path), ".md") {
			run.report.addPattern("markdown:" + doc.Path)
			markdown := string(doc.Data)
			if merge {
				s.appendToParentBlock(ctx, run, parentID, fileName(doc.Path), RenderMarkdown(markdown))
				continue
			}
			itemID, created := s.ingestMarkdown(ctx, run, markdown, doc.Path, parentID)
			if itemID != "" {
				if created {
					run.report.PersistedItems++
				}
				run.index.Register(doc.Path, itemID)
			}
			continue
		}

		run.report.addPattern("html:" + doc.Path)
		rawHTML := string(doc.Data)
		if merge {
			s.appendToParentBlock(ctx, run, parentID, fileName(doc.Path), SanitizeHTML(rawHTML))
			continue
		}
		itemID, created := s.ingestHTML(ctx, run, rawHTML, doc.Path, parentID)
		if itemID != "" {
			if created {
				run.report.PersistedItems++
			}
			run.index.Register(doc.Path, itemID)
		}
	}

	log.DebugContext(ctx, "documents ingested", "registered_paths", run.index.Len())
}

// ingestMarkdown turns one Markdown document into a work item, or appends it
// to the day's anchor item when a root-level document carries a date that
// already has one. Returns the owning item id and whether a new item was
// created.
func (s *Service) ingestMarkdown(ctx context.Context, run *importRun, markdown, filePath, parentID string) (string, bool) {
	fail := func(err error) (string, bool) {
		run.report.addFailure(fmt.Sprintf("Markdown 파싱 실패(%s): %v", filePath, err))
		return "", false
	}

	title := extractMarkdownTitle(markdown, filePath)
	dueDate, hasDate := ParseFlexibleDate(title + " " + filePath)

	if parentID == "" && hasDate {
		anchor, err := s.anchorByDueDate(ctx, run.userID, dueDate)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrRecordParse, err))
		}
		if anchor != nil {
			s.appendToParentBlock(ctx, run, anchor.ID, fileName(filePath), RenderMarkdown(markdown))
			return anchor.ID, false
		}
	}

	item := &storage.WorkItem{
		UserID:       run.userID,
		ParentID:     parentID,
		Title:        title,
		Status:       "todo",
		TemplateType: inferTemplateType(markdown),
	}
	if !hasDate && parentID != "" {
		dueDate = s.inheritedDueDate(ctx, parentID)
	}
	item.DueDate = dueDate
	if err := s.items.Create(ctx, item); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrRecordParse, err))
	}

	if html := RenderMarkdown(markdown); strings.TrimSpace(html) != "" {
		if err := s.createHTMLBlock(ctx, item.ID, html); err != nil {
			return fail(err)
		}
	}
	return item.ID, true
}

// ingestHTML is the HTML counterpart of ingestMarkdown. The title comes from
// the file name since HTML exports carry no reliable heading.
func (s *Service) ingestHTML(ctx context.Context, run *importRun, rawHTML, filePath, parentID string) (string, bool) {
	fail := func(err error) (string, bool) {
		run.report.addFailure(fmt.Sprintf("HTML 파싱 실패(%s): %v", filePath, err))
		return "", false
	}

	if parentID == "" {
		if dueDate, ok := ParseFlexibleDate(filePath); ok {
			anchor, err := s.anchorByDueDate(ctx, run.userID, dueDate)
			if err != nil {
				return fail(fmt.Errorf("%w: %v", ErrRecordParse, err))
			}
			if anchor != nil {
				s.appendToParentBlock(ctx, run, anchor.ID, fileName(filePath), SanitizeHTML(rawHTML))
				return anchor.ID, false
			}
		}
	}

	item := &storage.WorkItem{
		UserID:       run.userID,
		ParentID:     parentID,
		Title:        normalizeTitle(stripExtension(fileName(filePath))),
		Status:       "todo",
		TemplateType: "free",
	}
	dueDate, hasDate := ParseFlexibleDate(item.Title + " " + filePath)
	if !hasDate && parentID != "" {
		dueDate = s.inheritedDueDate(ctx, parentID)
	}
	item.DueDate = dueDate
	if err := s.items.Create(ctx, item); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrRecordParse, err))
	}

	if err := s.createHTMLBlock(ctx, item.ID, SanitizeHTML(rawHTML)); err != nil {
		return fail(err)
	}
	return item.ID, true
}

// appendToParentBlock adds a separator, a section heading named after the
// source file, and the rendered HTML onto the parent's first block. A parent
// with no block yet gets one.
func (s *Service) appendToParentBlock(ctx context.Context, run *importRun, parentID, sourceName, html string) {
	if parentID == "" || strings.TrimSpace(html) == "" {
		return
	}
	fail := func(err error) {
		run.report.addFailure(fmt.Sprintf("상위 본문 병합 실패(%s): %v", sourceName, err))
	}

	sectionTitle := normalizeTitle(stripExtension(sourceName))
	section := "<hr /><h3>" + escapeHTML(sectionTitle) + "</h3>" + html

	block, err := s.blocks.FirstByItem(ctx, parentID)
	if errors.Is(err, storage.ErrNotFound) {
		if err := s.createHTMLBlock(ctx, parentID, section); err != nil {
			fail(err)
		}
		return
	}
	if err != nil {
		fail(err)
		return
	}

	content, err := appendHTMLToPayload(block.Content, section)
	if err != nil {
		fail(err)
		return
	}
	if err := s.blocks.UpdateContent(ctx, block.ID, content); err != nil {
		fail(err)
	}
}

func (s *Service) createHTMLBlock(ctx context.Context, itemID, html string) error {
	content, err := htmlPayload(html)
	if err != nil {
		return err
	}
	block := &storage.Block{ItemID: itemID, SortOrder: 0, Type: "paragraph", Content: content}
	return s.blocks.Create(ctx, block)
}

// anchorByDueDate finds the most recently updated item on a date, or nil.
func (s *Service) anchorByDueDate(ctx context.Context, userID, dueDate string) (*storage.WorkItem, error) {
	items, err := s.items.FindByUserAndDueDate(ctx, userID, dueDate)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// inheritedDueDate reads the parent's due date, or "" when the parent is
// missing or dateless.
func (s *Service) inheritedDueDate(ctx context.Context, parentID string) string {
	parent, err := s.items.GetByID(ctx, parentID)
	if err != nil {
		return ""
	}
	return parent.DueDate
}

// inferTemplateType guesses an item's template from document text. Worklog
// markers win over meeting markers; everything else is free-form.
func inferTemplateType(markdown string) string {
	lower := strings.ToLower(markdown)
	if strings.Contains(lower, "요청자") || strings.Contains(lower, "요청내용") || strings.Contains(lower, "[내선]") {
		return "worklog"
	}
	if strings.Contains(lower, "회의") {
		return "meeting"
	}
	return "free"
}

// extractMarkdownTitle takes the first level-1 heading, falling back to the
// file name stem.
func extractMarkdownTitle(markdown, filePath string) string {
	for _, line := range splitLines(markdown) {
		trimmed := strings.TrimSpace(line)
		if body, ok := strings.CutPrefix(trimmed, "# "); ok {
			return normalizeTitle(strings.TrimSpace(body))
		}
	}
	return normalizeTitle(stripExtension(fileName(filePath)))
}
