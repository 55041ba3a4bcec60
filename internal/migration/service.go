package migration

import (
	"context"
	"sort"
	"strings"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/files"
	"schedulemanager/internal/storage"
)

// Service imports legacy export archives. One call to ImportArchive processes
// one uploaded ZIP end to end: tabular worklogs, Markdown/HTML documents,
// attachments, and the asset URL rewrite that ties them together.
type Service struct {
	items    storage.ItemStore
	blocks   storage.BlockStore
	dayNotes storage.DayNoteStore
	assets   storage.AssetStore
	files    files.Store
	limits   WalkLimits
}

// NewService creates a migration Service. Zero-valued limits fall back to
// DefaultWalkLimits.
func NewService(
	items storage.ItemStore,
	blocks storage.BlockStore,
	dayNotes storage.DayNoteStore,
	assets storage.AssetStore,
	fileStore files.Store,
	limits WalkLimits,
) *Service {
	return &Service{
		items:    items,
		blocks:   blocks,
		dayNotes: dayNotes,
		assets:   assets,
		files:    fileStore,
		limits:   limits,
	}
}

// Report is the import result returned to the caller. Failures are free-text
// and record-scoped; a non-empty Failures list does not mean nothing was
// imported.
type Report struct {
	DetectedPatterns []string `json:"detectedPatterns"`
	PersistedItems   int      `json:"persistedItems"`
	PersistedFiles   int      `json:"persistedFiles"`
	Failures         []string `json:"failures"`
	ManualFixHints   []string `json:"manualFixHints"`
}

func (r *Report) addPattern(pattern string) {
	r.DetectedPatterns = append(r.DetectedPatterns, pattern)
}

func (r *Report) addFailure(failure string) {
	r.Failures = append(r.Failures, failure)
}

// manualFixHints are always returned; they describe the known limits of the
// automatic conversion.
var manualFixHints = []string{
	"날짜/상태 컬럼명이 다른 경우 수동 매핑 필요",
	"일부 비표준 체크리스트 문법은 일반 문단으로 변환될 수 있음",
	"중첩 ZIP 구조는 자동 탐지되지만 암호화 ZIP은 지원하지 않음",
}

// importRun holds the per-call state shared between the import passes.
type importRun struct {
	userID   string
	index    *PathIndex
	rewrites RewriteMap
	report   *Report
}

// ImportArchive runs the whole import for one uploaded archive. Four passes
// over the flattened entries: tabular files first, then documents shallowest
// first so folder pages exist before their children, then attachments, then
// the asset URL rewrite. Every failure is recorded in the report instead of
// aborting the run.
func (s *Service) ImportArchive(ctx context.Context, userID string, data []byte, sourceName string) *Report {
	log := contextutil.LoggerFromContext(ctx)

	run := &importRun{
		userID:   userID,
		index:    NewPathIndex(),
		rewrites: RewriteMap{},
		report: &Report{
			DetectedPatterns: []string{},
			Failures:         []string{},
			ManualFixHints:   manualFixHints,
		},
	}

	name := strings.TrimSpace(sourceName)
	if name == "" {
		name = "upload.zip"
	}
	name = strings.ReplaceAll(name, "\\", "/")

	entries, walkFailures := extractEntries(name, data, s.limits)
	run.report.Failures = append(run.report.Failures, walkFailures...)
	log.InfoContext(ctx, "archive expanded",
		"source", name, "entries", len(entries), "failures", len(walkFailures))

	for _, entry := range entries {
		lower := strings.ToLower(entry.Path)
		if !strings.HasSuffix(lower, ".csv") {
			continue
		}
		// *_all.csv files duplicate the per-day exports; skip them.
		if strings.HasSuffix(lower, "_all.csv") {
			run.report.addPattern("csv-skip-all:" + entry.Path)
			continue
		}
		run.report.addPattern("csv:" + entry.Path)
		run.report.PersistedItems += s.ingestTabular(ctx, run, entry)
	}

	s.ingestDocuments(ctx, run, entries)
	s.storeAssets(ctx, run, entries)
	s.rewriteAssetReferences(ctx, run)

	log.InfoContext(ctx, "import finished",
		"user_id", userID,
		"items", run.report.PersistedItems,
		"files", run.report.PersistedFiles,
		"failures", len(run.report.Failures))
	return run.report
}

// documentEntries filters and orders the document files for ingestion.
// The sort is stable so entries at equal depth keep archive order.
func documentEntries(entries []ArchiveEntry) []ArchiveEntry {
	var docs []ArchiveEntry
	for _, entry := range entries {
		lower := strings.ToLower(entry.Path)
		if strings.HasSuffix(lower, ".md") ||
			strings.HasSuffix(lower, ".html") ||
			strings.HasSuffix(lower, ".htm") {
			docs = append(docs, entry)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return pathDepth(docs[i].Path) < pathDepth(docs[j].Path)
	})
	return docs
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
