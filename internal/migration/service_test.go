package migration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedulemanager/internal/files"
	"schedulemanager/internal/storage"
)

const testUserID = "user-1"

type serviceEnv struct {
	db       *sql.DB
	items    *storage.ItemRepo
	blocks   *storage.BlockRepo
	dayNotes *storage.DayNoteRepo
	assets   *storage.AssetRepo
	files    *files.LocalStore
	svc      *Service
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "import_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(db))

	fileStore, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	env := &serviceEnv{
		db:       db,
		items:    storage.NewItemRepo(db),
		blocks:   storage.NewBlockRepo(db),
		dayNotes: storage.NewDayNoteRepo(db),
		assets:   storage.NewAssetRepo(db),
		files:    fileStore,
	}
	env.svc = NewService(env.items, env.blocks, env.dayNotes, env.assets, env.files, WalkLimits{})
	return env
}

// itemTitles reads all of the user's items directly; items without a due date
// are not reachable through the date-scoped store queries.
func (env *serviceEnv) itemTitles(t *testing.T) map[string]string {
	t.Helper()
	rows, err := env.db.Query(`SELECT id, title FROM work_items WHERE user_id = ?`, testUserID)
	require.NoError(t, err)
	defer rows.Close()

	titles := map[string]string{}
	for rows.Next() {
		var id, title string
		require.NoError(t, rows.Scan(&id, &title))
		titles[id] = title
	}
	require.NoError(t, rows.Err())
	return titles
}

func (env *serviceEnv) firstBlockHTML(t *testing.T, itemID string) string {
	t.Helper()
	block, err := env.blocks.FirstByItem(context.Background(), itemID)
	require.NoError(t, err)
	return payloadHTML(block.Content)
}

func TestService_ImportArchive_TabularRows(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	csvData := "날짜,오늘의 업무,이슈,메모\n" +
		"2024-03-15,서버 점검,디스크 부족,내일 재확인\n" +
		"2024-03-15,배포 준비,,\n"
	archive := buildZip(t, []zipEntry{
		{name: "records.csv", data: []byte(csvData)},
		{name: "records_all.csv", data: []byte(csvData)},
	})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.PersistedItems)
	assert.Contains(t, report.DetectedPatterns, "csv:upload.zip/records.csv")
	assert.Contains(t, report.DetectedPatterns, "csv-skip-all:upload.zip/records_all.csv")

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "2024-03-15", item.Title)
		assert.Equal(t, "worklog", item.TemplateType)
		assert.Equal(t, "todo", item.Status)
	}

	var bodies []string
	for _, item := range items {
		bodies = append(bodies, env.firstBlockHTML(t, item.ID))
	}
	joined := strings.Join(bodies, "\n")
	assert.Contains(t, joined, "<h3>요청내용</h3><p>서버 점검</p>")
	assert.Contains(t, joined, "<h3>이슈</h3><p>디스크 부족</p>")
	assert.Contains(t, joined, "<h3>요청내용</h3><p>배포 준비</p>")

	note, err := env.dayNotes.GetByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "디스크 부족", note.Issue)
	assert.Equal(t, "내일 재확인", note.Memo)
}

func TestService_ImportArchive_TabularHeaderAliases(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	csvData := "캘린더,task,issue,note\n2024-04-01,자료 정리,권한 이슈,공유 필요\n"
	archive := buildZip(t, []zipEntry{{name: "export.csv", data: []byte(csvData)}})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.PersistedItems)

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-04-01")
	require.NoError(t, err)
	require.Len(t, items, 1)

	note, err := env.dayNotes.GetByUserAndDueDate(ctx, testUserID, "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, "권한 이슈", note.Issue)
	assert.Equal(t, "공유 필요", note.Memo)
}

func TestService_ImportArchive_TabularTitleFallbacks(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	// No date column binds, so titles come from 제목 and then the placeholder.
	csvData := "제목,업무\n주간 보고,정리함\n,내용만 있음\n"
	archive := buildZip(t, []zipEntry{{name: "untitled.csv", data: []byte(csvData)}})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.PersistedItems)

	titles := env.itemTitles(t)
	assert.Contains(t, mapValues(titles), "주간 보고")
	assert.Contains(t, mapValues(titles), placeholderTitle+" 2")
}

func TestService_ImportArchive_TabularRowFailureRecovers(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	svc := NewService(env.items, failingBlockStore{env.blocks}, env.dayNotes, env.assets, env.files, WalkLimits{})

	csvData := "날짜,오늘의 업무\n2024-03-15,첫 행\n2024-03-16,둘째 행\n"
	archive := buildZip(t, []zipEntry{{name: "records.csv", data: []byte(csvData)}})

	report := svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Equal(t, 0, report.PersistedItems)
	require.Len(t, report.Failures, 2)
	// Row numbers are 1-based counting the header line.
	assert.Contains(t, report.Failures[0], "CSV 레코드 파싱 실패(upload.zip/records.csv, 2행)")
	assert.Contains(t, report.Failures[1], "3행")
}

func TestService_ImportArchive_MarkdownMergesDeepDocuments(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	archive := buildZip(t, []zipEntry{
		{name: "2024-03-15.md", data: []byte("# 2024-03-15 일일 노트\n- [x] 배포\n- [ ] 리뷰")},
		{name: "2024-03-15/프로젝트/세부 작업.md", data: []byte("# 세부 작업\n- 항목")},
	})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.PersistedItems)
	assert.Contains(t, report.DetectedPatterns, "markdown:upload.zip/2024-03-15.md")
	assert.Contains(t, report.DetectedPatterns, "markdown:upload.zip/2024-03-15/프로젝트/세부 작업.md")

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, items, 1)

	body := env.firstBlockHTML(t, items[0].ID)
	assert.Contains(t, body, "<h1>2024-03-15 일일 노트</h1>")
	assert.Contains(t, body, "<li>☑ 배포</li><li>☐ 리뷰</li>")
	assert.Contains(t, body, "<hr /><h3>세부 작업</h3>")
	assert.Contains(t, body, "<li>항목</li>")
}

func TestService_ImportArchive_SubPageBecomesChildItem(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	archive := buildZip(t, []zipEntry{
		{name: "2024-03-15.md", data: []byte("# 일일 노트 2024-03-15\n정리")},
		{name: "2024-03-15/회의록.md", data: []byte("# 회의록\n회의 내용 정리")},
	})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.PersistedItems)

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Most recently created first.
	child, parent := items[0], items[1]
	assert.Equal(t, "회의록", child.Title)
	assert.Equal(t, parent.ID, child.ParentID)
	assert.Equal(t, "2024-03-15", child.DueDate)
	assert.Equal(t, "meeting", child.TemplateType)
}

func TestService_ImportArchive_MarkdownAppendsToAnchorItem(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	csvData := "날짜,오늘의 업무\n2024-03-15,서버 점검\n"
	archive := buildZip(t, []zipEntry{
		{name: "records.csv", data: []byte(csvData)},
		{name: "2024-03-15.md", data: []byte("# 2024-03-15\n추가 메모")},
	})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	// The Markdown document appends to the CSV item instead of creating one.
	assert.Equal(t, 1, report.PersistedItems)

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, items, 1)

	body := env.firstBlockHTML(t, items[0].ID)
	assert.Contains(t, body, "<h3>요청내용</h3><p>서버 점검</p>")
	assert.Contains(t, body, "<hr /><h3>2024-03-15</h3>")
	assert.Contains(t, body, "<p>추가 메모</p>")
}

func TestService_ImportArchive_HTMLDocumentSanitized(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	rawHTML := `<html><body><p>안녕</p><script>alert(1)</script>` +
		`<img src="x.png" onerror="hack()" /></body></html>`
	archive := buildZip(t, []zipEntry{{name: "메모장.html", data: []byte(rawHTML)}})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.PersistedItems)
	assert.Contains(t, report.DetectedPatterns, "html:upload.zip/메모장.html")

	titles := env.itemTitles(t)
	require.Len(t, titles, 1)
	for itemID, title := range titles {
		assert.Equal(t, "메모장", title)
		body := env.firstBlockHTML(t, itemID)
		assert.Contains(t, body, "<p>안녕</p>")
		assert.Contains(t, body, `src="x.png"`)
		assert.NotContains(t, body, "script")
		assert.NotContains(t, body, "onerror")
	}
}

func TestService_ImportArchive_RewritesAssetReferences(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	archive := buildZip(t, []zipEntry{
		{name: "2024-03-15.md", data: []byte("# 2024-03-15 작업\n![](cap.png)")},
		{name: "2024-03-15/cap.png", data: []byte{0x89, 0x50, 0x4e, 0x47}},
	})

	report := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.PersistedFiles)

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assets, err := env.assets.ListByItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "cap.png", assets[0].OriginalName)
	assert.Equal(t, "image/png", assets[0].MimeType)
	assert.Equal(t, int64(4), assets[0].SizeBytes)

	body := env.firstBlockHTML(t, items[0].ID)
	assert.Contains(t, body, `src="/files/`+assets[0].StoredName)
	assert.NotContains(t, body, `src="cap.png"`)
}

func TestService_ImportArchive_ReImportDuplicates(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	csvData := "날짜,오늘의 업무\n2024-03-15,서버 점검\n"
	archive := buildZip(t, []zipEntry{{name: "records.csv", data: []byte(csvData)}})

	first := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")
	second := env.svc.ImportArchive(ctx, testUserID, archive, "upload.zip")

	assert.Equal(t, 1, first.PersistedItems)
	assert.Equal(t, 1, second.PersistedItems)

	items, err := env.items.FindByUserAndDueDate(ctx, testUserID, "2024-03-15")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestService_ImportArchive_CorruptArchive(t *testing.T) {
	env := newServiceEnv(t)

	report := env.svc.ImportArchive(context.Background(), testUserID, []byte("ZIP 아님"), "")

	assert.Equal(t, 0, report.PersistedItems)
	assert.Equal(t, 0, report.PersistedFiles)
	assert.Empty(t, report.DetectedPatterns)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "ZIP 펼치기 실패(upload.zip)")
	assert.Len(t, report.ManualFixHints, 3)
}

type failingBlockStore struct {
	storage.BlockStore
}

func (f failingBlockStore) Create(ctx context.Context, block *storage.Block) error {
	return errors.New("저장소 연결 끊김")
}

func mapValues(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	return values
}
