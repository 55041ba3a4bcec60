package handlers

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"mime/multipart"
	"path/filepath"
	"testing"

	"schedulemanager/internal/files"
	"schedulemanager/internal/migration"
	"schedulemanager/internal/storage"
	"schedulemanager/internal/workspace"
)

type handlerEnv struct {
	db        *sql.DB
	items     *storage.ItemRepo
	blocks    *storage.BlockRepo
	dayNotes  *storage.DayNoteRepo
	assets    *storage.AssetRepo
	fileStore *files.LocalStore
	migration *migration.Service
	board     *workspace.Service
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "handlers_test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	fileStore, err := files.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("files.NewLocalStore() error = %v", err)
	}

	env := &handlerEnv{
		db:        db,
		items:     storage.NewItemRepo(db),
		blocks:    storage.NewBlockRepo(db),
		dayNotes:  storage.NewDayNoteRepo(db),
		assets:    storage.NewAssetRepo(db),
		fileStore: fileStore,
	}
	env.migration = migration.NewService(env.items, env.blocks, env.dayNotes, env.assets, fileStore, migration.WalkLimits{})
	env.board = workspace.NewService(env.items, env.blocks, env.dayNotes)
	return env
}

func buildArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%q) error = %v", name, err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("zip write %q error = %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip.Close() error = %v", err)
	}
	return buf.Bytes()
}

// multipartUpload builds a multipart body with one "file" part.
func multipartUpload(t *testing.T, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("multipart write error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close error = %v", err)
	}
	return &body, w.FormDataContentType()
}
