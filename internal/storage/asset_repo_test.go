package storage

import (
	"context"
	"testing"
)

func TestAssetRepo_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	item := createTestItem(t, db, "user-1")

	asset := &FileAsset{
		UserID:       "user-1",
		ItemID:       item.ID,
		OriginalName: "photo.png",
		StoredName:   "abc123.png",
		MimeType:     "image/png",
		SizeBytes:    42,
	}
	if err := db.Assets.Create(ctx, asset); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if asset.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	assets, err := db.Assets.ListByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListByItem() error = %v", err)
	}
	if len(assets) != 1 || assets[0].OriginalName != "photo.png" || assets[0].SizeBytes != 42 {
		t.Errorf("ListByItem() = %+v, want the created asset", assets)
	}
}

func TestAssetRepo_GetByStoredName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	item := createTestItem(t, db, "user-1")

	asset := &FileAsset{
		UserID:       "user-1",
		ItemID:       item.ID,
		OriginalName: "report.pdf",
		StoredName:   "def456.pdf",
		MimeType:     "application/pdf",
		SizeBytes:    1024,
	}
	if err := db.Assets.Create(ctx, asset); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Assets.GetByStoredName(ctx, "def456.pdf")
	if err != nil {
		t.Fatalf("GetByStoredName() error = %v", err)
	}
	if got.MimeType != "application/pdf" {
		t.Errorf("GetByStoredName() MimeType = %v, want application/pdf", got.MimeType)
	}

	if _, err := db.Assets.GetByStoredName(ctx, "missing.bin"); err != ErrNotFound {
		t.Errorf("GetByStoredName() missing error = %v, want ErrNotFound", err)
	}
}
