package storage

import (
	"context"
	"testing"
)

func createTestItem(t *testing.T, db *testDB, userID string) *WorkItem {
	t.Helper()
	item := &WorkItem{UserID: userID, Title: "host item"}
	if err := db.Items.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() item error = %v", err)
	}
	return item
}

func TestBlockRepo_CreateAndFirstByItem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	item := createTestItem(t, db, "user-1")

	second := &Block{ItemID: item.ID, SortOrder: 1, Type: "paragraph", Content: `{"html":"<p>b</p>"}`}
	first := &Block{ItemID: item.ID, SortOrder: 0, Type: "paragraph", Content: `{"html":"<p>a</p>"}`}
	for _, block := range []*Block{second, first} {
		if err := db.Blocks.Create(ctx, block); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := db.Blocks.FirstByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("FirstByItem() error = %v", err)
	}
	if got.SortOrder != 0 || got.Content != `{"html":"<p>a</p>"}` {
		t.Errorf("FirstByItem() = %+v, want the sort-order-0 block", got)
	}
}

func TestBlockRepo_FirstByItem_NotFound(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "user-1")

	_, err := db.Blocks.FirstByItem(context.Background(), item.ID)
	if err != ErrNotFound {
		t.Errorf("FirstByItem() error = %v, want ErrNotFound", err)
	}
}

func TestBlockRepo_UpdateContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	item := createTestItem(t, db, "user-1")

	block := &Block{ItemID: item.ID, SortOrder: 0, Type: "paragraph", Content: `{"html":"<p>old</p>"}`}
	if err := db.Blocks.Create(ctx, block); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := db.Blocks.UpdateContent(ctx, block.ID, `{"html":"<p>new</p>"}`); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	got, err := db.Blocks.FirstByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("FirstByItem() error = %v", err)
	}
	if got.Content != `{"html":"<p>new</p>"}` {
		t.Errorf("UpdateContent() content = %v, want updated payload", got.Content)
	}

	if err := db.Blocks.UpdateContent(ctx, "missing", "{}"); err != ErrNotFound {
		t.Errorf("UpdateContent() on missing block error = %v, want ErrNotFound", err)
	}
}

func TestBlockRepo_ListAndDeleteByItem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	item := createTestItem(t, db, "user-1")

	for i := 0; i < 3; i++ {
		block := &Block{ItemID: item.ID, SortOrder: i, Type: "paragraph", Content: "{}"}
		if err := db.Blocks.Create(ctx, block); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	blocks, err := db.Blocks.ListByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListByItem() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("ListByItem() returned %d blocks, want 3", len(blocks))
	}
	for i, block := range blocks {
		if block.SortOrder != i {
			t.Errorf("ListByItem() blocks[%d].SortOrder = %d, want %d", i, block.SortOrder, i)
		}
	}

	if err := db.Blocks.DeleteByItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteByItem() error = %v", err)
	}
	blocks, err = db.Blocks.ListByItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListByItem() after delete error = %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("DeleteByItem() left %d blocks, want 0", len(blocks))
	}
}
