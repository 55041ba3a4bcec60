package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_block_store.go -package=mocks schedulemanager/internal/storage BlockStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlockStore defines the interface for content block storage operations.
type BlockStore interface {
	// Create inserts a new block, assigning an ID and timestamps.
	Create(ctx context.Context, block *Block) error
	// FirstByItem gets the lowest-sort-order block of an item.
	// Returns ErrNotFound if the item has no blocks.
	FirstByItem(ctx context.Context, itemID string) (*Block, error)
	// ListByItem lists an item's blocks ordered by sort order.
	ListByItem(ctx context.Context, itemID string) ([]Block, error)
	// UpdateContent replaces a block's content payload.
	UpdateContent(ctx context.Context, id, content string) error
	// DeleteByItem removes all blocks of an item.
	DeleteByItem(ctx context.Context, itemID string) error
}

// BlockRepo provides methods for content block operations.
// It implements the BlockStore interface.
type BlockRepo struct {
	db *sql.DB
}

// NewBlockRepo creates a new BlockRepo.
func NewBlockRepo(db *sql.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// Create inserts a new block.
func (r *BlockRepo) Create(ctx context.Context, block *Block) error {
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocks (id, item_id, sort_order, type, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		block.ID, block.ItemID, block.SortOrder, block.Type, block.Content,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert block: %w", err)
	}
	return nil
}

// FirstByItem gets the lowest-sort-order block of an item.
func (r *BlockRepo) FirstByItem(ctx context.Context, itemID string) (*Block, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, item_id, sort_order, type, content, created_at, updated_at
		 FROM blocks WHERE item_id = ? ORDER BY sort_order ASC LIMIT 1`, itemID)
	block, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query first block: %w", err)
	}
	return block, nil
}

// ListByItem lists an item's blocks ordered by sort order.
func (r *BlockRepo) ListByItem(ctx context.Context, itemID string) ([]Block, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, sort_order, type, content, created_at, updated_at
		 FROM blocks WHERE item_id = ? ORDER BY sort_order ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, *block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blocks: %w", err)
	}
	return blocks, nil
}

// UpdateContent replaces a block's content payload and bumps updated_at.
func (r *BlockRepo) UpdateContent(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE blocks SET content = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update block content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check block update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByItem removes all blocks of an item.
func (r *BlockRepo) DeleteByItem(ctx context.Context, itemID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete blocks: %w", err)
	}
	return nil
}

func scanBlock(row rowScanner) (*Block, error) {
	var block Block
	var createdAt, updatedAt string
	err := row.Scan(&block.ID, &block.ItemID, &block.SortOrder, &block.Type,
		&block.Content, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	block.CreatedAt = parseTime(createdAt)
	block.UpdatedAt = parseTime(updatedAt)
	return &block, nil
}
