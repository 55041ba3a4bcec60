package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_asset_store.go -package=mocks schedulemanager/internal/storage AssetStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssetStore defines the interface for file asset record operations.
type AssetStore interface {
	// Create inserts a new asset record, assigning an ID and timestamp.
	Create(ctx context.Context, asset *FileAsset) error
	// ListByItem lists asset records linked to an item, oldest first.
	ListByItem(ctx context.Context, itemID string) ([]FileAsset, error)
	// GetByStoredName gets the asset record for a stored file name.
	// Returns ErrNotFound if absent.
	GetByStoredName(ctx context.Context, storedName string) (*FileAsset, error)
}

// AssetRepo provides methods for file asset record operations.
// It implements the AssetStore interface.
type AssetRepo struct {
	db *sql.DB
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

// Create inserts a new asset record.
func (r *AssetRepo) Create(ctx context.Context, asset *FileAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	asset.CreatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO file_assets (id, user_id, item_id, original_name, stored_name, mime_type, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.UserID, asset.ItemID, asset.OriginalName, asset.StoredName,
		asset.MimeType, asset.SizeBytes, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file asset: %w", err)
	}
	return nil
}

// ListByItem lists asset records linked to an item, oldest first.
func (r *AssetRepo) ListByItem(ctx context.Context, itemID string) ([]FileAsset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, item_id, original_name, stored_name, mime_type, size_bytes, created_at
		 FROM file_assets WHERE item_id = ? ORDER BY created_at ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file assets: %w", err)
	}
	defer rows.Close()

	var assets []FileAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file assets: %w", err)
	}
	return assets, nil
}

// GetByStoredName gets the asset record for a stored file name.
func (r *AssetRepo) GetByStoredName(ctx context.Context, storedName string) (*FileAsset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, item_id, original_name, stored_name, mime_type, size_bytes, created_at
		 FROM file_assets WHERE stored_name = ? LIMIT 1`, storedName)
	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file asset: %w", err)
	}
	return asset, nil
}

func scanAsset(row rowScanner) (*FileAsset, error) {
	var asset FileAsset
	var createdAt string
	err := row.Scan(&asset.ID, &asset.UserID, &asset.ItemID, &asset.OriginalName,
		&asset.StoredName, &asset.MimeType, &asset.SizeBytes, &createdAt)
	if err != nil {
		return nil, err
	}
	asset.CreatedAt = parseTime(createdAt)
	return &asset, nil
}
