package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lewtec/pinacoteca/internal/domain"
	"github.com/tidwall/btree"
)

// ImageRepository implements domain.ImageRepository over SQLite.
//
// Besides the table it keeps an in-memory B-tree of file_path -> id,
// loaded once at construction and maintained on every create/delete.
// Duplicate-path checks and path lookups resolve against the B-tree;
// the UNIQUE constraint on file_path remains the backstop.
type ImageRepository struct {
	db *sql.DB

	mu    sync.RWMutex
	paths *btree.Map[string, int64]
}

// NewImageRepository creates an ImageRepository and loads the path index.
func NewImageRepository(db *sql.DB) (*ImageRepository, error) {
	r := &ImageRepository{
		db:    db,
		paths: btree.NewMap[string, int64](0),
	}

	rows, err := db.Query("SELECT file_path, id FROM images")
	if err != nil {
		return nil, storageErr("loading path index", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		var id int64
		if err := rows.Scan(&path, &id); err != nil {
			return nil, storageErr("loading path index", err)
		}
		r.paths.Set(path, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("loading path index", err)
	}

	return r, nil
}

const createImageQuery = `
	INSERT INTO images (file_path, description, created_at, updated_at)
	VALUES (?, ?, ?, ?)
`

// Create creates a new image record
func (r *ImageRepository) Create(ctx context.Context, path, description string) (*domain.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: image path cannot be empty", domain.ErrInvalidQuery)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.paths.Get(path); exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicatePath, path)
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, createImageQuery,
		path, description, toUnixNano(now), toUnixNano(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicatePath, path)
		}
		return nil, storageErr("creating image", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("creating image", err)
	}
	r.paths.Set(path, id)

	return &domain.Image{
		ID:          id,
		Path:        path,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const getImageQuery = `
	SELECT id, file_path, description, created_at, updated_at
	FROM images
	WHERE id = ?
`

// GetByID retrieves an image by its id
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return scanImage(r.db.QueryRowContext(ctx, getImageQuery, id))
}

// GetByPath retrieves an image by its file path
func (r *ImageRepository) GetByPath(ctx context.Context, path string) (*domain.Image, error) {
	r.mu.RLock()
	id, exists := r.paths.Get(path)
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: image path %s", domain.ErrNotFound, path)
	}
	return r.GetByID(ctx, id)
}

// UpdateDescription replaces the description and bumps updated_at
func (r *ImageRepository) UpdateDescription(ctx context.Context, id int64, description string) (*domain.Image, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE images SET description = ?, updated_at = max(updated_at, ?) WHERE id = ?",
		description, toUnixNano(now), id)
	if err != nil {
		return nil, storageErr("updating image", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("updating image", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: image %d", domain.ErrNotFound, id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an image; image_tags rows cascade
func (r *ImageRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var path string
	err := r.db.QueryRowContext(ctx, "SELECT file_path FROM images WHERE id = ?", id).Scan(&path)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: image %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return storageErr("deleting image", err)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id); err != nil {
		return storageErr("deleting image", err)
	}
	r.paths.Delete(path)
	return nil
}

// List retrieves all images ordered by id
func (r *ImageRepository) List(ctx context.Context) ([]*domain.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, file_path, description, created_at, updated_at FROM images ORDER BY id")
	if err != nil {
		return nil, storageErr("listing images", err)
	}
	defer rows.Close()
	return collectImages(rows)
}

// Count returns the total number of images
func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM images").Scan(&count); err != nil {
		return 0, storageErr("counting images", err)
	}
	return count, nil
}

func scanImage(row *sql.Row) (*domain.Image, error) {
	var img domain.Image
	var createdAt, updatedAt int64
	err := row.Scan(&img.ID, &img.Path, &img.Description, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: image", domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("reading image", err)
	}
	img.CreatedAt = fromUnixNano(createdAt)
	img.UpdatedAt = fromUnixNano(updatedAt)
	return &img, nil
}

func collectImages(rows *sql.Rows) ([]*domain.Image, error) {
	var images []*domain.Image
	for rows.Next() {
		var img domain.Image
		var createdAt, updatedAt int64
		if err := rows.Scan(&img.ID, &img.Path, &img.Description, &createdAt, &updatedAt); err != nil {
			return nil, storageErr("reading image", err)
		}
		img.CreatedAt = fromUnixNano(createdAt)
		img.UpdatedAt = fromUnixNano(updatedAt)
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("reading images", err)
	}
	return images, nil
}

// Verify that ImageRepository implements domain.ImageRepository
var _ domain.ImageRepository = (*ImageRepository)(nil)
