package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lewtec/pinacoteca/internal/domain"
)

// TagRepository implements domain.TagRepository over SQLite. The name
// column carries COLLATE NOCASE, so uniqueness and lookups are
// case-insensitive at the engine level.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetOrCreate returns the existing tag matching name case-insensitively,
// creating it with the default color otherwise.
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	return getOrCreateTag(ctx, r.db, name)
}

// getOrCreateTag is shared with AssociationRepository.ReplaceTags, which
// runs it inside a transaction.
func getOrCreateTag(ctx context.Context, q querier, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name cannot be empty", domain.ErrInvalidQuery)
	}

	tag, err := getTagByName(ctx, q, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	result, err := q.ExecContext(ctx, "INSERT INTO tags (name, color) VALUES (?, ?)",
		name, string(domain.DefaultTagColor))
	if err != nil {
		// Lost a race with a concurrent insert of the same name.
		if isUniqueViolation(err) {
			return getTagByName(ctx, q, name)
		}
		return nil, storageErr("creating tag", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("creating tag", err)
	}
	return &domain.Tag{ID: id, Name: name, Color: domain.DefaultTagColor}, nil
}

// Create creates a tag, failing on a case-insensitive name collision
func (r *TagRepository) Create(ctx context.Context, name string, color domain.TagColor) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name cannot be empty", domain.ErrInvalidQuery)
	}
	if color == "" {
		color = domain.DefaultTagColor
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO tags (name, color) VALUES (?, ?)",
		name, string(color))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTagName, name)
		}
		return nil, storageErr("creating tag", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("creating tag", err)
	}
	return &domain.Tag{ID: id, Name: name, Color: color}, nil
}

// GetByID retrieves a tag by its id
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var tag domain.Tag
	var color string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, color FROM tags WHERE id = ?", id).
		Scan(&tag.ID, &tag.Name, &color)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: tag %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageErr("reading tag", err)
	}
	tag.Color = domain.TagColor(color)
	return &tag, nil
}

// GetByName retrieves a tag by case-insensitive name
func (r *TagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	return getTagByName(ctx, r.db, strings.TrimSpace(name))
}

func getTagByName(ctx context.Context, q querier, name string) (*domain.Tag, error) {
	var tag domain.Tag
	var color string
	err := q.QueryRowContext(ctx,
		"SELECT id, name, color FROM tags WHERE name = ? COLLATE NOCASE", name).
		Scan(&tag.ID, &tag.Name, &color)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: tag %q", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, storageErr("reading tag", err)
	}
	tag.Color = domain.TagColor(color)
	return &tag, nil
}

// Update renames and/or recolors a tag
func (r *TagRepository) Update(ctx context.Context, id int64, name string, color domain.TagColor) (*domain.Tag, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = existing.Name
	}
	if color == "" {
		color = existing.Color
	}

	_, err = r.db.ExecContext(ctx, "UPDATE tags SET name = ?, color = ? WHERE id = ?",
		name, string(color), id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTagName, name)
		}
		return nil, storageErr("updating tag", err)
	}
	return &domain.Tag{ID: id, Name: name, Color: color}, nil
}

// Delete removes a tag; image_tags rows cascade, images are untouched
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return storageErr("deleting tag", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("deleting tag", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: tag %d", domain.ErrNotFound, id)
	}
	return nil
}

// List retrieves all tags ordered by name, case-insensitive ascending
func (r *TagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color FROM tags ORDER BY name COLLATE NOCASE ASC, id ASC")
	if err != nil {
		return nil, storageErr("listing tags", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// Count returns the total number of tags
func (r *TagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		return 0, storageErr("counting tags", err)
	}
	return count, nil
}

func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		var color string
		if err := rows.Scan(&tag.ID, &tag.Name, &color); err != nil {
			return nil, storageErr("reading tag", err)
		}
		tag.Color = domain.TagColor(color)
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("reading tags", err)
	}
	return tags, nil
}

// Verify that TagRepository implements domain.TagRepository
var _ domain.TagRepository = (*TagRepository)(nil)
