package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lewtec/pinacoteca/internal/domain"
)

// AssociationRepository implements domain.AssociationRepository. It is
// the only component that writes image_tags rows. A successful attach
// or detach also advances the image's updated_at; the idempotent no-op
// cases leave the row untouched.
type AssociationRepository struct {
	db *sql.DB
}

// NewAssociationRepository creates a new AssociationRepository
func NewAssociationRepository(db *sql.DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

// Attach links a tag to an image; attaching twice is a no-op
func (r *AssociationRepository) Attach(ctx context.Context, imageID, tagID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("attaching tag", err)
	}
	defer tx.Rollback()

	// OR IGNORE swallows the duplicate-pair conflict only; foreign key
	// violations still abort.
	result, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO image_tags (image_id, tag_id) VALUES (?, ?)",
		imageID, tagID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: image %d or tag %d", domain.ErrNotFound, imageID, tagID)
		}
		return storageErr("attaching tag", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("attaching tag", err)
	}
	if affected == 0 {
		return nil
	}

	if err := touchImage(ctx, tx, imageID, time.Now().UTC()); err != nil {
		return storageErr("attaching tag", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("attaching tag", err)
	}
	return nil
}

// Detach unlinks a tag from an image; a missing association is a no-op
func (r *AssociationRepository) Detach(ctx context.Context, imageID, tagID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("detaching tag", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM image_tags WHERE image_id = ? AND tag_id = ?", imageID, tagID)
	if err != nil {
		return storageErr("detaching tag", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("detaching tag", err)
	}
	if affected == 0 {
		return nil
	}

	if err := touchImage(ctx, tx, imageID, time.Now().UTC()); err != nil {
		return storageErr("detaching tag", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("detaching tag", err)
	}
	return nil
}

const tagsForImageQuery = `
	SELECT tags.id, tags.name, tags.color
	FROM image_tags
	JOIN tags ON tags.id = image_tags.tag_id
	WHERE image_tags.image_id = ?
	ORDER BY tags.name COLLATE NOCASE ASC, tags.id ASC
`

// TagsForImage retrieves the tags attached to an image
func (r *AssociationRepository) TagsForImage(ctx context.Context, imageID int64) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, tagsForImageQuery, imageID)
	if err != nil {
		return nil, storageErr("reading image tags", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// ImagesForTag retrieves the ids of images carrying a tag, ascending
func (r *AssociationRepository) ImagesForTag(ctx context.Context, tagID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT image_id FROM image_tags WHERE tag_id = ? ORDER BY image_id ASC", tagID)
	if err != nil {
		return nil, storageErr("reading tag images", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("reading tag images", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("reading tag images", err)
	}
	return ids, nil
}

// ReplaceTags atomically replaces an image's tag set with the named
// tags, creating missing ones through get-or-create. Failures for
// individual names are collected; any failure rolls the whole
// replacement back.
func (r *AssociationRepository) ReplaceTags(ctx context.Context, imageID int64, names []string) ([]*domain.Tag, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("replacing tags", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM images WHERE id = ?", imageID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: image %d", domain.ErrNotFound, imageID)
	}
	if err != nil {
		return nil, storageErr("replacing tags", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM image_tags WHERE image_id = ?", imageID); err != nil {
		return nil, storageErr("replacing tags", err)
	}

	var merr *multierror.Error
	var tags []*domain.Tag
	seen := make(map[int64]bool)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := getOrCreateTag(ctx, tx, name)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("tag %q: %w", name, err))
			continue
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO image_tags (image_id, tag_id) VALUES (?, ?)",
			imageID, tag.ID); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("tag %q: %w", name, storageErr("attaching", err)))
			continue
		}
		tags = append(tags, tag)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := touchImage(ctx, tx, imageID, time.Now().UTC()); err != nil {
		return nil, storageErr("replacing tags", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("replacing tags", err)
	}
	return tags, nil
}

// Verify that AssociationRepository implements domain.AssociationRepository
var _ domain.AssociationRepository = (*AssociationRepository)(nil)
