package domain

import (
	"context"
	"time"
)

// Image represents one registered picture file and its metadata.
type Image struct {
	ID          int64
	Path        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ImageRepository defines the interface for image storage operations
type ImageRepository interface {
	// Create creates a new image record. The path must be unique;
	// registering it twice fails with ErrDuplicatePath.
	Create(ctx context.Context, path, description string) (*Image, error)

	// GetByID retrieves an image by its id, or ErrNotFound
	GetByID(ctx context.Context, id int64) (*Image, error)

	// GetByPath retrieves an image by its file path, or ErrNotFound
	GetByPath(ctx context.Context, path string) (*Image, error)

	// UpdateDescription replaces the description and bumps UpdatedAt.
	// The file path is immutable after creation.
	UpdateDescription(ctx context.Context, id int64, description string) (*Image, error)

	// Delete removes an image and cascades its tag associations.
	// A second delete of the same id fails with ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// List retrieves all images, ordered by id
	List(ctx context.Context) ([]*Image, error)

	// Count returns the total number of images
	Count(ctx context.Context) (int64, error)
}
