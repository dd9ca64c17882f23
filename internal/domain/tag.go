package domain

import "context"

// TagColor is the display color assigned to a tag, one of a fixed palette.
type TagColor string

const (
	ColorRed    TagColor = "red"
	ColorGreen  TagColor = "green"
	ColorBlue   TagColor = "blue"
	ColorOrange TagColor = "orange"
	ColorPurple TagColor = "purple"
	ColorPink   TagColor = "pink"
)

// DefaultTagColor is used when no color is given.
const DefaultTagColor = ColorBlue

// TagColors lists the palette in presentation order.
func TagColors() []TagColor {
	return []TagColor{ColorRed, ColorGreen, ColorBlue, ColorOrange, ColorPurple, ColorPink}
}

// ParseTagColor returns the palette color matching s, or false.
func ParseTagColor(s string) (TagColor, bool) {
	for _, c := range TagColors() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Tag represents a named label applicable to zero or more images.
// Names are unique under case-insensitive comparison.
type Tag struct {
	ID    int64
	Name  string
	Color TagColor
}

// TagRepository defines the interface for tag storage operations
type TagRepository interface {
	// GetOrCreate returns the tag whose name matches case-insensitively,
	// creating it with the default color if absent. Idempotent: repeated
	// calls with any casing of the same name return the same id.
	GetOrCreate(ctx context.Context, name string) (*Tag, error)

	// Create creates a tag, failing with ErrDuplicateTagName if a
	// case-insensitive match already exists.
	Create(ctx context.Context, name string, color TagColor) (*Tag, error)

	// GetByID retrieves a tag by its id, or ErrNotFound
	GetByID(ctx context.Context, id int64) (*Tag, error)

	// GetByName retrieves a tag by case-insensitive name, or ErrNotFound
	GetByName(ctx context.Context, name string) (*Tag, error)

	// Update renames and/or recolors a tag. An empty name keeps the
	// current one. Renaming onto an existing name fails with
	// ErrDuplicateTagName.
	Update(ctx context.Context, id int64, name string, color TagColor) (*Tag, error)

	// Delete removes a tag and cascades its associations; the images
	// themselves are never touched.
	Delete(ctx context.Context, id int64) error

	// List retrieves all tags ordered by name, case-insensitive ascending
	List(ctx context.Context) ([]*Tag, error)

	// Count returns the total number of tags
	Count(ctx context.Context) (int64, error)
}

// AssociationRepository maintains the many-to-many image/tag relation.
// Association rows are created and destroyed only through it.
type AssociationRepository interface {
	// Attach links a tag to an image. Attaching twice is a no-op.
	// A missing image or tag fails with ErrNotFound.
	Attach(ctx context.Context, imageID, tagID int64) error

	// Detach unlinks a tag from an image. Detaching a missing
	// association is a no-op.
	Detach(ctx context.Context, imageID, tagID int64) error

	// TagsForImage retrieves the tags attached to an image, ordered by
	// name, case-insensitive ascending
	TagsForImage(ctx context.Context, imageID int64) ([]*Tag, error)

	// ImagesForTag retrieves the ids of images carrying a tag,
	// ascending
	ImagesForTag(ctx context.Context, tagID int64) ([]int64, error)

	// ReplaceTags atomically replaces an image's tag set with the named
	// tags, creating missing ones. Empty names are skipped.
	ReplaceTags(ctx context.Context, imageID int64, names []string) ([]*Tag, error)
}
