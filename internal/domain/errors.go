package domain

import "errors"

// Sentinel errors returned by repositories and services. Callers match
// them with errors.Is; implementations wrap them with %w to add detail.
var (
	// ErrNotFound indicates the referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePath indicates the file path is already registered.
	ErrDuplicatePath = errors.New("file path already registered")

	// ErrDuplicateTagName indicates a case-insensitive tag name collision.
	ErrDuplicateTagName = errors.New("tag name already exists")

	// ErrInvalidQuery indicates malformed search criteria or input,
	// e.g. a non-positive page size or an unknown sort field.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnsupportedFormat indicates a file whose content is not a
	// recognized image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrIO indicates a file could not be read, after retrying.
	ErrIO = errors.New("file access failed")

	// ErrStorage indicates a failure in the underlying database engine.
	ErrStorage = errors.New("storage failure")
)
