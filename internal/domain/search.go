package domain

import "context"

// SortField selects the primary sort column of a search.
type SortField string

const (
	SortByDescription SortField = "description"
	SortByCreatedAt   SortField = "created_at"
	SortByUpdatedAt   SortField = "updated_at"
)

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Criteria is the combined filter, sort, and pagination input of one
// search.
type Criteria struct {
	// Text filters descriptions by case-insensitive substring. Terms
	// separated by '+' are alternatives: an image matches if its
	// description contains any of them. Empty means no text filter.
	Text string

	// TagIDs restricts results to images carrying every listed tag.
	// Empty means no tag filter.
	TagIDs []int64

	SortField     SortField
	SortDirection SortDirection

	// PageIndex is zero-based; PageSize must be positive.
	PageIndex int
	PageSize  int
}

// Page is one bounded slice of a filtered result set.
type Page struct {
	Images []*Image

	// TotalCount is the size of the unsliced filtered set.
	TotalCount int64

	// TotalPages is TotalCount divided by the page size, rounded up.
	TotalPages int64

	PageIndex int
}

// ImageSearcher answers combined search/filter/sort/page queries.
type ImageSearcher interface {
	Search(ctx context.Context, c Criteria) (*Page, error)
}
