package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lewtec/pinacoteca/internal/domain"
)

// SearchRepository implements domain.ImageSearcher: one SQL query
// combining the description text filter, the conjunctive tag filter,
// the requested sort order, and the page slice, plus a count of the
// unsliced filtered set.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Sort columns are mapped through this whitelist; criteria naming any
// other field are rejected, never interpolated.
var sortColumns = map[domain.SortField]string{
	domain.SortByDescription: "images.description",
	domain.SortByCreatedAt:   "images.created_at",
	domain.SortByUpdatedAt:   "images.updated_at",
}

// Search answers one combined query. An image qualifies when its
// description contains any of the '+'-separated text terms and it
// carries every tag in TagIDs. Results are ordered by the sort field
// with id ascending as tie-break, so pagination is reproducible when
// primary-sort values collide.
func (r *SearchRepository) Search(ctx context.Context, c domain.Criteria) (*domain.Page, error) {
	if c.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive, got %d", domain.ErrInvalidQuery, c.PageSize)
	}
	if c.PageIndex < 0 {
		return nil, fmt.Errorf("%w: page index must not be negative, got %d", domain.ErrInvalidQuery, c.PageIndex)
	}
	column, ok := sortColumns[c.SortField]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidQuery, c.SortField)
	}
	direction := "ASC"
	switch c.SortDirection {
	case domain.SortAsc, "":
	case domain.SortDesc:
		direction = "DESC"
	default:
		return nil, fmt.Errorf("%w: unknown sort direction %q", domain.ErrInvalidQuery, c.SortDirection)
	}

	var clause strings.Builder
	var args []any
	clause.WriteString("FROM images")

	tagIDs := dedupe(c.TagIDs)
	if len(tagIDs) > 0 {
		clause.WriteString(" JOIN image_tags ON image_tags.image_id = images.id")
		clause.WriteString(" AND image_tags.tag_id IN (")
		clause.WriteString(placeholders(len(tagIDs)))
		clause.WriteString(")")
		for _, id := range tagIDs {
			args = append(args, id)
		}
	}

	if terms := splitTerms(c.Text); len(terms) > 0 {
		predicates := make([]string, len(terms))
		for i, term := range terms {
			predicates[i] = "instr(lower(images.description), lower(?)) > 0"
			args = append(args, term)
		}
		clause.WriteString(" WHERE (")
		clause.WriteString(strings.Join(predicates, " OR "))
		clause.WriteString(")")
	}

	grouping := ""
	if len(tagIDs) > 0 {
		grouping = " GROUP BY images.id HAVING COUNT(DISTINCT image_tags.tag_id) = ?"
	}

	total, err := r.countFiltered(ctx, clause.String(), grouping, args, len(tagIDs))
	if err != nil {
		return nil, err
	}

	query := "SELECT images.id, images.file_path, images.description, images.created_at, images.updated_at " +
		clause.String() + grouping +
		fmt.Sprintf(" ORDER BY %s %s, images.id ASC LIMIT ? OFFSET ?", column, direction)
	pageArgs := append([]any{}, args...)
	if len(tagIDs) > 0 {
		pageArgs = append(pageArgs, len(tagIDs))
	}
	pageArgs = append(pageArgs, c.PageSize, c.PageIndex*c.PageSize)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, storageErr("searching images", err)
	}
	defer rows.Close()
	images, err := collectImages(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Page{
		Images:     images,
		TotalCount: total,
		TotalPages: (total + int64(c.PageSize) - 1) / int64(c.PageSize),
		PageIndex:  c.PageIndex,
	}, nil
}

func (r *SearchRepository) countFiltered(ctx context.Context, clause, grouping string, args []any, tagCount int) (int64, error) {
	var query string
	countArgs := append([]any{}, args...)
	if tagCount > 0 {
		// The GROUP BY yields one row per qualifying image; count them.
		query = "SELECT COUNT(*) FROM (SELECT images.id " + clause + grouping + ")"
		countArgs = append(countArgs, tagCount)
	} else {
		query = "SELECT COUNT(*) " + clause
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, countArgs...).Scan(&total); err != nil {
		return 0, storageErr("counting search results", err)
	}
	return total, nil
}

// splitTerms breaks the text filter into its '+'-separated alternatives,
// dropping empty terms. Plain text yields a single term.
func splitTerms(text string) []string {
	var terms []string
	for _, term := range strings.Split(text, "+") {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Verify that SearchRepository implements domain.ImageSearcher
var _ domain.ImageSearcher = (*SearchRepository)(nil)
