package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lewtec/pinacoteca/internal/domain"
)

type searchFixture struct {
	images *ImageRepository
	tags   *TagRepository
	assocs *AssociationRepository
	search *SearchRepository
}

func setupSearch(t *testing.T, db *sql.DB) *searchFixture {
	t.Helper()
	images, err := NewImageRepository(db)
	if err != nil {
		t.Fatalf("NewImageRepository() error = %v", err)
	}
	return &searchFixture{
		images: images,
		tags:   NewTagRepository(db),
		assocs: NewAssociationRepository(db),
		search: NewSearchRepository(db),
	}
}

func (f *searchFixture) addImage(t *testing.T, path, description string, tagNames ...string) *domain.Image {
	t.Helper()
	ctx := context.Background()
	img, err := f.images.Create(ctx, path, description)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", path, err)
	}
	for _, name := range tagNames {
		tag, err := f.tags.GetOrCreate(ctx, name)
		if err != nil {
			t.Fatalf("GetOrCreate(%s) error = %v", name, err)
		}
		if err := f.assocs.Attach(ctx, img.ID, tag.ID); err != nil {
			t.Fatalf("Attach() error = %v", err)
		}
	}
	return img
}

func (f *searchFixture) tagID(t *testing.T, name string) int64 {
	t.Helper()
	tag, err := f.tags.GetByName(context.Background(), name)
	if err != nil {
		t.Fatalf("GetByName(%s) error = %v", name, err)
	}
	return tag.ID
}

func baseCriteria() domain.Criteria {
	return domain.Criteria{
		SortField:     domain.SortByCreatedAt,
		SortDirection: domain.SortAsc,
		PageIndex:     0,
		PageSize:      10,
	}
}

func TestSearchRepository_Validation(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	t.Run("rejects zero page size", func(t *testing.T) {
		c := baseCriteria()
		c.PageSize = 0
		if _, err := f.search.Search(ctx, c); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Search() error = %v, want ErrInvalidQuery", err)
		}
	})

	t.Run("rejects negative page index", func(t *testing.T) {
		c := baseCriteria()
		c.PageIndex = -1
		if _, err := f.search.Search(ctx, c); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Search() error = %v, want ErrInvalidQuery", err)
		}
	})

	t.Run("rejects unknown sort field", func(t *testing.T) {
		c := baseCriteria()
		c.SortField = "file_path; DROP TABLE images"
		if _, err := f.search.Search(ctx, c); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Search() error = %v, want ErrInvalidQuery", err)
		}
	})

	t.Run("rejects unknown sort direction", func(t *testing.T) {
		c := baseCriteria()
		c.SortDirection = "sideways"
		if _, err := f.search.Search(ctx, c); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Search() error = %v, want ErrInvalidQuery", err)
		}
	})
}

func TestSearchRepository_TextFilter(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	f.addImage(t, "/1.jpg", "Sunset over the bay")
	f.addImage(t, "/2.jpg", "mountain trail")
	f.addImage(t, "/3.jpg", "sunrise at the beach")

	t.Run("matches substrings case-insensitively", func(t *testing.T) {
		c := baseCriteria()
		c.Text = "SUNSET"
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 1 || len(page.Images) != 1 {
			t.Fatalf("Search() total = %d, images = %d, want 1", page.TotalCount, len(page.Images))
		}
		if page.Images[0].Path != "/1.jpg" {
			t.Errorf("Path = %v, want /1.jpg", page.Images[0].Path)
		}
	})

	t.Run("plus separates alternative terms", func(t *testing.T) {
		c := baseCriteria()
		c.Text = "sunset + sunrise"
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2", page.TotalCount)
		}
	})

	t.Run("empty text matches everything", func(t *testing.T) {
		page, err := f.search.Search(ctx, baseCriteria())
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 3 {
			t.Errorf("TotalCount = %d, want 3", page.TotalCount)
		}
	})
}

func TestSearchRepository_TagFilterConjunction(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	f.addImage(t, "/a.jpg", "image A", "x")
	b := f.addImage(t, "/b.jpg", "image B", "x", "y")
	f.addImage(t, "/c.jpg", "image C", "y")
	f.addImage(t, "/d.jpg", "image D")

	t.Run("requires every tag in the set", func(t *testing.T) {
		c := baseCriteria()
		c.TagIDs = []int64{f.tagID(t, "x"), f.tagID(t, "y")}
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 1 || len(page.Images) != 1 {
			t.Fatalf("Search() total = %d, images = %d, want exactly B", page.TotalCount, len(page.Images))
		}
		if page.Images[0].ID != b.ID {
			t.Errorf("ID = %d, want %d (image B)", page.Images[0].ID, b.ID)
		}
	})

	t.Run("duplicate tag ids behave as a set", func(t *testing.T) {
		x := f.tagID(t, "x")
		c := baseCriteria()
		c.TagIDs = []int64{x, x}
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2 (A and B)", page.TotalCount)
		}
	})

	t.Run("empty tag set means no tag filter", func(t *testing.T) {
		page, err := f.search.Search(ctx, baseCriteria())
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 4 {
			t.Errorf("TotalCount = %d, want 4 (untagged D included)", page.TotalCount)
		}
	})

	t.Run("combines with the text filter", func(t *testing.T) {
		c := baseCriteria()
		c.Text = "image"
		c.TagIDs = []int64{f.tagID(t, "y")}
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalCount != 2 {
			t.Errorf("TotalCount = %d, want 2 (B and C)", page.TotalCount)
		}
	})
}

func TestSearchRepository_SortAndTieBreak(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	first := f.addImage(t, "/1.jpg", "bbb")
	second := f.addImage(t, "/2.jpg", "aaa")
	third := f.addImage(t, "/3.jpg", "ccc")

	// Force identical created_at values so only the id tie-break orders them.
	MustExec(t, db, "UPDATE images SET created_at = 1000")

	t.Run("identical primary values fall back to ascending id", func(t *testing.T) {
		want := []int64{first.ID, second.ID, third.ID}
		for range 5 {
			page, err := f.search.Search(ctx, baseCriteria())
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(page.Images) != 3 {
				t.Fatalf("Search() returned %d images, want 3", len(page.Images))
			}
			for i, img := range page.Images {
				if img.ID != want[i] {
					t.Fatalf("position %d = id %d, want %d", i, img.ID, want[i])
				}
			}
		}
	})

	t.Run("sorts by description", func(t *testing.T) {
		c := baseCriteria()
		c.SortField = domain.SortByDescription
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		want := []string{"aaa", "bbb", "ccc"}
		for i, img := range page.Images {
			if img.Description != want[i] {
				t.Errorf("position %d = %q, want %q", i, img.Description, want[i])
			}
		}
	})

	t.Run("descending reverses the primary order", func(t *testing.T) {
		c := baseCriteria()
		c.SortField = domain.SortByDescription
		c.SortDirection = domain.SortDesc
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		want := []string{"ccc", "bbb", "aaa"}
		for i, img := range page.Images {
			if img.Description != want[i] {
				t.Errorf("position %d = %q, want %q", i, img.Description, want[i])
			}
		}
	})
}

func TestSearchRepository_Pagination(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	const imageCount = 7
	for i := range imageCount {
		f.addImage(t, fmt.Sprintf("/img-%02d.jpg", i), fmt.Sprintf("picture %02d", i))
	}

	t.Run("concatenated pages reproduce the full set", func(t *testing.T) {
		for _, pageSize := range []int{1, 2, 3, 7, 10} {
			seen := make(map[int64]bool)
			var total int64
			var collected []int64
			for pageIndex := 0; ; pageIndex++ {
				c := baseCriteria()
				c.PageIndex = pageIndex
				c.PageSize = pageSize
				page, err := f.search.Search(ctx, c)
				if err != nil {
					t.Fatalf("Search(size=%d, page=%d) error = %v", pageSize, pageIndex, err)
				}
				total = page.TotalCount
				if len(page.Images) == 0 {
					break
				}
				for _, img := range page.Images {
					if seen[img.ID] {
						t.Fatalf("size=%d: image %d returned twice", pageSize, img.ID)
					}
					seen[img.ID] = true
					collected = append(collected, img.ID)
				}
			}
			if total != imageCount {
				t.Errorf("size=%d: TotalCount = %d, want %d", pageSize, total, imageCount)
			}
			if len(collected) != imageCount {
				t.Errorf("size=%d: collected %d images, want %d", pageSize, len(collected), imageCount)
			}
			for i := 1; i < len(collected); i++ {
				if collected[i-1] >= collected[i] {
					t.Errorf("size=%d: ids out of order at %d", pageSize, i)
				}
			}
		}
	})

	t.Run("page beyond the end is empty with the correct total", func(t *testing.T) {
		c := baseCriteria()
		c.PageIndex = 100
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(page.Images) != 0 {
			t.Errorf("Images = %d, want 0", len(page.Images))
		}
		if page.TotalCount != imageCount {
			t.Errorf("TotalCount = %d, want %d", page.TotalCount, imageCount)
		}
	})

	t.Run("computes total pages", func(t *testing.T) {
		c := baseCriteria()
		c.PageSize = 3
		page, err := f.search.Search(ctx, c)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if page.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", page.TotalPages)
		}
	})
}

func TestSearchRepository_RegistrationOrderScenario(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	f := setupSearch(t, db)
	ctx := context.Background()

	a := f.addImage(t, "/a.jpg", "", "landscape")
	b := f.addImage(t, "/b.jpg", "", "landscape")

	c := baseCriteria()
	c.TagIDs = []int64{f.tagID(t, "landscape")}
	page, err := f.search.Search(ctx, c)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", page.TotalCount)
	}
	if page.Images[0].ID != a.ID || page.Images[1].ID != b.ID {
		t.Errorf("order = [%d %d], want registration order [%d %d]",
			page.Images[0].ID, page.Images[1].ID, a.ID, b.ID)
	}
}
