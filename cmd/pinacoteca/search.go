package main

import (
	"fmt"
	"strings"

	"github.com/lewtec/pinacoteca/internal/domain"
	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the collection",
	Long: `Search registered images by description text and tags.

The text filter matches case-insensitive substrings; terms separated by
'+' are alternatives. Tag filters combine with AND: an image must carry
every given tag. Results are paginated.

Example:
  pinacoteca search --text "sunset + beach" --tag landscape --tag summer --sort created_at --desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		tagNames, _ := cmd.Flags().GetStringArray("tag")
		sortField, _ := cmd.Flags().GetString("sort")
		descending, _ := cmd.Flags().GetBool("desc")
		pageIndex, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		if pageSize == 0 {
			pageSize = app.Config.PageSize
		}

		var tagIDs []int64
		for _, name := range tagNames {
			tag, err := app.Tags.GetByName(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("tag %q: %w", name, err)
			}
			tagIDs = append(tagIDs, tag.ID)
		}

		direction := domain.SortAsc
		if descending {
			direction = domain.SortDesc
		}

		page, err := app.Search.Search(cmd.Context(), domain.Criteria{
			Text:          text,
			TagIDs:        tagIDs,
			SortField:     domain.SortField(sortField),
			SortDirection: direction,
			PageIndex:     pageIndex,
			PageSize:      pageSize,
		})
		if err != nil {
			return err
		}

		for _, img := range page.Images {
			tags, err := app.Associations.TagsForImage(cmd.Context(), img.ID)
			if err != nil {
				return err
			}
			names := make([]string, len(tags))
			for i, tag := range tags {
				names[i] = tag.Name
			}
			fmt.Printf("%d\t%s\t%s\t[%s]\n", img.ID, img.Path, img.Description, strings.Join(names, ", "))
		}
		fmt.Printf("page %d/%d, %d images\n", page.PageIndex+1, page.TotalPages, page.TotalCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("text", "t", "", "Description text filter ('+' separates alternatives)")
	searchCmd.Flags().StringArray("tag", nil, "Require this tag (repeatable, combined with AND)")
	searchCmd.Flags().String("sort", string(domain.SortByCreatedAt), "Sort field: description, created_at, updated_at")
	searchCmd.Flags().Bool("desc", false, "Sort descending")
	searchCmd.Flags().Int("page", 0, "Zero-based page index")
	searchCmd.Flags().Int("page-size", 0, "Page size (defaults to the configured page size)")
}
