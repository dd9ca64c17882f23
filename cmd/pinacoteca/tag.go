package main

import (
	"fmt"
	"strconv"

	"github.com/lewtec/pinacoteca/internal/domain"
	"github.com/spf13/cobra"
)

// tagCmd groups the tag management subcommands
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and their attachments",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := app.Tags.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, tag := range tags {
			images, err := app.Associations.ImagesForTag(cmd.Context(), tag.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%s\t%s\t%d images\n", tag.ID, tag.Name, tag.Color, len(images))
		}
		return nil
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		colorName, _ := cmd.Flags().GetString("color")
		color := domain.DefaultTagColor
		if colorName != "" {
			parsed, ok := domain.ParseTagColor(colorName)
			if !ok {
				return fmt.Errorf("unknown color %q (one of: %v)", colorName, domain.TagColors())
			}
			color = parsed
		}
		tag, err := app.Tags.Create(cmd.Context(), args[0], color)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", tag.ID, tag.Name, tag.Color)
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a tag (images keep their records)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := app.Tags.GetByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return app.Tags.Delete(cmd.Context(), tag.ID)
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := app.Tags.GetByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		updated, err := app.Tags.Update(cmd.Context(), tag.ID, args[1], tag.Color)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", updated.ID, updated.Name, updated.Color)
		return nil
	},
}

var tagAttachCmd = &cobra.Command{
	Use:   "attach <image-id> <name>...",
	Short: "Attach tags to an image, creating them as needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid image id %q", args[0])
		}
		for _, name := range args[1:] {
			tag, err := app.Tags.GetOrCreate(cmd.Context(), name)
			if err != nil {
				return err
			}
			if err := app.Associations.Attach(cmd.Context(), imageID, tag.ID); err != nil {
				return err
			}
		}
		return nil
	},
}

var tagDetachCmd = &cobra.Command{
	Use:   "detach <image-id> <name>...",
	Short: "Detach tags from an image",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid image id %q", args[0])
		}
		for _, name := range args[1:] {
			tag, err := app.Tags.GetByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			if err := app.Associations.Detach(cmd.Context(), imageID, tag.ID); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagRenameCmd)
	tagCmd.AddCommand(tagAttachCmd)
	tagCmd.AddCommand(tagDetachCmd)

	tagAddCmd.Flags().String("color", "", "Tag color (red, green, blue, orange, purple, pink)")
}
