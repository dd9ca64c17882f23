package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <image-id> <description>",
	Short: "Set an image's description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid image id %q", args[0])
		}
		img, err := app.Images.UpdateDescription(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", img.ID, img.Path, img.Description)
		return nil
	},
}

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm <image-id>...",
	Short: "Delete image records (the files stay on disk)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", arg)
			}
			if err := app.Images.Delete(cmd.Context(), id); err != nil {
				return err
			}
		}
		return nil
	},
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <image-id>",
	Short: "Show one image record with its tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid image id %q", args[0])
		}
		img, err := app.Images.GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		tags, err := app.Associations.TagsForImage(cmd.Context(), img.ID)
		if err != nil {
			return err
		}

		fmt.Printf("id:          %d\n", img.ID)
		fmt.Printf("path:        %s\n", img.Path)
		fmt.Printf("description: %s\n", img.Description)
		fmt.Printf("created:     %s\n", img.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("updated:     %s\n", img.UpdatedAt.Format("2006-01-02 15:04:05"))
		for _, tag := range tags {
			fmt.Printf("tag:         %s (%s)\n", tag.Name, tag.Color)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(showCmd)
}
