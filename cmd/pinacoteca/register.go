package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register <file>...",
	Short: "Register image files in place",
	Long: `Register one or more image files without moving them. Each file is
checked by content (jpeg, png, or gif) and recorded with an empty
description. Already registered paths are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			img, err := app.Ingest.Register(cmd.Context(), path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("registration failed")
				failed++
				continue
			}
			fmt.Printf("%d\t%s\n", img.ID, img.Path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Copy image files into the library and register them",
	Long: `Import one or more image files: each file is copied into the library
directory under its content hash, then registered. The source file is
left untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			img, err := app.Ingest.Import(cmd.Context(), path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("import failed")
				failed++
				continue
			}
			fmt.Printf("%d\t%s\n", img.ID, img.Path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(importCmd)
}
