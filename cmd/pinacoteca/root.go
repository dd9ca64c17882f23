package main

import (
	"fmt"
	"os"

	"github.com/lewtec/pinacoteca/gallery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var app *gallery.App

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pinacoteca",
	Short: "Manage a personal image collection",
	Long: `Pinacoteca keeps a searchable catalog of your images: register
files with descriptions, label them with tags, and query the collection
with text search, tag filters, sorting, and pagination.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

		app, err = gallery.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to open collection: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

// resolveConfig loads --config when given and lets the direct flags
// override individual fields.
func resolveConfig(cmd *cobra.Command) (*gallery.Config, error) {
	cfg := &gallery.Config{}
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		loaded, err := gallery.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if database, _ := cmd.Flags().GetString("database"); database != "" || cfg.Database == "" {
		if database == "" {
			database = "pinacoteca.db"
		}
		cfg.Database = database
	}
	if library, _ := cmd.Flags().GetString("library"); library != "" {
		cfg.Library = library
	}
	if cfg.Library == "" {
		cfg.Library = "library"
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 20
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringP("database", "d", "", "Database file path")
	rootCmd.PersistentFlags().StringP("library", "l", "", "Library directory for imported images")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}
