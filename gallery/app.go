package gallery

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/hashicorp/go-multierror"
	"github.com/lewtec/pinacoteca/internal/ingest"
	"github.com/lewtec/pinacoteca/internal/repository"
	"github.com/lewtec/pinacoteca/internal/store"
)

// App holds the assembled core: the database handle, the repositories,
// and the ingestion service. It owns the handle's lifecycle; everything
// else receives it as a dependency.
type App struct {
	Config *Config
	DB     *sql.DB

	Images       *repository.ImageRepository
	Tags         *repository.TagRepository
	Associations *repository.AssociationRepository
	Search       *repository.SearchRepository
	Ingest       *ingest.Service
}

// NewApp opens and migrates the database and constructs the components.
func NewApp(cfg *Config) (*App, error) {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	images, err := repository.NewImageRepository(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("while building image repository: %w", err)
	}

	// The ingest filesystem is rooted at /, so the library directory
	// must be absolute.
	library, err := filepath.Abs(cfg.Library)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("while resolving library directory: %w", err)
	}

	return &App{
		Config:       cfg,
		DB:           db,
		Images:       images,
		Tags:         repository.NewTagRepository(db),
		Associations: repository.NewAssociationRepository(db),
		Search:       repository.NewSearchRepository(db),
		Ingest:       ingest.NewService(osfs.New("/"), images, library),
	}, nil
}

// Close releases everything the App owns.
func (a *App) Close() error {
	var merr *multierror.Error
	if _, err := a.DB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("while checkpointing WAL: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("while closing database: %w", err))
	}
	return merr.ErrorOrNil()
}
