// Package ingest validates candidate files and registers them with the
// image repository. It works against a billy filesystem so the library
// directory and all reads are swappable in tests.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/google/uuid"
	"github.com/lewtec/pinacoteca/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultRetryDelay = 100 * time.Millisecond

// Service is the ingestion entry point. Register validates a file in
// place; Import additionally copies it into the managed library
// directory first.
type Service struct {
	fs         billy.Filesystem
	images     domain.ImageRepository
	libraryDir string

	// retryDelay is the pause before the single retry of a failed open.
	retryDelay time.Duration
}

// NewService creates an ingestion Service storing imports under libraryDir.
func NewService(fs billy.Filesystem, images domain.ImageRepository, libraryDir string) *Service {
	return &Service{
		fs:         fs,
		images:     images,
		libraryDir: libraryDir,
		retryDelay: defaultRetryDelay,
	}
}

// Register validates that path is a readable, supported image file and
// creates its record with an empty description. Reads are retried once
// before surfacing ErrIO; unrecognized content fails ErrUnsupportedFormat;
// an already registered path fails ErrDuplicatePath.
func (s *Service) Register(ctx context.Context, filePath string) (*domain.Image, error) {
	f, err := s.openWithRetry(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, filePath, err)
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedFormat, filePath, err)
	}

	img, err := s.images.Create(ctx, filePath, "")
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", filePath).Int64("id", img.ID).Msg("image registered")
	return img, nil
}

// Import copies src into the library directory under its content hash,
// then registers the copy. The copy lands under a temporary name first
// and is renamed once fully written, so a failed import leaves no
// half-written library file behind.
func (s *Service) Import(ctx context.Context, src string) (*domain.Image, error) {
	in, err := s.openWithRetry(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, src, err)
	}
	defer in.Close()

	if _, _, err := image.DecodeConfig(in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedFormat, src, err)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, src, err)
	}

	if err := s.fs.MkdirAll(s.libraryDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, s.libraryDir, err)
	}

	tempPath := s.fs.Join(s.libraryDir, fmt.Sprintf("%s.part", uuid.New()))
	out, err := s.fs.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, tempPath, err)
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), in); err != nil {
		out.Close()
		s.fs.Remove(tempPath)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, src, err)
	}
	if err := out.Close(); err != nil {
		s.fs.Remove(tempPath)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, tempPath, err)
	}

	finalPath := s.fs.Join(s.libraryDir,
		fmt.Sprintf("%x%s", hasher.Sum(nil), path.Ext(src)))
	if err := s.fs.Rename(tempPath, finalPath); err != nil {
		s.fs.Remove(tempPath)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, finalPath, err)
	}

	log.Debug().Str("src", src).Str("dest", finalPath).Msg("image imported into library")
	return s.Register(ctx, finalPath)
}

func (s *Service) openWithRetry(filePath string) (billy.File, error) {
	f, err := s.fs.Open(filePath)
	if err == nil {
		return f, nil
	}
	log.Warn().Err(err).Str("path", filePath).Msg("open failed, retrying once")
	time.Sleep(s.retryDelay)
	return s.fs.Open(filePath)
}
