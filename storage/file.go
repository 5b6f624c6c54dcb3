package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// FileSource serves blobs from a local directory, one file per blob named
// by its blob id.
type FileSource struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileSource creates a read-only source over baseDir, which must exist.
func NewFileSource(baseDir string, log *slog.Logger) (*FileSource, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("blob directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blob directory %s is not a directory", baseDir)
	}

	return &FileSource{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch reads the blob file. Returns ErrNotFound if it doesn't exist.
func (b *FileSource) Fetch(_ context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	if req.BlobID == "" || strings.ContainsAny(req.BlobID, `/\`) || req.BlobID == "." || req.BlobID == ".." {
		return nil, fmt.Errorf("%w: blob id %q is not a valid file name", interfaces.ErrBadInput, req.BlobID)
	}

	filePath := filepath.Join(b.baseDir, req.BlobID)
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: blob %s", interfaces.ErrNotFound, req.BlobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob file: %w", err)
	}

	data = applyRange(data, req.Range)

	b.log.Debug("Fetched blob from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return &interfaces.BlobResponse{Data: data}, nil
}

func (b *FileSource) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

func (b *FileSource) LocationURI() string {
	return b.locationURI
}
