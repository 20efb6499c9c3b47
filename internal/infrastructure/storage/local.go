// Package storage holds the media stores uploaded audio is read from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// MediaStore stores uploaded media and opens it as a local file
type MediaStore interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, ref string) (path string, cleanup func(), err error)
}

// New builds the store selected by STORAGE_TYPE
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (MediaStore, error) {
	switch cfg.Type {
	case "minio":
		return NewMinIOStore(ctx, cfg, logger)
	case "local", "":
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// LocalStore keeps media on the local filesystem
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir when missing
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{dir: abs}, nil
}

// Put writes the media under the storage dir and returns its absolute path
func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+"-"+sanitizeName(filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close media file: %w", err)
	}
	return path, nil
}

// Open resolves absolute paths as-is and relative refs against the storage
// dir. Relative refs may not escape it.
func (s *LocalStore) Open(ctx context.Context, ref string) (string, func(), error) {
	path := ref
	if !filepath.IsAbs(ref) {
		path = filepath.Join(s.dir, filepath.Clean("/"+ref))
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, entities.ErrMediaNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat media: %w", err)
	}
	if info.IsDir() {
		return "", nil, entities.ErrMediaNotFound
	}
	return path, func() {}, nil
}

// sanitizeName keeps the base name and replaces characters unsafe in paths
// and object keys.
func sanitizeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "media"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
