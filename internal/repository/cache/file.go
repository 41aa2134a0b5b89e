package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/bedrock-up/internal/manifest"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

const (
	// DefaultPath is where the catalog snapshot lives unless configured otherwise.
	DefaultPath = "~/.bedrock-up/links.json"

	// filePermissions is applied to the snapshot file.
	filePermissions os.FileMode = 0o644

	// dirPermissions is applied to created ancestor directories.
	dirPermissions os.FileMode = 0o755
)

// Repository defines persistence operations for the catalog snapshot.
type Repository interface {
	Load(ctx context.Context) (*manifest.Document, error)
	Save(ctx context.Context, doc *manifest.Document) error
}

// ErrNotFound is returned when no snapshot has been written yet.
var ErrNotFound = errors.New("cache not found")

// errAbsentDocument is returned when an absent document is saved.
var errAbsentDocument = errors.New("refusing to cache an absent document")

// FileRepository persists the catalog snapshot to a JSON file on disk.
// There is no locking: the last writer wins.
type FileRepository struct {
	// path is the user supplied location, possibly starting with "~".
	path string
	// expand resolves path before every access.
	expand common.PathExpander
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithPathExpander replaces the home directory expansion.
func WithPathExpander(expand common.PathExpander) Option {
	return func(r *FileRepository) {
		if expand != nil {
			r.expand = expand
		}
	}
}

// NewFileRepository creates a repository that reads and writes JSON at path.
func NewFileRepository(path string, opts ...Option) *FileRepository {
	if path == "" {
		path = DefaultPath
	}

	r := &FileRepository{
		path:   path,
		expand: common.ExpandPath,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the expanded location of the snapshot file.
func (r *FileRepository) Path() (string, error) {
	return r.expand(r.path)
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*manifest.Document, error) {
	path, err := r.Path()
	if err != nil {
		return nil, err
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read cache file: %w", err)
	}

	doc, err := manifest.Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", path, err)
	}

	return doc, nil
}

// Save writes the snapshot to disk, creating missing ancestor directories.
func (r *FileRepository) Save(_ context.Context, doc *manifest.Document) error {
	if doc.IsAbsent() {
		return errAbsentDocument
	}

	path, err := r.Path()
	if err != nil {
		return err
	}

	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err = os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}
