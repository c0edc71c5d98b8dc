// Package uploads persists user supplied images under the application root
// and hands back references of the form uploads/<category>/<file>.
package uploads

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Apurer/pet-community/internal/shared/upload"
)

// DefaultMaxBytes is the largest accepted image.
const DefaultMaxBytes int64 = 4 << 20

// Dir is the top-level directory under the application root, and the first
// segment of every reference.
const Dir = upload.RootDir

var (
	ErrUploadFailed      = errors.New("please upload a valid image file")
	ErrNotUploadArtifact = errors.New("the uploaded file could not be processed")
	ErrInvalidSize       = errors.New("image size must be between 1 byte and 4 MB")
	ErrUnsupportedType   = errors.New("allowed image types: JPG, PNG, GIF, WEBP")
	ErrSaveFailed        = errors.New("failed to save uploaded image")
	ErrOutsideRoot       = errors.New("reference is outside the upload directory")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Store writes images below <root>/uploads.
type Store struct {
	root     string
	maxBytes int64
	logger   *slog.Logger
}

type Option func(*Store)

// WithMaxBytes overrides DefaultMaxBytes. Non-positive values are ignored.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New prepares a store rooted at appRoot.
func New(appRoot string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(appRoot)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve root: %w", err)
	}
	s := &Store{root: abs, maxBytes: DefaultMaxBytes, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := os.MkdirAll(s.Root(), 0o775); err != nil {
		return nil, fmt.Errorf("uploads: create %s: %w", s.Root(), err)
	}
	return s, nil
}

// Root is the directory references are resolved against.
func (s *Store) Root() string {
	return filepath.Join(s.root, Dir)
}

// Store validates the upload and saves it as <seed>_<random>.<ext> in the
// category directory.
func (s *Store) Store(ctx context.Context, file upload.File, category upload.Category, nameSeed string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file.Status != upload.StatusReceived {
		return "", ErrUploadFailed
	}
	if file.Source == nil {
		return "", ErrNotUploadArtifact
	}
	if file.Size <= 0 || file.Size > s.maxBytes {
		return "", ErrInvalidSize
	}

	src, err := file.Source.Open()
	if err != nil {
		return "", ErrNotUploadArtifact
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", s.saveFailed(ctx, category, err)
	}
	if len(data) == 0 || int64(len(data)) > s.maxBytes {
		return "", ErrInvalidSize
	}
	ext, ok := extensions[mimetype.Detect(data).String()]
	if !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.Root(), string(category))
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", s.saveFailed(ctx, category, err)
	}
	name := fmt.Sprintf("%s_%s.%s", sanitize(nameSeed), randomHex(), ext)
	if err := writeAtomic(dir, name, data); err != nil {
		return "", s.saveFailed(ctx, category, err)
	}
	ref := path.Join(Dir, string(category), name)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "upload stored",
		slog.String("ref", ref),
		slog.Int("bytes", len(data)),
	)
	return ref, nil
}

// saveFailed logs the cause; callers only see ErrSaveFailed since its text
// is shown to the member.
func (s *Store) saveFailed(ctx context.Context, category upload.Category, cause error) error {
	s.logger.LogAttrs(ctx, slog.LevelError, "failed to save upload",
		slog.String("category", string(category)),
		slog.String("error", cause.Error()),
	)
	return ErrSaveFailed
}

// Remove deletes the referenced file. Missing files and references outside
// the upload directory are ignored.
func (s *Store) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.Path(ref)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("uploads: remove %s: %w", ref, err)
	}
	return nil
}

// Path resolves a reference to an absolute file path inside Root.
func (s *Store) Path(ref string) (string, error) {
	ref = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(ref)), "/")
	clean := path.Clean(ref)
	if !strings.HasPrefix(clean, Dir+"/") {
		return "", ErrOutsideRoot
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.Root(), full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Open opens the referenced file for reading.
func (s *Store) Open(ref string) (*os.File, error) {
	p, err := s.Path(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func sanitize(seed string) string {
	var b strings.Builder
	for _, r := range seed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "img"
	}
	return b.String()
}

func randomHex() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}
