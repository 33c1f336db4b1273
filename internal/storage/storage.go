// Package storage writes uploaded blobs and maps them to public reference paths.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrInvalidRef is returned for references outside the store's public prefix.
var ErrInvalidRef = errors.New("reference does not belong to this store")

// BlobStore persists uploaded files under collision-resistant names.
type BlobStore interface {
	// Put stores r under a name derived from originalName and returns the
	// public reference path.
	Put(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Remove deletes a blob by the reference Put returned. Missing blobs are
	// not an error.
	Remove(ctx context.Context, ref string) error
}

// LocalStore is a BlobStore on an afero filesystem, normally the OS
// filesystem rooted at UPLOAD_DIR.
type LocalStore struct {
	fs     afero.Fs
	dir    string
	prefix string
	now    func() time.Time
}

// NewLocalStore creates dir if absent. References look like prefix/<name>.
func NewLocalStore(fs afero.Fs, dir, prefix string) (*LocalStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{
		fs:     fs,
		dir:    dir,
		prefix: "/" + strings.Trim(prefix, "/"),
		now:    time.Now,
	}, nil
}

// Dir returns the directory blobs are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Prefix returns the public path prefix of references.
func (s *LocalStore) Prefix() string {
	return s.prefix
}

func (s *LocalStore) Put(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeName(originalName))
	f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		name = fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], SanitizeName(originalName))
		f, err = s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}

	full := filepath.Join(s.dir, name)
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(full)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(full)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return path.Join(s.prefix, name), nil
}

func (s *LocalStore) Remove(_ context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, s.prefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return ErrInvalidRef
	}
	err := s.fs.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces an uploaded filename to a safe base name, keeping the
// extension.
func SanitizeName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" || base == "_" {
		return "upload"
	}
	if len(base) > 100 {
		ext := filepath.Ext(base)
		if len(ext) > 10 {
			ext = ""
		}
		base = base[:100-len(ext)] + ext
	}
	return base
}
