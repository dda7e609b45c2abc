// Package storage persists announcement attachments on the local
// filesystem under a public static directory.
//
// Writes are two-phase: bytes land in a staging directory first and are
// renamed into the public uploads directory only after the database
// transaction referencing them has committed. A failed transaction discards
// the staged file; files orphaned by a crash are removed by a scheduled
// sweep.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadsDirName = "uploads"
	stagingDirName = ".staging"
)

type LocalStore struct {
	publicDir  string
	uploadsDir string
	stagingDir string
}

// NewLocalStore prepares the uploads and staging directories under
// publicDir, creating them if missing.
func NewLocalStore(publicDir string) (*LocalStore, error) {
	if strings.TrimSpace(publicDir) == "" {
		return nil, errors.New("public directory is required")
	}

	uploadsDir := filepath.Join(publicDir, uploadsDirName)
	stagingDir := filepath.Join(publicDir, stagingDirName)
	for _, dir := range []string{uploadsDir, stagingDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return &LocalStore{
		publicDir:  publicDir,
		uploadsDir: uploadsDir,
		stagingDir: stagingDir,
	}, nil
}

// StagedFile is an upload that has been written to disk but is not yet
// publicly reachable.
type StagedFile struct {
	name        string
	stagingPath string
	size        int64
	store       *LocalStore
}

// Stage writes the upload to the staging directory under a
// "<uuid>-<original name>" file name so concurrent uploads of the same file
// never collide.
func (s *LocalStore) Stage(originalName string, r io.Reader) (*StagedFile, error) {
	name := uuid.NewString() + "-" + sanitizeFileName(originalName)
	stagingPath := filepath.Join(s.stagingDir, name)

	out, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	written, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		os.Remove(stagingPath)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(stagingPath)
		return nil, fmt.Errorf("close staged file: %w", err)
	}

	return &StagedFile{
		name:        name,
		stagingPath: stagingPath,
		size:        written,
		store:       s,
	}, nil
}

// Size is the number of bytes written to the staging directory.
func (f *StagedFile) Size() int64 {
	return f.size
}

// PublicPath is the relative path clients use to fetch the file once
// promoted, always forward-slashed.
func (f *StagedFile) PublicPath() string {
	return path.Join(uploadsDirName, f.name)
}

// Promote moves the staged file into the public uploads directory. Called
// after the owning transaction commits.
func (f *StagedFile) Promote() error {
	return os.Rename(f.stagingPath, filepath.Join(f.store.uploadsDir, f.name))
}

// Discard removes the staged file; used when the transaction rolls back.
func (f *StagedFile) Discard() error {
	err := os.Remove(f.stagingPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Remove deletes a promoted file given its public-relative path. Only
// paths inside the uploads directory are honored.
func (s *LocalStore) Remove(publicPath string) error {
	name := path.Base(filepath.ToSlash(publicPath))
	if name == "." || name == "/" || name == "" {
		return errors.New("invalid upload path")
	}

	err := os.Remove(filepath.Join(s.uploadsDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SweepStaged deletes staged files older than maxAge. These are leftovers
// from transactions that never completed (process crash between stage and
// promote/discard).
func (s *LocalStore) SweepStaged(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.stagingDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(filepath.ToSlash(strings.TrimSpace(name)))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, base)
}
