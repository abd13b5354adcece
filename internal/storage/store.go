// Package storage manages the private file root: the directory holding files
// eligible for sharing, never exposed to the web directly.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrInvalidFilename indicates a client-supplied name that may not be
	// used to build a filesystem path.
	ErrInvalidFilename = errors.New("invalid filename")
	// ErrFileNotFound indicates the named file is not in the store.
	ErrFileNotFound = errors.New("file not found")
)

// tmpPrefix marks in-flight upload files. They live inside the root so the
// final rename is atomic, and are hidden from listings and lookups.
const tmpPrefix = ".defile-"

// Store is a flat directory of shareable files.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a Store over it.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute private storage root.
func (s *Store) Root() string {
	return s.root
}

// SanitizeFilename validates a client-supplied filename for use as a path
// component. It rejects empty names, path separators, ".." segments, NUL
// bytes, and dot-prefixed names (reserved for in-flight temp files).
// The name is returned unchanged when acceptable: rejected, not rewritten,
// so a share's filename always matches what is on disk.
func SanitizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidFilename
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", ErrInvalidFilename
	}
	if strings.HasPrefix(name, ".") {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// path maps a sanitized filename to its absolute location under the root.
func (s *Store) path(name string) (string, error) {
	name, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// FileWriter streams one incoming file into the store. Bytes land in a
// temporary file; the destination name appears only after Commit, so an
// aborted transfer never leaves a partial file visible.
type FileWriter struct {
	tmp  *os.File
	dest string
	done bool
}

// Write appends a chunk to the in-flight file.
func (w *FileWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

// Commit flushes the file to durable storage and renames it into place.
func (w *FileWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.tmp.Sync(); err != nil {
		w.tmp.Close()
		os.Remove(w.tmp.Name())
		return fmt.Errorf("sync upload: %w", err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(w.tmp.Name(), w.dest); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Abort discards the in-flight file. Safe to call after Commit.
func (w *FileWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}

// Create opens a temp-backed writer for name. Concurrent uploads to the same
// name are not deduplicated; the last Commit wins.
func (s *Store) Create(name string) (*FileWriter, error) {
	dest, err := s.path(name)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.root, tmpPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create upload temp file: %w", err)
	}

	return &FileWriter{tmp: tmp, dest: dest}, nil
}

// Open returns a readable handle and size for a stored file.
func (s *Store) Open(name string) (*os.File, int64, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("open %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat %q: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, ErrFileNotFound
	}

	return f, info.Size(), nil
}

// Exists reports whether name refers to a stored regular file.
func (s *Store) Exists(name string) bool {
	p, err := s.path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes a stored file. Removing an absent file is a no-op.
func (s *Store) Remove(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

// FileInfo describes one stored file for the admin listing.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	SHA256  string
}

// List returns every stored file with a derived content hash, sorted by
// name. Hashes are recomputed per call; acceptable for a small private
// store, and it keeps the listing honest after out-of-band edits.
func (s *Store) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		sum, err := s.hashFile(entry.Name())
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			SHA256:  sum,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// hashFile computes the SHA-256 of a stored file.
func (s *Store) hashFile(name string) (string, error) {
	f, _, err := s.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %q: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
