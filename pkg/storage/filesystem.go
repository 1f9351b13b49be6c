package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxAttachmentSize caps a single stored attachment.
const MaxAttachmentSize = 10 << 20

// ErrTooLarge is returned when an attachment exceeds MaxAttachmentSize.
var ErrTooLarge = fmt.Errorf("attachment exceeds %d bytes", MaxAttachmentSize)

// LocalStorage keeps submission attachments on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./attachments"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save copies r into a new file under folder and returns its path relative to the base dir.
// The stored name is random; only the extension of originalName is kept.
func (s *LocalStorage) Save(folder, originalName string, r io.Reader) (string, error) {
	rel := filepath.Join(sanitize(folder), uuid.NewString()+strings.ToLower(filepath.Ext(originalName)))
	path, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare attachment directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	n, err := io.Copy(file, io.LimitReader(r, MaxAttachmentSize+1))
	closeErr := file.Close()
	if err == nil && n > MaxAttachmentSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Open returns a read-only handle for a stored attachment.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return file, nil
}

// Delete removes a stored attachment if present.
func (s *LocalStorage) Delete(rel string) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// resolve maps rel under the base dir and refuses anything that escapes it.
func (s *LocalStorage) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid attachment path %q", rel)
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	inside, err := filepath.Rel(s.baseDir, path)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid attachment path %q", rel)
	}
	return path, nil
}

func sanitize(folder string) string {
	folder = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, folder)
	if folder == "" {
		return "misc"
	}
	return folder
}
