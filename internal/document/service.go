// Package document implements single-document operations on vault files.
// Every operation is a direct filesystem call with no cross-call state; the
// most recent write wins.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mindvault/mindvault/internal/apperr"
)

// Service reads and writes vault documents.
type Service struct {
	ext string // document extension including the dot, e.g. ".mschema"
}

// NewService creates a document service for files carrying ext.
func NewService(ext string) *Service {
	return &Service{ext: ext}
}

// Read returns the full content of the document at path.
func (s *Service) Read(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file does not exist: %s: %w", path, apperr.ErrNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// Write replaces the content of the document at path, creating parent
// directories as needed. The file is overwritten in place.
func (s *Service) Write(_ context.Context, path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Create writes a new document named after name inside vaultPath and
// returns its absolute path. The name is sanitized before the extension is
// appended; an existing file with that name is never overwritten.
func (s *Service) Create(_ context.Context, vaultPath, name, content string) (string, error) {
	info, err := os.Stat(vaultPath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("invalid vault path: %s: %w", vaultPath, apperr.ErrInvalid)
	}
	filename := sanitizeName(name) + s.ext
	path := filepath.Join(vaultPath, filename)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("file already exists: %s: %w", filename, apperr.ErrAlreadyExists)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	return path, nil
}

// Delete removes the document at path. Only files carrying the document
// extension can be deleted; a bare extension dotfile has no name and is
// refused.
func (s *Service) Delete(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %s: %w", path, apperr.ErrNotFound)
	}
	stem := strings.TrimSuffix(filepath.Base(path), s.ext)
	if info.IsDir() || filepath.Ext(path) != s.ext || stem == "" {
		return fmt.Errorf("can only delete %s files: %w", s.ext, apperr.ErrInvalid)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Rename gives the document at oldPath a new name within the same
// directory and returns the new absolute path. The target name must be
// free; renaming a document to its current name is a collision like any
// other.
func (s *Service) Rename(_ context.Context, oldPath, newName string) (string, error) {
	if _, err := os.Stat(oldPath); err != nil {
		return "", fmt.Errorf("file does not exist: %s: %w", oldPath, apperr.ErrNotFound)
	}
	filename := sanitizeName(newName) + s.ext
	newPath := filepath.Join(filepath.Dir(oldPath), filename)
	if _, err := os.Stat(newPath); err == nil {
		return "", fmt.Errorf("a file with that name already exists: %s: %w", filename, apperr.ErrAlreadyExists)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}
	return newPath, nil
}

// Exists reports whether path points at anything on disk. It never fails;
// unreadable paths count as absent.
func (s *Service) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sanitizeName keeps letters, numbers, spaces, hyphens, underscores and
// dots, drops every other rune, and trims surrounding whitespace. Path
// separators never survive, so a sanitized name cannot leave its vault.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
