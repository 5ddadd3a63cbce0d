// Package vaultdir implements vault discovery: listing the documents in a
// vault directory and remembering which vault was opened last.
package vaultdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mindvault/mindvault/internal/apperr"
	"github.com/mindvault/mindvault/internal/appdir"
	"github.com/mindvault/mindvault/internal/models"
)

// vaultConfigFile records the most recently opened vault path. It lives in
// the app data directory next to the application config.
const vaultConfigFile = "vault_config.json"

// unknownModified marks entries whose file metadata could not be read.
const unknownModified = "Unknown"

// Service lists vault directories and persists the saved vault path.
type Service struct {
	locate appdir.Locator
	ext    string // document extension including the dot, e.g. ".mschema"
}

// NewService creates a vault directory service. ext is the document
// extension including the leading dot.
func NewService(locate appdir.Locator, ext string) *Service {
	return &Service{locate: locate, ext: ext}
}

// ListFiles returns every document in vaultPath, most recently modified
// first. The listing is a fresh snapshot of the directory on every call.
func (s *Service) ListFiles(_ context.Context, vaultPath string) ([]models.FileEntry, error) {
	info, err := os.Stat(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("vault path does not exist: %s: %w", vaultPath, apperr.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path is not a directory: %s: %w", vaultPath, apperr.ErrInvalid)
	}

	entries, err := os.ReadDir(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]models.FileEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != s.ext {
			continue
		}
		stem := strings.TrimSuffix(name, s.ext)
		if stem == "" {
			// A bare ".mschema" has no stem to display.
			continue
		}
		files = append(files, models.FileEntry{
			Name:       stem,
			Path:       filepath.Join(vaultPath, name),
			ModifiedAt: modifiedAt(entry),
		})
	}

	// The timestamps are fixed-width RFC 3339 UTC strings, so a plain string
	// sort orders them chronologically. "Unknown" entries sort first.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedAt > files[j].ModifiedAt
	})
	return files, nil
}

// modifiedAt formats the entry's mtime. Metadata failures degrade to
// "Unknown" rather than failing the whole listing.
func modifiedAt(entry fs.DirEntry) string {
	info, err := entry.Info()
	if err != nil {
		return unknownModified
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}

// SavedPath returns the vault path recorded by SaveVaultPath. The second
// return is false when no path has been saved, including when the record
// exists but is not a JSON object or carries no usable vault_path value.
func (s *Service) SavedPath(_ context.Context) (string, bool, error) {
	dir, err := s.locate()
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve app data directory: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, vaultConfigFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read vault config: %w", err)
	}
	var record any
	if err := json.Unmarshal(data, &record); err != nil {
		return "", false, fmt.Errorf("failed to parse vault config: %w", err)
	}
	obj, ok := record.(map[string]any)
	if !ok {
		return "", false, nil
	}
	path, ok := obj["vault_path"].(string)
	if !ok {
		return "", false, nil
	}
	return path, true, nil
}

// SaveVaultPath records vaultPath as the active vault, creating the app
// data directory if needed. The path is not validated; callers may save a
// vault before it exists.
func (s *Service) SaveVaultPath(_ context.Context, vaultPath string) error {
	dir, err := s.locate()
	if err != nil {
		return fmt.Errorf("failed to resolve app data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(map[string]string{"vault_path": vaultPath}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize vault config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, vaultConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write vault config: %w", err)
	}
	return nil
}

// ClearSavedPath removes the saved vault path record. Clearing an already
// absent record succeeds.
func (s *Service) ClearSavedPath(_ context.Context) error {
	dir, err := s.locate()
	if err != nil {
		return fmt.Errorf("failed to resolve app data directory: %w", err)
	}
	if err := os.Remove(filepath.Join(dir, vaultConfigFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove vault config: %w", err)
	}
	return nil
}
