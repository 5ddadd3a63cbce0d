// Package appconfig persists the application configuration store: the list
// of vaults the user has registered.
package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mindvault/mindvault/internal/appdir"
	"github.com/mindvault/mindvault/internal/models"
)

// configFile is the persisted application configuration in the app data
// directory.
const configFile = "config.json"

// Service loads and saves the application configuration.
type Service struct {
	locate appdir.Locator
}

// NewService creates an application config service.
func NewService(locate appdir.Locator) *Service {
	return &Service{locate: locate}
}

// Load reads the persisted configuration. A missing file yields an empty
// configuration; Vaults is never nil.
func (s *Service) Load(_ context.Context) (models.AppConfig, error) {
	empty := models.AppConfig{Vaults: []models.VaultEntry{}}

	dir, err := s.locate()
	if err != nil {
		return empty, fmt.Errorf("failed to resolve app data directory: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return empty, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg models.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return empty, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Vaults == nil {
		cfg.Vaults = []models.VaultEntry{}
	}
	return cfg, nil
}

// Save writes the configuration, creating the app data directory if
// needed. The whole file is replaced on every save.
func (s *Service) Save(_ context.Context, cfg models.AppConfig) error {
	dir, err := s.locate()
	if err != nil {
		return fmt.Errorf("failed to resolve app data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if cfg.Vaults == nil {
		cfg.Vaults = []models.VaultEntry{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CheckVaultAccessible reports whether path is a directory that can be
// listed. Missing, non-directory, and unreadable paths all report false
// rather than an error.
func (s *Service) CheckVaultAccessible(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false, nil
	}
	if _, err := os.ReadDir(path); err != nil {
		return false, nil
	}
	return true, nil
}

// RegisterVault appends a vault with a generated id to the configuration
// and persists it. The entry is returned as stored.
func (s *Service) RegisterVault(ctx context.Context, name, path string) (models.VaultEntry, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return models.VaultEntry{}, err
	}
	entry := models.VaultEntry{
		ID:   uuid.New().String(),
		Name: name,
		Path: path,
	}
	cfg.Vaults = append(cfg.Vaults, entry)
	if err := s.Save(ctx, cfg); err != nil {
		return models.VaultEntry{}, err
	}
	return entry, nil
}
