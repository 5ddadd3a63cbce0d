package api

import (
	"github.com/mindvault/mindvault/internal/models"
)

// SaveVaultPathRequest is the request body for saving the active vault path.
type SaveVaultPathRequest struct {
	Path string `json:"path" example:"/home/user/vaults/personal" validate:"required"`
}

// VaultPathResponse carries the saved vault path; Path is null when no
// vault has been saved.
type VaultPathResponse struct {
	Path *string `json:"path"`
}

// FileListResponse wraps a vault directory listing.
type FileListResponse struct {
	Files []models.FileEntry `json:"files" validate:"required"`
}

// WriteDocumentRequest is the request body for writing a document in place.
type WriteDocumentRequest struct {
	Path    string `json:"path" example:"/vaults/personal/ideas.mschema" validate:"required"`
	Content string `json:"content"`
}

// CreateDocumentRequest is the request body for creating a document by name.
type CreateDocumentRequest struct {
	VaultPath string `json:"vaultPath" example:"/vaults/personal" validate:"required"`
	Name      string `json:"name" example:"New Map" validate:"required"`
	Content   string `json:"content"`
}

// RenameDocumentRequest is the request body for renaming a document.
type RenameDocumentRequest struct {
	Path    string `json:"path" example:"/vaults/personal/old.mschema" validate:"required"`
	NewName string `json:"newName" example:"Renamed Map" validate:"required"`
}

// DocumentResponse returns a document's content.
type DocumentResponse struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content"`
}

// PathResponse returns the absolute path produced by create and rename.
type PathResponse struct {
	Path string `json:"path" example:"/vaults/personal/New Map.mschema" validate:"required"`
}

// ExistsResponse reports whether a path exists on disk.
type ExistsResponse struct {
	Exists bool `json:"exists" validate:"required"`
}

// AccessibleResponse reports whether a vault directory can be listed.
type AccessibleResponse struct {
	Accessible bool `json:"accessible" validate:"required"`
}

// RegisterVaultRequest is the request body for registering a vault.
type RegisterVaultRequest struct {
	Name string `json:"name" example:"Personal" validate:"required"`
	Path string `json:"path" example:"/home/user/vaults/personal" validate:"required"`
}

// AppConfigResponse is the persisted application configuration (aliased
// from the domain layer).
type AppConfigResponse = models.AppConfig

// VaultEntryResponse is a registered vault (aliased from the domain layer).
type VaultEntryResponse = models.VaultEntry
