// Package models defines the domain types for mindvault.
package models

// FileEntry describes one document in a vault directory listing.
type FileEntry struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	ModifiedAt string `json:"modifiedAt"` // RFC 3339 UTC, or "Unknown" when metadata is unavailable
}

// VaultEntry is a vault registered in the application configuration.
type VaultEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// AppConfig is the persisted application configuration. Vaults is never
// nil so the wire form is always a JSON array.
type AppConfig struct {
	Vaults []VaultEntry `json:"vaults"`
}
