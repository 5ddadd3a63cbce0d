package api

import (
	"encoding/json"
	"net/http"

	"github.com/mindvault/mindvault/internal/appconfig"
	"github.com/mindvault/mindvault/internal/document"
	"github.com/mindvault/mindvault/internal/models"
	"github.com/mindvault/mindvault/internal/vaultdir"
)

// Retargeter is notified when the active vault path changes so the change
// feed can follow it.
type Retargeter interface {
	SetVault(dir string)
}

// Handler holds API route handlers.
type Handler struct {
	vaults *vaultdir.Service
	docs   *document.Service
	config *appconfig.Service
	watch  Retargeter
}

// NewHandler creates a new Handler. watch may be nil when no change feed
// is running.
func NewHandler(vaults *vaultdir.Service, docs *document.Service, config *appconfig.Service, watch Retargeter) *Handler {
	return &Handler{vaults: vaults, docs: docs, config: config, watch: watch}
}

// queryPath extracts the required "path" query parameter.
func queryPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return "", false
	}
	return path, true
}

// ListVaultFiles handles GET /api/vault/files.
//
//	@Summary		List documents in a vault directory, newest first
//	@Tags			vault
//	@Produce		json
//	@Param			path	query		string	true	"Vault directory path"
//	@Success		200		{object}	FileListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/files [get]
func (h *Handler) ListVaultFiles(w http.ResponseWriter, r *http.Request) {
	path, ok := queryPath(w, r)
	if !ok {
		return
	}
	files, err := h.vaults.ListFiles(r.Context(), path)
	if err != nil {
		writeError(w, "list vault files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// GetSavedVaultPath handles GET /api/vault/path.
//
//	@Summary		Get the saved vault path, null when none is saved
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	VaultPathResponse
//	@Security		BearerAuth
//	@Router			/vault/path [get]
func (h *Handler) GetSavedVaultPath(w http.ResponseWriter, r *http.Request) {
	path, ok, err := h.vaults.SavedPath(r.Context())
	if err != nil {
		writeError(w, "get saved vault path", err)
		return
	}
	var resp VaultPathResponse
	if ok {
		resp.Path = &path
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaveVaultPath handles PUT /api/vault/path.
//
//	@Summary		Save the active vault path
//	@Tags			vault
//	@Accept			json
//	@Param			body	body	SaveVaultPathRequest	true	"Vault path to save"
//	@Success		204		"Saved"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/path [put]
func (h *Handler) SaveVaultPath(w http.ResponseWriter, r *http.Request) {
	var req SaveVaultPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.vaults.SaveVaultPath(r.Context(), req.Path); err != nil {
		writeError(w, "save vault path", err)
		return
	}
	if h.watch != nil {
		h.watch.SetVault(req.Path)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSavedVaultPath handles DELETE /api/vault/path.
//
//	@Summary		Clear the saved vault path
//	@Tags			vault
//	@Success		204	"Cleared"
//	@Security		BearerAuth
//	@Router			/vault/path [delete]
func (h *Handler) ClearSavedVaultPath(w http.ResponseWriter, r *http.Request) {
	if err := h.vaults.ClearSavedPath(r.Context()); err != nil {
		writeError(w, "clear saved vault path", err)
		return
	}
	if h.watch != nil {
		h.watch.SetVault("")
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReadDocument handles GET /api/documents.
//
//	@Summary		Read a document's full content
//	@Tags			documents
//	@Produce		json
//	@Param			path	query		string	true	"Document path"
//	@Success		200		{object}	DocumentResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ReadDocument(w http.ResponseWriter, r *http.Request) {
	path, ok := queryPath(w, r)
	if !ok {
		return
	}
	content, err := h.docs.Read(r.Context(), path)
	if err != nil {
		writeError(w, "read document", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Path: path, Content: content})
}

// WriteDocument handles PUT /api/documents.
//
//	@Summary		Write a document in place, creating parents as needed
//	@Tags			documents
//	@Accept			json
//	@Param			body	body	WriteDocumentRequest	true	"Document to write"
//	@Success		204		"Written"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [put]
func (h *Handler) WriteDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req WriteDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.docs.Write(r.Context(), req.Path, req.Content); err != nil {
		writeError(w, "write document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a document by name inside a vault
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	PathResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.VaultPath == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("vaultPath and name are required"))
		return
	}
	path, err := h.docs.Create(r.Context(), req.VaultPath, req.Name, req.Content)
	if err != nil {
		writeError(w, "create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, PathResponse{Path: path})
}

// DeleteDocument handles DELETE /api/documents.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	query	string	true	"Document path"
//	@Success		204		"Deleted"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path, ok := queryPath(w, r)
	if !ok {
		return
	}
	if err := h.docs.Delete(r.Context(), path); err != nil {
		writeError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameDocument handles POST /api/documents/rename.
//
//	@Summary		Rename a document within its directory
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenameDocumentRequest	true	"Rename request"
//	@Success		200		{object}	PathResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/rename [post]
func (h *Handler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	var req RenameDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.NewName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and newName are required"))
		return
	}
	newPath, err := h.docs.Rename(r.Context(), req.Path, req.NewName)
	if err != nil {
		writeError(w, "rename document", err)
		return
	}
	writeJSON(w, http.StatusOK, PathResponse{Path: newPath})
}

// DocumentExists handles GET /api/documents/exists.
//
//	@Summary		Report whether a path exists on disk
//	@Tags			documents
//	@Produce		json
//	@Param			path	query		string	true	"Path to check"
//	@Success		200		{object}	ExistsResponse
//	@Security		BearerAuth
//	@Router			/documents/exists [get]
func (h *Handler) DocumentExists(w http.ResponseWriter, r *http.Request) {
	path, ok := queryPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ExistsResponse{Exists: h.docs.Exists(r.Context(), path)})
}

// LoadConfig handles GET /api/config.
//
//	@Summary		Load the application configuration
//	@Tags			config
//	@Produce		json
//	@Success		200	{object}	AppConfigResponse
//	@Security		BearerAuth
//	@Router			/config [get]
func (h *Handler) LoadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Load(r.Context())
	if err != nil {
		writeError(w, "load config", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SaveConfig handles PUT /api/config.
//
//	@Summary		Replace the application configuration
//	@Tags			config
//	@Accept			json
//	@Param			body	body	AppConfigResponse	true	"Configuration to persist"
//	@Success		204		"Saved"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/config [put]
func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.AppConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.config.Save(r.Context(), cfg); err != nil {
		writeError(w, "save config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckVaultAccessible handles GET /api/config/vault-accessible.
//
//	@Summary		Report whether a vault directory is accessible
//	@Tags			config
//	@Produce		json
//	@Param			path	query		string	true	"Vault directory path"
//	@Success		200		{object}	AccessibleResponse
//	@Security		BearerAuth
//	@Router			/config/vault-accessible [get]
func (h *Handler) CheckVaultAccessible(w http.ResponseWriter, r *http.Request) {
	path, ok := queryPath(w, r)
	if !ok {
		return
	}
	accessible, err := h.config.CheckVaultAccessible(r.Context(), path)
	if err != nil {
		writeError(w, "check vault accessible", err)
		return
	}
	writeJSON(w, http.StatusOK, AccessibleResponse{Accessible: accessible})
}

// RegisterVault handles POST /api/config/vaults.
//
//	@Summary		Register a vault with a generated id
//	@Tags			config
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterVaultRequest	true	"Vault to register"
//	@Success		201		{object}	VaultEntryResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/config/vaults [post]
func (h *Handler) RegisterVault(w http.ResponseWriter, r *http.Request) {
	var req RegisterVaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and path are required"))
		return
	}
	entry, err := h.config.RegisterVault(r.Context(), req.Name, req.Path)
	if err != nil {
		writeError(w, "register vault", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
