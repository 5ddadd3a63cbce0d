package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault directory.
	r.Get("/vault/files", h.ListVaultFiles)
	r.Get("/vault/path", h.GetSavedVaultPath)
	r.Put("/vault/path", h.SaveVaultPath)
	r.Delete("/vault/path", h.ClearSavedVaultPath)

	// Documents.
	r.Get("/documents", h.ReadDocument)
	r.Put("/documents", h.WriteDocument)
	r.Post("/documents", h.CreateDocument)
	r.Delete("/documents", h.DeleteDocument)
	r.Post("/documents/rename", h.RenameDocument)
	r.Get("/documents/exists", h.DocumentExists)

	// Application config.
	r.Get("/config", h.LoadConfig)
	r.Put("/config", h.SaveConfig)
	r.Get("/config/vault-accessible", h.CheckVaultAccessible)
	r.Post("/config/vaults", h.RegisterVault)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
