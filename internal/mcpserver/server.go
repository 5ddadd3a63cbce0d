// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the vault and document tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mindvault/mindvault/internal/appconfig"
	"github.com/mindvault/mindvault/internal/document"
	"github.com/mindvault/mindvault/internal/vaultdir"
)

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp    *server.MCPServer
	vaults *vaultdir.Service
	docs   *document.Service
	config *appconfig.Service
}

// New creates a new MCP server with all vault tools registered.
func New(vaults *vaultdir.Service, docs *document.Service, config *appconfig.Service) *Server {
	s := &Server{vaults: vaults, docs: docs, config: config}

	s.mcp = server.NewMCPServer(
		"MindVault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_vaults",
		mcp.WithDescription("List the vaults registered in the application configuration."),
	), s.listVaults)

	s.mcp.AddTool(mcp.NewTool("register_vault",
		mcp.WithDescription("Register a vault directory under a display name. "+
			"Returns the stored entry with its generated id."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name for the vault")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the vault directory")),
	), s.registerVault)

	s.mcp.AddTool(mcp.NewTool("list_vault_files",
		mcp.WithDescription("List the documents in a vault directory, most recently modified first."),
		mcp.WithString("vault_path", mcp.Required(), mcp.Description("Absolute path of the vault directory")),
	), s.listVaultFiles)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the document")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a document by name inside a vault. The name is sanitized "+
			"and the document extension appended; existing documents are never overwritten."),
		mcp.WithString("vault_path", mcp.Required(), mcp.Description("Absolute path of the vault directory")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Document name without extension")),
		mcp.WithString("content", mcp.Description("Initial document content (empty if omitted)")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("update_document",
		mcp.WithDescription("Replace the full content of a document, creating parent directories as needed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the document")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New document content")),
	), s.updateDocument)

	s.mcp.AddTool(mcp.NewTool("rename_document",
		mcp.WithDescription("Rename a document within its directory. The new name is sanitized; "+
			"an existing document with that name is never replaced."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the document")),
		mcp.WithString("new_name", mcp.Required(), mcp.Description("New document name without extension")),
	), s.renameDocument)

	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a document. Only files carrying the document extension can be deleted."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the document")),
	), s.deleteDocument)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listVaults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cfg.Vaults, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) registerVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.config.RegisterVault(ctx, name, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entry, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listVaultFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vaultPath, err := req.RequireString("vault_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.vaults.ListFiles(ctx, vaultPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.docs.Read(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vaultPath, err := req.RequireString("vault_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := ""
	if c, err := req.RequireString("content"); err == nil {
		content = c
	}

	path, err := s.docs.Create(ctx, vaultPath, name, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) updateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.docs.Write(ctx, path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", path)), nil
}

func (s *Server) renameDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := req.RequireString("new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := s.docs.Rename(ctx, path, newName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s", newPath)), nil
}

func (s *Server) deleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.docs.Delete(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", path)), nil
}
