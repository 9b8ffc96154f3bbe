// Package mcp exposes the context store to coding agents over the Model
// Context Protocol. The server speaks stdio only; logs must go to stderr.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/mx/pkg/snippets"
	"github.com/jingkaihe/mx/pkg/store"
	"github.com/jingkaihe/mx/pkg/telemetry"
	"github.com/jingkaihe/mx/pkg/version"
)

const readDescription = `Read a document from the project's context store by symbolic key. Keys are short aliases (tk = tasks, rq = requirements, nt = notes, ds = design, bg = bugs, id = ideas, pdt = pending tasks), numbered variants like tk2, pd-prefixed pending variants like pd-rq, or relative paths such as docs/spec.`

const writeDescription = `Create or update a document in the project's context store. Existing documents are left untouched unless force is set; check the returned "overwritten" field.`

const removeDescription = `Remove a document from the project's context store. Directories left empty by the removal are pruned.`

const listDescription = `List the documents in the project's context store with their keys and front matter metadata. An optional doublestar pattern (pending/**) filters by relative path.`

// Server serves store operations over MCP.
type Server struct {
	store *store.Store
	mcp   *mcpserver.MCPServer
}

// NewServer creates an MCP server with all context tools registered. It is
// separate from Serve so tests can exercise a configured server without the
// stdio transport.
func NewServer(s *store.Store) *Server {
	server := &Server{
		store: s,
		mcp:   mcpserver.NewMCPServer("mx", version.Get().Version),
	}
	server.registerTools()
	return server
}

// Serve blocks serving the MCP protocol over stdio until stdin closes.
func (s *Server) Serve(_ context.Context) error {
	return mcpserver.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("context_read",
		mcp.WithDescription(readDescription),
		mcp.WithString("key",
			mcp.Description("Symbolic key or relative path of the document."),
			mcp.Required(),
		),
	), s.handleRead)

	s.mcp.AddTool(mcp.NewTool("context_write",
		mcp.WithDescription(writeDescription),
		mcp.WithString("key",
			mcp.Description("Symbolic key or relative path of the document."),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("Full document content to store."),
			mcp.Required(),
		),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite the document if it already exists."),
		),
	), s.handleWrite)

	s.mcp.AddTool(mcp.NewTool("context_remove",
		mcp.WithDescription(removeDescription),
		mcp.WithString("key",
			mcp.Description("Symbolic key or relative path of the document."),
			mcp.Required(),
		),
	), s.handleRemove)

	s.mcp.AddTool(mcp.NewTool("context_list",
		mcp.WithDescription(listDescription),
		mcp.WithString("pattern",
			mcp.Description("Optional doublestar pattern filtering relative paths."),
		),
	), s.handleList)
}

func (s *Server) handleRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	var content string
	err := telemetry.WithSpan(ctx, "mcp.context_read", func(ctx context.Context) error {
		var err error
		content, err = s.store.Cat(ctx, key)
		return err
	}, attribute.String("key", key))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleWrite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}
	content := req.GetString("content", "")
	force := req.GetBool("force", false)

	var outcome *store.TouchOutcome
	err := telemetry.WithSpan(ctx, "mcp.context_write", func(ctx context.Context) error {
		var err error
		outcome, err = s.store.Write(ctx, key, content, force)
		return err
	}, attribute.String("key", key))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(outcome)
}

func (s *Server) handleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	var outcome *store.CleanOutcome
	err := telemetry.WithSpan(ctx, "mcp.context_remove", func(ctx context.Context) error {
		var err error
		outcome, err = s.store.Clean(ctx, key)
		return err
	}, attribute.String("key", key))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(outcome)
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern := req.GetString("pattern", "")

	var entries []snippets.Entry
	err := telemetry.WithSpan(ctx, "mcp.context_list", func(ctx context.Context) error {
		var err error
		entries, err = snippets.List(ctx, s.store.Resolver(), pattern)
		return err
	}, attribute.String("pattern", pattern))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if entries == nil {
		entries = make([]snippets.Entry, 0)
	}
	return jsonResult(entries)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
