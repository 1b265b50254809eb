// Package mcp exposes vault operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

// ServerName is advertised to MCP clients.
const ServerName = "my-second-brain"

// VaultServer registers the vault tools on an MCP server.
type VaultServer struct {
	svc       *vault.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewVaultServer creates a VaultServer advertising version.
func NewVaultServer(svc *vault.Service, logger *slog.Logger, version string) *VaultServer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	vs := &VaultServer{svc: svc, logger: logger}
	vs.mcpServer = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	vs.registerTools()
	return vs
}

// MCPServer returns the underlying server.
func (s *VaultServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the client disconnects.
func (s *VaultServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *VaultServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note from the vault by its path"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(`Relative path from the vault root (e.g. "Projects/my-note.md")`),
		),
	), s.handleReadNote)

	s.mcpServer.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Create or update a note in the vault"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(`Relative path for the note (e.g. "Projects/new-note.md")`),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content for the note, without frontmatter"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags for the frontmatter (optional)"),
		),
		mcp.WithString("title",
			mcp.Description("Title (optional, defaults to the filename)"),
		),
	), s.handleWriteNote)

	s.mcpServer.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Permanently delete a note from the vault"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Relative path to the note to delete"),
		),
	), s.handleDeleteNote)

	s.mcpServer.AddTool(mcp.NewTool("rename_note",
		mcp.WithDescription("Move a note to a new path and update the wikilinks that point at it"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Current relative path of the note"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("New relative path for the note"),
		),
	), s.handleRenameNote)

	s.mcpServer.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes in the vault or in one folder"),
		mcp.WithString("folder",
			mcp.Description("Relative folder path (empty for the whole vault)"),
		),
	), s.handleListNotes)

	s.mcpServer.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search across the notes of the vault"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms, separated by whitespace"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default 10)"),
		),
	), s.handleSearchNotes)

	s.mcpServer.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to a note"),
		mcp.WithString("note_name",
			mcp.Required(),
			mcp.Description("Name of the note, without extension"),
		),
	), s.handleGetBacklinks)

	s.mcpServer.AddTool(mcp.NewTool("get_outgoing_links",
		mcp.WithDescription("Find all existing notes a note links to"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description(`Relative path to the note (e.g. "Projects/note.md")`),
		),
	), s.handleGetOutgoingLinks)
}

func (s *VaultServer) handleReadNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note, err := s.svc.ReadNote(ctx, p)
	if err != nil {
		return s.toolError("read", p, "reading note", err), nil
	}
	if note == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Note not found: %s", p)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", note.Title)
	fmt.Fprintf(&b, "**Path:** %s\n", note.Path)
	fmt.Fprintf(&b, "**Tags:** %s\n", joinOrNone(note.Metadata.Tags))
	fmt.Fprintf(&b, "**Aliases:** %s\n", joinOrNone(note.Metadata.Aliases))
	b.WriteString("\n---\n\n")
	b.WriteString(note.Content)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *VaultServer) handleWriteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var fields map[string]any
	if tags := splitTags(request.GetString("tags", "")); len(tags) > 0 {
		fields = map[string]any{"tags": tags}
	}
	if title := request.GetString("title", ""); title != "" {
		if fields == nil {
			fields = map[string]any{}
		}
		fields["title"] = title
	}

	note, err := s.svc.WriteNote(ctx, p, content, fields)
	if err != nil {
		return s.toolError("write", p, "writing note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully wrote note: %s\nTitle: %s", note.Path, note.Title)), nil
}

func (s *VaultServer) handleDeleteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	deleted, err := s.svc.DeleteNote(ctx, p)
	if err != nil {
		return s.toolError("delete", p, "deleting note", err), nil
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("Note not found: %s", p)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted note: %s", p)), nil
}

func (s *VaultServer) handleRenameNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	moved, rewritten, err := s.svc.RenameNote(ctx, from, to)
	if err != nil {
		return s.toolError("rename", from, "renaming note", err), nil
	}
	if moved == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Note not found: %s", from)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Renamed %s to %s (links updated in %d notes)", from, moved.Path, rewritten)), nil
}

func (s *VaultServer) handleListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := request.GetString("folder", "")

	paths, err := s.svc.ListNotes(ctx, folder)
	if err != nil {
		if errors.Is(err, core.ErrPathTraversal) {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid folder path: %v", err)), nil
		}
		return s.toolError("list", folder, "listing notes", err), nil
	}
	if len(paths) == 0 {
		if folder != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No notes found in folder: %s", folder)), nil
		}
		return mcp.NewToolResultText("No notes found in vault."), nil
	}

	byFolder := lo.GroupBy(paths, func(p string) string {
		if dir := path.Dir(p); dir != "." {
			return dir
		}
		return "(root)"
	})
	folders := lo.Keys(byFolder)
	sort.Strings(folders)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes:\n\n", len(paths))
	for _, name := range folders {
		files := lo.Map(byFolder[name], func(p string, _ int) string { return path.Base(p) })
		sort.Strings(files)
		fmt.Fprintf(&b, "**%s/**\n", name)
		for _, f := range files {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *VaultServer) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultText("Please provide a search query."), nil
	}

	results, err := s.svc.SearchNotes(ctx, query, request.GetInt("max_results", 0))
	if err != nil {
		return s.toolError("search", query, "searching notes", err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes found matching: %s", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes matching '%s':\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "## %d. %s\n", i+1, r.Note.Title)
		fmt.Fprintf(&b, "**Path:** %s\n", r.Note.Path)
		fmt.Fprintf(&b, "**Relevance:** %d%%\n", int(r.Score*100))
		if len(r.Excerpts) > 0 {
			b.WriteString("**Excerpts:**\n")
			for _, e := range r.Excerpts {
				fmt.Fprintf(&b, "> %s\n", strings.TrimSpace(strings.ReplaceAll(e, "\n", " ")))
			}
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *VaultServer) handleGetBacklinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("note_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	refs, err := s.svc.GetBacklinks(ctx, name)
	if err != nil {
		return s.toolError("backlinks", name, "finding backlinks", err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes link to [[%s]]", name)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d notes linking to [[%s]]:\n\n", len(refs), name)
	for _, ref := range refs {
		fmt.Fprintf(&b, "- **%s** (%s)\n", ref.Name, ref.Path)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *VaultServer) handleGetOutgoingLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	refs, err := s.svc.GetOutgoingLinks(ctx, p)
	if err != nil {
		return s.toolError("outgoing", p, "finding outgoing links", err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Note at %s has no outgoing links.", p)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d outgoing links from %s:\n\n", len(refs), p)
	for _, ref := range refs {
		fmt.Fprintf(&b, "- **[[%s]]** (%s)\n", ref.Name, ref.Path)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// toolError logs a failed tool call and turns err into an error result.
func (s *VaultServer) toolError(tool, subject, action string, err error) *mcp.CallToolResult {
	if errors.Is(err, core.ErrPathTraversal) {
		s.logger.Warn("mcp."+tool+".path_error", "subject", subject, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Invalid path: %v", err))
	}
	s.logger.Error("mcp."+tool+".failed", "subject", subject, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", action, err))
}

func splitTags(raw string) []string {
	tags := lo.Map(strings.Split(raw, ","), func(t string, _ int) string {
		return strings.TrimSpace(t)
	})
	return lo.Compact(tags)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
