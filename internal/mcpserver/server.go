// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note list to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dropnote/internal/session"
)

const (
	currentURI = "dropnote://current"
	guideURI   = "dropnote://guide"
)

// Notes is the note surface the tools drive: an in-process
// *session.Session or a *client.Client talking to a running daemon.
type Notes interface {
	Snapshot(ctx context.Context) (session.View, error)
	Notes(ctx context.Context) ([]session.Summary, error)
	SetContent(ctx context.Context, text string) (session.View, error)
	AppendContent(ctx context.Context, text string) (session.View, error)
	CreateWithContent(ctx context.Context, text string) (session.View, error)
	Previous(ctx context.Context) (session.View, error)
	Next(ctx context.Context) (session.View, error)
}

// Server wraps the MCP server with dropnote tools.
type Server struct {
	mcp *server.MCPServer
	s   Notes
}

// New creates a new MCP server with all tools registered.
func New(s Notes, version string) *Server {
	srv := &Server{s: s}

	srv.mcp = server.NewMCPServer(
		"dropnote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.mcp.AddTool(mcp.NewTool("read_current_note",
		mcp.WithDescription("Read the note currently shown in the panel, with its position in the list."),
	), srv.readCurrentNote)

	srv.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes in navigation order with a one-line preview each."),
	), srv.listNotes)

	srv.mcp.AddTool(mcp.NewTool("update_current_note",
		mcp.WithDescription("Replace the full text of the current note."),
		mcp.WithString("content", mcp.Required(), mcp.Description("New note text")),
	), srv.updateCurrentNote)

	srv.mcp.AddTool(mcp.NewTool("append_to_current_note",
		mcp.WithDescription("Append text to the end of the current note, on a new line."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append")),
	), srv.appendToCurrentNote)

	srv.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Append a new note after the last one and make it current."),
		mcp.WithString("content", mcp.Description("Optional initial text")),
	), srv.createNote)

	srv.mcp.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Move to the previous or next note. Does nothing at either end of the list."),
		mcp.WithString("direction", mcp.Required(),
			mcp.Enum("previous", "next"),
			mcp.Description("previous or next")),
	), srv.navigate)

	srv.mcp.AddResource(
		mcp.NewResource(currentURI, "Current note",
			mcp.WithResourceDescription("Text of the note currently shown in the panel."),
			mcp.WithMIMEType("text/plain"),
		),
		srv.readCurrentResource,
	)

	srv.mcp.AddResource(
		mcp.NewResource(guideURI, "dropnote guide",
			mcp.WithResourceDescription("How notes are stored, navigated and formatted."),
			mcp.WithMIMEType("text/markdown"),
		),
		srv.readGuideResource,
	)

	return srv
}

// ServeStdio starts the MCP server on stdin/stdout.
func (srv *Server) ServeStdio() error {
	return server.ServeStdio(srv.mcp)
}

// MCPServer returns the underlying server for testing.
func (srv *Server) MCPServer() *server.MCPServer {
	return srv.mcp
}

// noteResult is the tool payload for a single note.
type noteResult struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	Content  string `json:"content"`
}

func viewResult(v session.View) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(noteResult{ID: v.ID, Position: v.Position, Content: v.Content}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (srv *Server) readCurrentNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := srv.s.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v)
}

func (srv *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := srv.s.Notes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (srv *Server) updateCurrentNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := srv.s.SetContent(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v)
}

func (srv *Server) appendToCurrentNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := srv.s.AppendContent(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v)
}

func (srv *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := srv.s.CreateWithContent(ctx, req.GetString("content", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v)
}

func (srv *Server) navigate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var v session.View
	switch dir {
	case "previous":
		v, err = srv.s.Previous(ctx)
	case "next":
		v, err = srv.s.Next(ctx)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q: use previous or next", dir)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return viewResult(v)
}

func (srv *Server) readCurrentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	v, err := srv.s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      currentURI,
			MIMEType: "text/plain",
			Text:     v.Content,
		},
	}, nil
}

func (srv *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     Guide,
		},
	}, nil
}
