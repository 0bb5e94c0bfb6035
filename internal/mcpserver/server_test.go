package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dropnote/internal/notes"
	"github.com/starford/dropnote/internal/session"
	"github.com/starford/dropnote/internal/storage"
	"github.com/starford/dropnote/internal/testutil"
)

func testServer(t *testing.T) (*Server, *storage.FS) {
	t.Helper()
	_, store := testutil.TestStore(t)
	lp := testutil.RunLoop(t)

	model := notes.New(store, lp, notes.WithLogger(testutil.Logger()))
	if err := lp.Do(context.Background(), func() error { model.Load(); return nil }); err != nil {
		t.Fatal(err)
	}
	return New(session.New(lp, model), "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "read_current_note":
		result, err = srv.readCurrentNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "update_current_note":
		result, err = srv.updateCurrentNote(ctx, req)
	case "append_to_current_note":
		result, err = srv.appendToCurrentNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "navigate":
		result, err = srv.navigate(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func resultNote(t *testing.T, r *mcp.CallToolResult) noteResult {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var n noteResult
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return n
}

func TestUpdateAndReadCurrentNote(t *testing.T) {
	srv, _ := testServer(t)

	n := resultNote(t, callTool(t, srv, "update_current_note", map[string]any{"content": "buy milk"}))
	if n.Content != "buy milk" || n.Position != "1 of 1" {
		t.Errorf("update result = %+v", n)
	}

	n = resultNote(t, callTool(t, srv, "read_current_note", map[string]any{}))
	if n.Content != "buy milk" {
		t.Errorf("read result = %+v", n)
	}
}

func TestAppendToCurrentNote(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "update_current_note", map[string]any{"content": "line one"})
	n := resultNote(t, callTool(t, srv, "append_to_current_note", map[string]any{"content": "line two"}))
	if n.Content != "line one\nline two" {
		t.Errorf("content = %q", n.Content)
	}
}

func TestMissingContentIsToolError(t *testing.T) {
	srv, _ := testServer(t)
	for _, name := range []string{"update_current_note", "append_to_current_note"} {
		if r := callTool(t, srv, name, map[string]any{}); !r.IsError {
			t.Errorf("%s: expected error for missing content", name)
		}
	}
}

func TestCreateAndNavigate(t *testing.T) {
	srv, _ := testServer(t)
	first := resultNote(t, callTool(t, srv, "read_current_note", map[string]any{}))

	created := resultNote(t, callTool(t, srv, "create_note", map[string]any{"content": "second"}))
	if created.Position != "2 of 2" || created.Content != "second" {
		t.Errorf("created = %+v", created)
	}

	prev := resultNote(t, callTool(t, srv, "navigate", map[string]any{"direction": "previous"}))
	if prev.ID != first.ID {
		t.Errorf("previous = %+v", prev)
	}
	next := resultNote(t, callTool(t, srv, "navigate", map[string]any{"direction": "next"}))
	if next.ID != created.ID {
		t.Errorf("next = %+v", next)
	}
	// At the end: stays put.
	end := resultNote(t, callTool(t, srv, "navigate", map[string]any{"direction": "next"}))
	if end.ID != created.ID {
		t.Errorf("navigate past end moved to %+v", end)
	}
}

func TestNavigateInvalidDirection(t *testing.T) {
	srv, _ := testServer(t)
	if r := callTool(t, srv, "navigate", map[string]any{"direction": "sideways"}); !r.IsError {
		t.Error("expected error for unknown direction")
	}
	if r := callTool(t, srv, "navigate", map[string]any{}); !r.IsError {
		t.Error("expected error for missing direction")
	}
}

func TestListNotes(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "update_current_note", map[string]any{"content": "alpha\nmore"})
	callTool(t, srv, "create_note", map[string]any{"content": "beta"})

	text := resultText(callTool(t, srv, "list_notes", map[string]any{}))
	var items []session.Summary
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Preview != "alpha" || items[1].Preview != "beta" || !items[1].Current {
		t.Errorf("items = %+v", items)
	}
}

func TestEditsArePersisted(t *testing.T) {
	srv, store := testServer(t)
	n := resultNote(t, callTool(t, srv, "create_note", map[string]any{}))
	if _, ok := store.LoadNote(n.ID); !ok {
		t.Error("created note not on disk")
	}
}

func TestResources(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "update_current_note", map[string]any{"content": "resource text"})

	contents, err := srv.readCurrentResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.Text != "resource text" {
		t.Errorf("current resource = %+v", contents[0])
	}

	contents, err = srv.readGuideResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || !strings.Contains(tc.Text, "navigate") {
		t.Errorf("guide resource = %+v", contents[0])
	}
}
