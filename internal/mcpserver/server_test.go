package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mjelva/laguz/internal/models"
	"github.com/mjelva/laguz/internal/noteservice"
	"github.com/mjelva/laguz/internal/testutil"
)

func testServer(t *testing.T) (*Server, *noteservice.Service) {
	t.Helper()
	svc := testutil.TestService(t)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "get_outgoing_links":
		result, err = srv.getOutgoingLinks(ctx, req)
	case "get_block_contract":
		result, err = srv.getBlockContract(ctx, req)
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

func TestSearchNotes(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "owner-1", "Project Roadmap", nil); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_notes", map[string]interface{}{
		"query": "roadmap",
		"owner": "owner-1",
	})
	text := resultText(r)
	if !strings.Contains(text, "Project Roadmap") || !strings.Contains(text, `"total_count": 1`) {
		t.Errorf("search result = %q", text)
	}
}

func TestSearchNotesMissingArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "x"})
	if !r.IsError {
		t.Error("expected error when owner is missing")
	}
}

func TestReadNote(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()

	n, err := svc.CreateNote(ctx, "owner-1", "Readable", []models.Block{
		models.TextBlock(models.BlockParagraph, "body"),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "read_note", map[string]interface{}{"id": n.ID})
	text := resultText(r)
	if !strings.Contains(text, "Readable") || !strings.Contains(text, "body") {
		t.Errorf("read result = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestListNotes(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "owner-1", "One", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "owner-1", "Two", nil); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_notes", map[string]interface{}{"owner": "owner-1"})
	text := resultText(r)
	if !strings.Contains(text, "One") || !strings.Contains(text, "Two") {
		t.Errorf("list result = %q", text)
	}
}

func TestBacklinksAndOutgoing(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()

	target, _ := svc.CreateNote(ctx, "owner-1", "Target", nil)
	source, err := svc.CreateNote(ctx, "owner-1", "Source", []models.Block{
		models.ReferenceBlock(target.ID, "see target"),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"id": target.ID})
	if !strings.Contains(resultText(r), "Source") {
		t.Errorf("backlinks = %q", resultText(r))
	}

	r = callTool(t, srv, "get_outgoing_links", map[string]interface{}{"id": source.ID})
	if !strings.Contains(resultText(r), "Target") {
		t.Errorf("outgoing = %q", resultText(r))
	}

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"id": "isolated"})
	if resultText(r) != "no backlinks found" {
		t.Errorf("empty backlinks = %q", resultText(r))
	}
}

func TestBlockContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_block_contract", map[string]interface{}{})
	text := resultText(r)
	for _, want := range []string{"paragraph", "reference", "targetId", "image"} {
		if !strings.Contains(text, want) {
			t.Errorf("contract missing %q", want)
		}
	}
}
