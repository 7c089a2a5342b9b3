package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"photodesigner/internal/editor"
	"photodesigner/internal/geom"
	"photodesigner/internal/service"
)

// Server is the MCP server for the photo designer.
// It exposes tools, resources and prompts so AI agents can lay out pages.
// Geometry tools drive the editor with the same pointer gestures a user
// makes, so snapping, minimum sizes and content coverage all apply.
type Server struct {
	mcp    *server.MCPServer
	layout *LayoutEngine

	// Services (injected from app layer)
	designs *service.DesignService
	editors *service.EditorService
	mirrors *service.MirrorService

	// Active design context (set by open_design)
	mu             sync.Mutex
	activeDesignID string
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Designs *service.DesignService
	Editors *service.EditorService
	Mirrors *service.MirrorService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		layout:  NewLayoutEngine(),
		designs: deps.Designs,
		editors: deps.Editors,
		mirrors: deps.Mirrors,
	}

	s.mcp = server.NewMCPServer(
		"photodesigner-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDesignTools()
	s.registerObjectTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// resolveDesignID returns the designId from tool args or falls back to the
// active design.
func (s *Server) resolveDesignID(args map[string]any) (string, error) {
	if id := getString(args, "designId"); id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDesignID != "" {
		return s.activeDesignID, nil
	}
	return "", fmt.Errorf("no designId provided and no active design set (use open_design first)")
}

// editorFor opens the design of the tool call in an editor whose container
// sits at the client origin, so client px equal canvas px times the zoom
// plus the pan.
func (s *Server) editorFor(ctx context.Context, args map[string]any) (string, *editor.Editor, error) {
	designID, err := s.resolveDesignID(args)
	if err != nil {
		return "", nil, err
	}
	ed, err := s.editors.Open(ctx, designID)
	if err != nil {
		return "", nil, err
	}
	d := ed.Design()
	ed.SetContainer(geom.Point{}, geom.Size{Width: d.CanvasWidth, Height: d.CanvasHeight})
	ed.SetMode(editor.Mode{})
	return designID, ed, nil
}
