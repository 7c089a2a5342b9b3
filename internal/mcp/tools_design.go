package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"photodesigner/internal/domain"
)

// ── Design Tools ───────────────────────────────────────────

func (s *Server) registerDesignTools() {
	s.mcp.AddTool(
		mcp.NewTool("list_projects",
			mcp.WithDescription("List all projects."),
		),
		s.handleListProjects,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_designs",
			mcp.WithDescription("List the designs (pages) of a project in page order. Without projectId every design is listed."),
			mcp.WithString("projectId", mcp.Description("Project ID")),
		),
		s.handleListDesigns,
	)

	s.mcp.AddTool(
		mcp.NewTool("create_design",
			mcp.WithDescription("Create a design in a project. Width and height default to the canvas size of the kind."),
			mcp.WithString("projectId", mcp.Required(), mcp.Description("Project ID")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Design name")),
			mcp.WithString("kind", mcp.Description("photobook or postcard (default photobook)")),
			mcp.WithNumber("width", mcp.Description("Canvas width in px")),
			mcp.WithNumber("height", mcp.Description("Canvas height in px")),
		),
		s.handleCreateDesign,
	)

	s.mcp.AddTool(
		mcp.NewTool("open_design",
			mcp.WithDescription("Open a design and make it the active design for the object tools."),
			mcp.WithString("designId", mcp.Required(), mcp.Description("Design ID")),
		),
		s.handleOpenDesign,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_objects",
			mcp.WithDescription("List the objects of a design in paint order (bottom first)."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
		),
		s.handleListObjects,
	)

	s.mcp.AddTool(
		mcp.NewTool("export_document",
			mcp.WithDescription("Return the interchange JSON document of a design."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
		),
		s.handleExportDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("import_document",
			mcp.WithDescription("Create or replace a design from an interchange JSON document. Designs without a project land in the Inbox project."),
			mcp.WithString("document", mcp.Required(), mcp.Description("Design document JSON")),
		),
		s.handleImportDocument,
	)

	s.mcp.AddTool(
		mcp.NewTool("push_design",
			mcp.WithDescription("Push a design to every enabled mirror target. Unchanged designs are skipped."),
			mcp.WithString("designId", mcp.Description("Design ID (defaults to the active design)")),
		),
		s.handlePushDesign,
	)
}

func (s *Server) handleListProjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.designs.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return jsonResult(projects)
}

func (s *Server) handleListDesigns(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	designs, err := s.designs.ListDesigns(getString(args, "projectId"))
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	return jsonResult(designs)
}

func (s *Server) handleCreateDesign(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind := domain.DesignKind(getString(args, "kind"))
	if kind == "" {
		kind = domain.DesignKindPhotobook
	}
	d, err := s.designs.CreateDesign(
		getString(args, "projectId"),
		getString(args, "name"),
		kind,
		getFloat(args, "width", 0),
		getFloat(args, "height", 0),
	)
	if err != nil {
		return nil, err
	}
	return jsonResult(d)
}

func (s *Server) handleOpenDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	designID := getString(args, "designId")
	ed, err := s.editors.Open(ctx, designID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activeDesignID = designID
	s.mu.Unlock()

	d := ed.Design()
	return textResult(fmt.Sprintf("Opened %q (%s, %gx%g px, %d objects)",
		d.Name, d.Kind, d.CanvasWidth, d.CanvasHeight, len(ed.Objects()))), nil
}

func (s *Server) handleListObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(ed.Objects())
}

func (s *Server) handleExportDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	designID, err := s.resolveDesignID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	doc, err := s.designs.ExportDocument(designID)
	if err != nil {
		return nil, err
	}
	return jsonResult(doc)
}

func (s *Server) handleImportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var doc domain.DesignDocument
	if err := json.Unmarshal([]byte(getString(args, "document")), &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	d, err := s.designs.ImportDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	// An open editor still holds the old objects.
	s.editors.Reload(d.ID)
	return textResult(fmt.Sprintf("Imported %q as design %s in project %s", d.Name, d.ID, d.ProjectID)), nil
}

func (s *Server) handlePushDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	designID, err := s.resolveDesignID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	results, err := s.mirrors.PushDesign(ctx, designID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return textResult("No enabled mirror targets"), nil
	}
	return jsonResult(results)
}
