package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const designURIPrefix = "designer://design/"

func (s *Server) registerResources() {
	// ── designer://designs ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"designer://designs",
		"All Designs",
		mcp.WithMIMEType("application/json"),
	), s.handleDesignsResource)

	// ── designer://design/{designId} ───────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			designURIPrefix+"{designId}",
			"Design Document",
		),
		s.handleDesignResource,
	)
}

func (s *Server) handleDesignsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	designs, err := s.designs.ListDesigns("")
	if err != nil {
		return nil, err
	}

	type designSummary struct {
		ID        string `json:"id"`
		ProjectID string `json:"projectId"`
		Name      string `json:"name"`
		Kind      string `json:"kind"`
	}

	summaries := make([]designSummary, 0, len(designs))
	for _, d := range designs {
		summaries = append(summaries, designSummary{ID: d.ID, ProjectID: d.ProjectID, Name: d.Name, Kind: string(d.Kind)})
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "designer://designs",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDesignResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	designID := strings.TrimPrefix(uri, designURIPrefix)
	if designID == "" || designID == uri {
		return nil, fmt.Errorf("could not extract designId from URI: %s", uri)
	}

	doc, err := s.designs.ExportDocument(designID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
