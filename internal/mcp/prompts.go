package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("layout_page",
		mcp.WithPromptDescription("Lay out a photobook page or postcard from a list of photos"),
		mcp.WithArgument("designId",
			mcp.ArgumentDescription("Design to lay out"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("photos",
			mcp.ArgumentDescription("Comma-separated photo sources"),
			mcp.RequiredArgument(),
		),
	), s.handleLayoutPrompt)
}

func (s *Server) handleLayoutPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	designID := req.Params.Arguments["designId"]
	photos := req.Params.Arguments["photos"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Lay out design %s", designID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Lay out design %s with these photos: %s. Follow these steps:

1. Call open_design with designId "%s" and read the canvas size it reports.
2. Call list_objects to see what is already on the page.
3. For each photo, call add_object with type "image" and payload {"src": "<photo>"}. Leave x/y out to let the page auto-place it.
4. Use move_object and resize_object (corner handles keep the aspect ratio) to balance the page, and pan_content to frame each photo.
5. Optionally add one text object as a caption, and rotate_object it slightly for a hand-made look.

Keep a margin of at least 20 px to the page edge. Finish with push_design if mirror targets exist.`, designID, photos, designID),
				},
			},
		},
	}, nil
}
